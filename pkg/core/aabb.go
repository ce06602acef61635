package core

import "math"

// AABB is an axis-aligned box
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB returns the box spanning min to max
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that any union replaces
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: NewVec3(inf, inf, inf), Max: NewVec3(-inf, -inf, -inf)}
}

// NewAABBFromPoints returns the smallest box containing points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.UnionPoint(p)
	}
	return box
}

// Hit is the slab test against the interval [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		lo := aabb.Min.Axis(axis)
		hi := aabb.Max.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		// Parallel rays only hit if the origin is inside the slab
		if direction == 0 {
			if origin < lo || origin > hi {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (lo - origin) * invDirection
		t2 := (hi - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// Union returns the smallest box containing both boxes
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: MinVec(aabb.Min, other.Min), Max: MaxVec(aabb.Max, other.Max)}
}

// UnionPoint grows the box to include p
func (aabb AABB) UnionPoint(p Vec3) AABB {
	return AABB{Min: MinVec(aabb.Min, p), Max: MaxVec(aabb.Max, p)}
}

// Contains reports whether other lies entirely within this box
func (aabb AABB) Contains(other AABB) bool {
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Center is the midpoint of the box
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size is the extent along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis is 0, 1 or 2 for the widest of X, Y, Z
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid reports whether Min <= Max on every axis
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// BoundingSphere returns the center and radius of a sphere enclosing the box
func (aabb AABB) BoundingSphere() (Vec3, float64) {
	if !aabb.IsValid() {
		return Vec3{}, 0
	}
	center := aabb.Center()
	return center, aabb.Max.Subtract(center).Length()
}
