package core

import "math"

// RayEpsilon offsets secondary rays from the surface they leave
const RayEpsilon = 1e-4

// Ray represents a ray with an origin, direction and a valid parametric interval.
// TMax shrinks during traversal as closer hits are found.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	TMin      float64
	TMax      float64
}

// NewRay creates a ray valid on [0, +Inf)
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: 0, TMax: math.Inf(1)}
}

// SpawnRay creates a secondary ray leaving a surface point
func SpawnRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, TMin: RayEpsilon, TMax: math.Inf(1)}
}

// SpawnRayTo creates a shadow ray from origin that stops just short of target.
// The direction is not normalized; TMax is expressed in units of it.
func SpawnRayTo(origin, target Vec3) Ray {
	d := target.Subtract(origin)
	dist := d.Length()
	if dist == 0 {
		return Ray{Origin: origin, Direction: d, TMin: 0, TMax: 0}
	}
	dir := d.Multiply(1 / dist)
	return Ray{Origin: origin, Direction: dir, TMin: RayEpsilon, TMax: dist * (1 - RayEpsilon)}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}
