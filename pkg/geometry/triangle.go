package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Triangle is one face of a TriangleMesh, referenced by mesh and face index
type Triangle struct {
	ShapeBase
	MeshID int
	FaceID int
}

// NewTriangle creates a triangle referencing face faceID of mesh meshID
func NewTriangle(meshID, faceID, materialID int) *Triangle {
	return &Triangle{
		ShapeBase: ShapeBase{MaterialID: materialID, AreaLightID: -1},
		MeshID:    meshID,
		FaceID:    faceID,
	}
}

func (t *Triangle) isShape() {}

func (t *Triangle) vertices(meshes []TriangleMesh) (core.Vec3, core.Vec3, core.Vec3) {
	m := &meshes[t.MeshID]
	idx := m.Indices[t.FaceID]
	return m.Positions[idx[0]], m.Positions[idx[1]], m.Positions[idx[2]]
}

// Intersect uses the Möller-Trumbore algorithm
func (t *Triangle) Intersect(ray core.Ray, meshes []TriangleMesh) (Intersection, bool) {
	const epsilon = 1e-12

	v0, v1, v2 := t.vertices(meshes)
	edge1 := v1.Subtract(v0)
	edge2 := v2.Subtract(v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return Intersection{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v0)
	b1 := f * s.Dot(h)
	if b1 < 0.0 || b1 > 1.0 {
		return Intersection{}, false
	}

	q := s.Cross(edge1)
	b2 := f * ray.Direction.Dot(q)
	if b2 < 0.0 || b1+b2 > 1.0 {
		return Intersection{}, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < ray.TMin || tHit > ray.TMax {
		return Intersection{}, false
	}

	geoNormal := edge1.Cross(edge2).Normalize()
	mesh := &meshes[t.MeshID]
	idx := mesh.Indices[t.FaceID]
	b0 := 1 - b1 - b2

	shading := geoNormal
	if len(mesh.Normals) > 0 {
		n := mesh.Normals[idx[0]].Multiply(b0).
			Add(mesh.Normals[idx[1]].Multiply(b1)).
			Add(mesh.Normals[idx[2]].Multiply(b2)).Normalize()
		if !n.IsZero() {
			shading = n
		}
	}

	uv := core.NewVec2(b1, b2)
	if len(mesh.UVs) > 0 {
		uv = mesh.UVs[idx[0]].Multiply(b0).
			Add(mesh.UVs[idx[1]].Multiply(b1)).
			Add(mesh.UVs[idx[2]].Multiply(b2))
	}

	return Intersection{
		Position:        ray.At(tHit),
		GeometricNormal: geoNormal,
		ShadingNormal:   shading,
		UV:              uv,
		T:               tHit,
		MaterialID:      t.MaterialID,
		AreaLightID:     t.AreaLightID,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox(meshes []TriangleMesh) core.AABB {
	v0, v1, v2 := t.vertices(meshes)
	return core.NewAABBFromPoints(v0, v1, v2)
}

// Area returns the surface area
func (t *Triangle) Area(meshes []TriangleMesh) float64 {
	v0, v1, v2 := t.vertices(meshes)
	return 0.5 * v1.Subtract(v0).Cross(v2.Subtract(v0)).Length()
}

// SampleOnShape picks a point uniformly over the triangle's area
func (t *Triangle) SampleOnShape(meshes []TriangleMesh, _ core.Vec3, sample core.Vec2) PointAndNormal {
	v0, v1, v2 := t.vertices(meshes)
	b0, b1 := core.SampleTriangleBarycentric(sample)
	p := v0.Multiply(b0).Add(v1.Multiply(b1)).Add(v2.Multiply(1 - b0 - b1))
	n := v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	return PointAndNormal{Point: p, Normal: n}
}

// PDF converts the uniform area density to solid angle at ref
func (t *Triangle) PDF(meshes []TriangleMesh, pn PointAndNormal, ref core.Vec3) float64 {
	area := t.Area(meshes)
	if area <= 0 || math.IsNaN(area) {
		return 0
	}
	return areaToSolidAngle(1/area, pn, ref)
}
