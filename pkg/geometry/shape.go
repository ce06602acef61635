package geometry

import "github.com/df07/go-pathtracer/pkg/core"

// Intersection describes the closest surface point found along a ray
type Intersection struct {
	Position        core.Vec3
	GeometricNormal core.Vec3 // outward face normal, not flipped toward the ray
	ShadingNormal   core.Vec3 // interpolated vertex normal when the mesh has one
	UV              core.Vec2
	T               float64
	ShapeID         int
	MaterialID      int
	AreaLightID     int // -1 when the surface does not emit
}

// IsEmitter reports whether the hit surface carries an area light
func (it *Intersection) IsEmitter() bool {
	return it.AreaLightID >= 0
}

// PointAndNormal is a sampled surface location
type PointAndNormal struct {
	Point  core.Vec3
	Normal core.Vec3
}

// Shape is the closed set of primitives: *Sphere and *Triangle.
// Triangles reference geometry in meshes by index.
type Shape interface {
	// Intersect returns the hit within [ray.TMin, ray.TMax]
	Intersect(ray core.Ray, meshes []TriangleMesh) (Intersection, bool)
	BoundingBox(meshes []TriangleMesh) core.AABB
	Area(meshes []TriangleMesh) float64
	// SampleOnShape picks a point visible-or-not from ref
	SampleOnShape(meshes []TriangleMesh, ref core.Vec3, sample core.Vec2) PointAndNormal
	// PDF is the solid-angle density of SampleOnShape at ref, 0 for back-facing points
	PDF(meshes []TriangleMesh, pn PointAndNormal, ref core.Vec3) float64

	Material() int
	AreaLight() int
	SetAreaLight(id int)

	isShape()
}

// ShapeBase carries the indices shared by every shape.
// Both are non-owning references into scene arrays.
type ShapeBase struct {
	MaterialID  int
	AreaLightID int
}

// Material returns the material index
func (b *ShapeBase) Material() int { return b.MaterialID }

// AreaLight returns the attached area light index, or -1
func (b *ShapeBase) AreaLight() int { return b.AreaLightID }

// SetAreaLight attaches an area light by index
func (b *ShapeBase) SetAreaLight(id int) { b.AreaLightID = id }

// Primitives owns the shapes and the meshes their triangles reference
type Primitives struct {
	Shapes []Shape
	Meshes []TriangleMesh
}

// AddShape appends a shape and returns its index
func (p *Primitives) AddShape(s Shape) int {
	p.Shapes = append(p.Shapes, s)
	return len(p.Shapes) - 1
}

// AddMesh stores a mesh and appends one triangle per face.
// It returns the mesh index and the index of the first triangle.
func (p *Primitives) AddMesh(mesh TriangleMesh) (int, int) {
	meshID := len(p.Meshes)
	p.Meshes = append(p.Meshes, mesh)
	first := len(p.Shapes)
	for face := range mesh.Indices {
		p.Shapes = append(p.Shapes, NewTriangle(meshID, face, mesh.MaterialID))
	}
	return meshID, first
}

// IntersectBruteForce tests every shape; used as a reference for the BVH
func (p *Primitives) IntersectBruteForce(ray core.Ray) (Intersection, bool) {
	var closest Intersection
	found := false
	for i, s := range p.Shapes {
		if hit, ok := s.Intersect(ray, p.Meshes); ok {
			hit.ShapeID = i
			closest = hit
			found = true
			ray.TMax = hit.T
		}
	}
	return closest, found
}
