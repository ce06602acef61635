package geometry

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
)

// TriangleMesh owns vertex data shared by the triangles that reference it.
// Normals and UVs are optional and, when present, indexed like Positions.
type TriangleMesh struct {
	Positions  []core.Vec3
	Indices    [][3]int
	Normals    []core.Vec3
	UVs        []core.Vec2
	MaterialID int
}

// Validate checks that every face references existing vertices
func (m *TriangleMesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) > 0 && len(m.Normals) != n {
		return fmt.Errorf("mesh has %d normals for %d vertices", len(m.Normals), n)
	}
	if len(m.UVs) > 0 && len(m.UVs) != n {
		return fmt.Errorf("mesh has %d uvs for %d vertices", len(m.UVs), n)
	}
	for f, idx := range m.Indices {
		for _, i := range idx {
			if i < 0 || i >= n {
				return fmt.Errorf("face %d references vertex %d of %d", f, i, n)
			}
		}
	}
	return nil
}

// Transform applies an affine transform to positions and normals in place
func (m *TriangleMesh) Transform(xf core.Matrix4x4) {
	normalXf := xf.Inverse()
	for i, p := range m.Positions {
		m.Positions[i] = xf.TransformPoint(p)
	}
	for i, n := range m.Normals {
		// normals transform by the inverse transpose
		m.Normals[i] = core.NewVec3(
			normalXf.Column(0).Dot(n),
			normalXf.Column(1).Dot(n),
			normalXf.Column(2).Dot(n),
		).Normalize()
	}
}

// Bounds returns the bounding box of all vertices
func (m *TriangleMesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Positions...)
}

// NewQuad returns a two-triangle mesh for the parallelogram corner, corner+u, corner+u+v, corner+v.
// Its face normal is u x v.
func NewQuad(corner, u, v core.Vec3, materialID int) TriangleMesh {
	return TriangleMesh{
		Positions: []core.Vec3{
			corner,
			corner.Add(u),
			corner.Add(u).Add(v),
			corner.Add(v),
		},
		Indices:    [][3]int{{0, 1, 2}, {0, 2, 3}},
		UVs:        []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		MaterialID: materialID,
	}
}
