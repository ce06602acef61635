package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// boxFaces lists the corners of each face counter-clockwise seen from outside
var boxFaces = [6][4]int{
	{4, 5, 6, 7}, // +z
	{1, 0, 3, 2}, // -z
	{5, 1, 2, 6}, // +x
	{0, 4, 7, 3}, // -x
	{3, 7, 6, 2}, // +y
	{4, 0, 1, 5}, // -y
}

// NewBox returns a 12-triangle mesh for a box with the given half extents,
// rotated by rotationY radians about the vertical axis through its center.
// Faces point outward; each face has its own four vertices so normals stay flat.
func NewBox(center, halfSize core.Vec3, rotationY float64, materialID int) TriangleMesh {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1),
		core.NewVec3(1, -1, -1),
		core.NewVec3(1, 1, -1),
		core.NewVec3(-1, 1, -1),
		core.NewVec3(-1, -1, 1),
		core.NewVec3(1, -1, 1),
		core.NewVec3(1, 1, 1),
		core.NewVec3(-1, 1, 1),
	}

	mesh := TriangleMesh{MaterialID: materialID}
	for _, face := range boxFaces {
		base := len(mesh.Positions)
		for _, c := range face {
			mesh.Positions = append(mesh.Positions, corners[c])
		}
		mesh.UVs = append(mesh.UVs, core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), core.NewVec2(0, 1))
		mesh.Indices = append(mesh.Indices, [3]int{base, base + 1, base + 2}, [3]int{base, base + 2, base + 3})
	}

	xf := core.Translate(center).
		Mul(core.Rotate(rotationY, core.NewVec3(0, 1, 0))).
		Mul(core.Scale(halfSize))
	mesh.Transform(xf)
	return mesh
}
