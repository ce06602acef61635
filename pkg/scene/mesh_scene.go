package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrNoMeshPath is returned by NewMeshScene when no PLY file was given
var ErrNoMeshPath = errors.New("scene: mesh scene needs a PLY path")

// meshExtent is the size of the longest side of the fitted mesh
const meshExtent = 2.0

// NewMeshScene loads a PLY mesh, fits it onto a floor quad and lights it with
// an overhead quad light and a dim sky
func NewMeshScene(opts BuildOptions) (*Scene, error) {
	if opts.PLYPath == "" {
		return nil, ErrNoMeshPath
	}

	camera, err := newCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(0, 1.8, 4.5),
		LookAt:   core.NewVec3(0, 0.8, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     35,
		Width:    400,
		Height:   400,
	}, opts)
	if err != nil {
		return nil, err
	}

	mesh, err := loaders.LoadPLY(opts.PLYPath)
	if err != nil {
		return nil, fmt.Errorf("loading mesh: %w", err)
	}
	fitMesh(mesh)

	s := New(camera, Options{SamplesPerPixel: 64, MaxDepth: 8, LightSelection: LightSelectionPower})
	s.Background = core.NewVec3(0.05, 0.06, 0.08)

	floor := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.6, 0.6, 0.6))))
	black := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.Vec3{})))
	mesh.MaterialID = s.AddMaterial(&material.DisneyBSDF{
		BaseColor:      material.NewConstTexture(core.NewVec3(0.75, 0.55, 0.2)),
		Metallic:       0.6,
		Roughness:      0.35,
		Specular:       0.5,
		Clearcoat:      0.3,
		ClearcoatGloss: 0.8,
		Eta:            1.5,
	})

	s.AddMesh(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), floor))
	first, count := s.AddMesh(*mesh)
	logger.Infof("mesh %s: %d triangles starting at shape %d", opts.PLYPath, count, first)

	// x then z makes u x v point down
	s.AddQuadLight(
		core.NewVec3(-1, 4, -1),
		core.NewVec3(2, 0, 0),
		core.NewVec3(0, 0, 2),
		core.NewVec3(12, 12, 11),
		black,
	)
	return s, nil
}

// fitMesh scales the mesh to meshExtent, centers it on the y axis and
// rests it on y = 0
func fitMesh(mesh *geometry.TriangleMesh) {
	bounds := mesh.Bounds()
	if !bounds.IsValid() {
		return
	}
	size := bounds.Size()
	longest := size.Axis(bounds.LongestAxis())
	if longest <= 0 {
		return
	}
	scale := meshExtent / longest
	center := bounds.Center()
	base := core.NewVec3(center.X, bounds.Min.Y, center.Z)

	xf := core.Scale(core.NewVec3(scale, scale, scale)).Mul(core.Translate(base.Negate()))
	mesh.Transform(xf)
}
