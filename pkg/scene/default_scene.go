package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// BuildOptions override the defaults of a built-in scene
type BuildOptions struct {
	Width   int    // 0 keeps the scene's default
	Height  int    // 0 keeps the scene's default
	PLYPath string // mesh scene only
}

// newCamera applies resolution overrides and builds the camera
func newCamera(config geometry.CameraConfig, opts BuildOptions) (*geometry.Camera, error) {
	if opts.Width > 0 {
		config.Width = opts.Width
	}
	if opts.Height > 0 {
		config.Height = opts.Height
	}
	return geometry.NewCamera(config)
}

// NewDefaultScene creates spheres of several materials resting on a large
// ground sphere, lit by a point light and a constant sky
func NewDefaultScene(opts BuildOptions) (*Scene, error) {
	camera, err := newCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(0, 0.75, 2),
		LookAt:   core.NewVec3(0, 0.5, -1),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40,
		Width:    400,
		Height:   225,
	}, opts)
	if err != nil {
		return nil, err
	}

	s := New(camera, Options{SamplesPerPixel: 64, MaxDepth: 8})
	s.Background = core.NewVec3(0.5, 0.7, 1.0)

	ground := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.48, 0.48, 0))))
	red := s.AddMaterial(material.NewPlastic(material.NewConstTexture(core.NewVec3(0.65, 0.25, 0.2)), 1.5))
	silver := s.AddMaterial(material.NewMirror(material.NewConstTexture(core.NewVec3(0.8, 0.8, 0.8))))
	gold := s.AddMaterial(&material.DisneyMetal{
		BaseColor: material.NewConstTexture(core.NewVec3(0.8, 0.6, 0.2)),
		Roughness: 0.3,
	})
	glass := s.AddMaterial(&material.DisneyGlass{
		BaseColor: material.NewConstTexture(core.NewVec3(1, 1, 1)),
		Roughness: 0.05,
		Eta:       1.5,
	})

	// A huge sphere stands in for the ground plane and keeps the scene bounded
	s.AddShape(geometry.NewSphere(core.NewVec3(0, -1000, -1), 1000, ground))
	s.AddShape(geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, red))
	s.AddShape(geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, silver))
	s.AddShape(geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, gold))
	s.AddShape(geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.3), 0.25, glass))

	s.AddPointLight(core.NewVec3(2, 4, 1), core.NewVec3(20, 19, 18))
	return s, nil
}
