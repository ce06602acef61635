package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewMaterialsScene lays out one sphere per material model on a checkered
// floor under a procedural sky environment map
func NewMaterialsScene(opts BuildOptions) (*Scene, error) {
	camera, err := newCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(0, 4, 9),
		LookAt:   core.NewVec3(0, 0.6, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     35,
		Width:    480,
		Height:   270,
	}, opts)
	if err != nil {
		return nil, err
	}

	s := New(camera, Options{SamplesPerPixel: 64, MaxDepth: 8, LightSelection: LightSelectionPower})

	sky := material.NewSkyImage(256, 128,
		core.NewVec3(0.25, 0.45, 0.9),
		core.NewVec3(0.9, 0.9, 0.85),
		core.NewVec3(0.2, 0.18, 0.15),
		core.NewVec3(0.5, 0.8, 0.3), 0.06,
		core.NewVec3(60, 55, 45),
	)
	if err := s.SetEnvmap("sky", sky, core.Identity(), 1); err != nil {
		return nil, err
	}

	checker := material.NewImageTexture(s.Textures.AddImage("checker",
		material.NewCheckerboardImage(64, 64, 32, core.NewVec3(0.7, 0.7, 0.7), core.NewVec3(0.25, 0.25, 0.25))))
	checker.UScale = 8
	checker.VScale = 8
	floor := s.AddMaterial(material.NewDiffuse(checker))
	s.AddMesh(geometry.NewQuad(core.NewVec3(-10, 0, 10), core.NewVec3(20, 0, 0), core.NewVec3(0, 0, -20), floor))

	tex := func(r, g, b float64) material.Texture {
		return material.NewConstTexture(core.NewVec3(r, g, b))
	}
	models := []material.Material{
		material.NewDiffuse(tex(0.7, 0.2, 0.2)),
		material.NewMirror(tex(0.9, 0.9, 0.9)),
		material.NewPlastic(tex(0.1, 0.3, 0.7), 1.5),
		material.NewPhong(tex(0.8, 0.8, 0.8), 40),
		material.NewBlinnPhong(tex(0.9, 0.7, 0.3), 60),
		material.NewBlinnPhongMicrofacet(tex(0.9, 0.7, 0.3), 60),
		&material.DisneyDiffuse{BaseColor: tex(0.3, 0.6, 0.3), Roughness: 0.5, Subsurface: 0.6},
		&material.DisneyMetal{BaseColor: tex(0.95, 0.64, 0.54), Roughness: 0.25, Anisotropic: 0.6},
		&material.DisneyGlass{BaseColor: tex(0.9, 0.95, 1), Roughness: 0.15, Eta: 1.5},
		&material.DisneyClearcoat{ClearcoatGloss: 0.8},
		&material.DisneySheen{BaseColor: tex(0.6, 0.2, 0.5), SheenTint: 0.5},
		&material.DisneyBSDF{
			BaseColor: tex(0.8, 0.3, 0.1), Metallic: 0.2, Roughness: 0.4, Specular: 0.5,
			SpecularTint: 0.2, Sheen: 0.3, SheenTint: 0.5, Clearcoat: 0.7, ClearcoatGloss: 0.9, Eta: 1.5,
		},
	}

	const cols = 4
	for i, m := range models {
		id := s.AddMaterial(m)
		col := i % cols
		row := i / cols
		center := core.NewVec3(float64(col)*1.5-2.25, 0.6, float64(row)*1.5-1.5)
		s.AddShape(geometry.NewSphere(center, 0.6, id))
	}
	return s, nil
}
