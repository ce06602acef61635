package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates the classic Cornell box from quads, lit by a
// ceiling quad light, with a tall box, a mirror sphere and a rough glass sphere
func NewCornellScene(opts BuildOptions) (*Scene, error) {
	camera, err := newCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(278, 278, -800),
		LookAt:   core.NewVec3(278, 278, 0),
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40,
		Width:    400,
		Height:   400,
	}, opts)
	if err != nil {
		return nil, err
	}

	s := New(camera, Options{SamplesPerPixel: 64, MaxDepth: 8})

	white := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.73, 0.73, 0.73))))
	red := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.65, 0.05, 0.05))))
	green := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.NewVec3(0.12, 0.45, 0.15))))
	black := s.AddMaterial(material.NewDiffuse(material.NewConstTexture(core.Vec3{})))
	mirror := s.AddMaterial(material.NewMirror(material.NewConstTexture(core.NewVec3(0.8, 0.8, 0.9))))
	glass := s.AddMaterial(&material.DisneyBSDF{
		BaseColor:            material.NewConstTexture(core.NewVec3(1, 1, 1)),
		SpecularTransmission: 1,
		Roughness:            0.1,
		Specular:             0.5,
		Eta:                  1.5,
	})

	const boxSize = 555.0
	x := core.NewVec3(boxSize, 0, 0)
	y := core.NewVec3(0, boxSize, 0)
	z := core.NewVec3(0, 0, boxSize)

	s.AddMesh(geometry.NewQuad(core.Vec3{}, x, z, white)) // floor
	s.AddMesh(geometry.NewQuad(y, x, z, white))           // ceiling
	s.AddMesh(geometry.NewQuad(z, x, y, white))           // back wall
	s.AddMesh(geometry.NewQuad(core.Vec3{}, z, y, red))   // left wall
	s.AddMesh(geometry.NewQuad(x, y, z, green))           // right wall

	// u x v points down, into the box
	const lightSize = 130.0
	offset := (boxSize - lightSize) / 2
	s.AddQuadLight(
		core.NewVec3(offset, boxSize-1, offset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15, 15, 15),
		black,
	)

	s.AddMesh(geometry.NewBox(core.NewVec3(150, 165, 400), core.NewVec3(70, 165, 70), 0.3, white))
	s.AddShape(geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, mirror))
	s.AddShape(geometry.NewSphere(core.NewVec3(370, 90, 351), 90, glass))
	return s, nil
}
