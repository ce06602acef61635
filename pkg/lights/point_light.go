package lights

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// PointLight is an isotropic point emitter with radiant intensity I
type PointLight struct {
	Position  core.Vec3
	Intensity core.Vec3
}

// NewPointLight creates a point light
func NewPointLight(position, intensity core.Vec3) *PointLight {
	return &PointLight{Position: position, Intensity: intensity}
}

func (*PointLight) isLight() {}

// IsDelta is true
func (*PointLight) IsDelta() bool { return true }

// SampleOnLight always returns the light position
func (l *PointLight) SampleOnLight(_ *geometry.Primitives, _ *material.TexturePool, _ core.Vec3, _ core.Vec2) LightPoint {
	return LightPoint{Point: l.Position}
}

// PDF is 1: the position is chosen deterministically
func (l *PointLight) PDF(_ *geometry.Primitives, _ *material.TexturePool, _ LightPoint, _ core.Vec3) float64 {
	return 1
}

// Emission returns the intensity
func (l *PointLight) Emission(_ *geometry.Primitives, _ *material.TexturePool, _ core.Vec3, _ LightPoint) core.Vec3 {
	return l.Intensity
}

// Power is 4 pi lum(I)
func (l *PointLight) Power(_ *geometry.Primitives, _ *material.TexturePool, _ float64) float64 {
	return 4 * math.Pi * l.Intensity.Luminance()
}
