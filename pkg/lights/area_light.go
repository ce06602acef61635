package lights

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// AreaLight makes a shape emit constant radiance from its front face.
// ShapeID indexes Primitives.Shapes; the shape points back through its AreaLightID.
type AreaLight struct {
	ShapeID   int
	Intensity core.Vec3
}

// NewAreaLight creates an area light attached to the given shape
func NewAreaLight(shapeID int, intensity core.Vec3) *AreaLight {
	return &AreaLight{ShapeID: shapeID, Intensity: intensity}
}

func (*AreaLight) isLight() {}

// IsDelta is false
func (*AreaLight) IsDelta() bool { return false }

// SampleOnLight delegates to the shape's sampler
func (l *AreaLight) SampleOnLight(prims *geometry.Primitives, _ *material.TexturePool, ref core.Vec3, u core.Vec2) LightPoint {
	pn := prims.Shapes[l.ShapeID].SampleOnShape(prims.Meshes, ref, u)
	return LightPoint{Point: pn.Point, Normal: pn.Normal}
}

// PDF delegates to the shape's solid-angle density
func (l *AreaLight) PDF(prims *geometry.Primitives, _ *material.TexturePool, lp LightPoint, ref core.Vec3) float64 {
	return prims.Shapes[l.ShapeID].PDF(prims.Meshes, geometry.PointAndNormal{Point: lp.Point, Normal: lp.Normal}, ref)
}

// Emission is the intensity on the side the normal faces, zero behind
func (l *AreaLight) Emission(_ *geometry.Primitives, _ *material.TexturePool, viewDir core.Vec3, lp LightPoint) core.Vec3 {
	if lp.Normal.Dot(viewDir) <= 0 {
		return core.Vec3{}
	}
	return l.Intensity
}

// Power is pi * area * lum(I)
func (l *AreaLight) Power(prims *geometry.Primitives, _ *material.TexturePool, _ float64) float64 {
	return math.Pi * prims.Shapes[l.ShapeID].Area(prims.Meshes) * l.Intensity.Luminance()
}
