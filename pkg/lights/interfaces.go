package lights

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Light is the closed set of emitters: *PointLight, *AreaLight and *Envmap.
// Shapes and images are resolved through prims and pool.
type Light interface {
	// SampleOnLight picks a point on the light as seen from ref
	SampleOnLight(prims *geometry.Primitives, pool *material.TexturePool, ref core.Vec3, u core.Vec2) LightPoint

	// PDF is the solid-angle density of SampleOnLight at lp, seen from ref.
	// Delta lights return 1.
	PDF(prims *geometry.Primitives, pool *material.TexturePool, lp LightPoint, ref core.Vec3) float64

	// Emission is the radiance leaving lp along viewDir, which points from the light toward the viewer.
	// Point lights return their intensity; the caller applies the inverse-square falloff.
	Emission(prims *geometry.Primitives, pool *material.TexturePool, viewDir core.Vec3, lp LightPoint) core.Vec3

	// Power is the total emitted power, used for power-proportional light selection
	Power(prims *geometry.Primitives, pool *material.TexturePool, sceneRadius float64) float64

	// IsDelta reports a light that can only be reached by explicit sampling
	IsDelta() bool

	isLight()
}

// LightPoint is a sampled location on a light.
// For an environment map Point holds the unit direction toward the light and Normal is zero.
type LightPoint struct {
	Point  core.Vec3
	Normal core.Vec3
}

// Direction returns the unit direction from ref toward lp and the distance to it.
// Environment maps are infinitely far away.
func Direction(l Light, lp LightPoint, ref core.Vec3) (core.Vec3, float64) {
	if _, ok := l.(*Envmap); ok {
		return lp.Point, math.Inf(1)
	}
	d := lp.Point.Subtract(ref)
	dist := d.Length()
	if dist == 0 {
		return core.Vec3{}, 0
	}
	return d.Multiply(1 / dist), dist
}

// ShadowRay builds the visibility ray from p toward lp
func ShadowRay(l Light, lp LightPoint, p core.Vec3) core.Ray {
	if _, ok := l.(*Envmap); ok {
		return core.SpawnRay(p, lp.Point)
	}
	return core.SpawnRayTo(p, lp.Point)
}
