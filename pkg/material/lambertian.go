package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Diffuse is a Lambertian reflector
type Diffuse struct {
	Reflectance Texture
}

// NewDiffuse creates a Lambertian material
func NewDiffuse(reflectance Texture) *Diffuse {
	return &Diffuse{Reflectance: reflectance}
}

func (*Diffuse) isMaterial() {}

// IsSpecular is false: light sampling applies
func (*Diffuse) IsSpecular() bool { return false }

// Sample draws a cosine-weighted direction around the shading normal
func (d *Diffuse) Sample(dirIn core.Vec3, hit *geometry.Intersection, _ *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	dirOut := core.SampleCosineHemisphere(frame.N, sampler.Get2D())
	pdf := math.Max(frame.N.Dot(dirOut), 0) / math.Pi
	if pdf <= 0 || !sameSide(dirIn, dirOut, hit) {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// Eval returns reflectance/pi for directions on the same side
func (d *Diffuse) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(rec.DirOut) <= 0 {
		return core.Vec3{}
	}
	return d.Reflectance.Eval(hit.UV, pool).Multiply(1 / math.Pi)
}

// PDF returns the cosine-weighted density
func (d *Diffuse) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	return math.Max(frame.N.Dot(dirOut), 0) / math.Pi
}
