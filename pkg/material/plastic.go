package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Plastic layers a smooth dielectric coat over a Lambertian base.
// The coat reflects with probability F and the base receives the rest.
type Plastic struct {
	Reflectance Texture
	Eta         float64
}

// NewPlastic creates a plastic material with index of refraction eta
func NewPlastic(reflectance Texture, eta float64) *Plastic {
	return &Plastic{Reflectance: reflectance, Eta: eta}
}

func (*Plastic) isMaterial() {}

// IsSpecular is true: the coat is a delta lobe
func (*Plastic) IsSpecular() bool { return true }

func (p *Plastic) fresnel(cos float64) float64 {
	f0 := (p.Eta - 1) / (p.Eta + 1)
	return schlickScalar(f0*f0, cos)
}

// Sample picks the specular coat with probability F, otherwise the diffuse base
func (p *Plastic) Sample(dirIn core.Vec3, hit *geometry.Intersection, _ *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	f := p.fresnel(frame.N.Dot(dirIn))

	if sampler.Get1D() < f {
		dirOut := core.Reflect(dirIn, frame.N)
		if !sameSide(dirIn, dirOut, hit) {
			return SampleRecord{}, false
		}
		return SampleRecord{DirOut: dirOut, PDF: f, Specular: true}, true
	}

	dirOut := core.SampleCosineHemisphere(frame.N, sampler.Get2D())
	pdf := (1 - f) * math.Max(frame.N.Dot(dirOut), 0) / math.Pi
	if pdf <= 0 || !sameSide(dirIn, dirOut, hit) {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// Eval returns the coat term F/|cos| for the specular lobe and (1-F)Kd/pi for the base
func (p *Plastic) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	cosOut := frame.N.Dot(rec.DirOut)
	if cosOut <= 0 {
		return core.Vec3{}
	}
	f := p.fresnel(frame.N.Dot(dirIn))

	if rec.Specular {
		return core.NewVec3(f, f, f).Multiply(1 / cosOut)
	}
	return p.Reflectance.Eval(hit.UV, pool).Multiply((1 - f) / math.Pi)
}

// PDF returns the density of the diffuse base; the coat has no density
func (p *Plastic) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	f := p.fresnel(frame.N.Dot(dirIn))
	return (1 - f) * math.Max(frame.N.Dot(dirOut), 0) / math.Pi
}
