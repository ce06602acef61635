package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Phong is the normalized Phong lobe around the mirror direction
type Phong struct {
	Reflectance Texture
	Exponent    float64
}

// NewPhong creates a Phong material
func NewPhong(reflectance Texture, exponent float64) *Phong {
	return &Phong{Reflectance: reflectance, Exponent: exponent}
}

func (*Phong) isMaterial() {}

// IsSpecular is false
func (*Phong) IsSpecular() bool { return false }

// Sample draws a direction around the reflected vector with density ~ cos^n
func (p *Phong) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 {
		return SampleRecord{}, false
	}
	r := core.Reflect(dirIn, frame.N)

	u := sampler.Get2D()
	cosAlpha := math.Pow(u.X, 1/(p.Exponent+1))
	sinAlpha := math.Sqrt(math.Max(0, 1-cosAlpha*cosAlpha))
	phi := 2 * math.Pi * u.Y
	local := core.NewVec3(sinAlpha*math.Cos(phi), sinAlpha*math.Sin(phi), cosAlpha)
	dirOut := core.NewFrame(r).ToWorld(local)

	if frame.N.Dot(dirOut) <= 0 || !sameSide(dirIn, dirOut, hit) {
		return SampleRecord{}, false
	}
	pdf := p.PDF(dirIn, dirOut, hit, pool)
	if pdf <= 0 {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// Eval returns Ks (n+1)/(2pi) cos^n(alpha) / cos(theta_out)
func (p *Phong) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	cosOut := frame.N.Dot(rec.DirOut)
	if cosOut <= 0 || frame.N.Dot(dirIn) <= 0 {
		return core.Vec3{}
	}
	cosAlpha := core.Reflect(dirIn, frame.N).Dot(rec.DirOut)
	if cosAlpha <= 0 {
		return core.Vec3{}
	}
	ks := p.Reflectance.Eval(hit.UV, pool)
	lobe := (p.Exponent + 1) / (2 * math.Pi) * math.Pow(cosAlpha, p.Exponent)
	return ks.Multiply(lobe / cosOut)
}

// PDF returns (n+1)/(2pi) cos^n(alpha) above the surface
func (p *Phong) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 || frame.N.Dot(dirOut) <= 0 {
		return 0
	}
	cosAlpha := core.Reflect(dirIn, frame.N).Dot(dirOut)
	if cosAlpha <= 0 {
		return 0
	}
	return (p.Exponent + 1) / (2 * math.Pi) * math.Pow(cosAlpha, p.Exponent)
}

// BlinnPhong is the energy-normalized Blinn-Phong model with Schlick Fresnel
type BlinnPhong struct {
	Reflectance Texture
	Exponent    float64
}

// NewBlinnPhong creates a Blinn-Phong material
func NewBlinnPhong(reflectance Texture, exponent float64) *BlinnPhong {
	return &BlinnPhong{Reflectance: reflectance, Exponent: exponent}
}

func (*BlinnPhong) isMaterial() {}

// IsSpecular is false
func (*BlinnPhong) IsSpecular() bool { return false }

// Sample draws a half vector with density ~ cos^n and reflects dirIn about it
func (b *BlinnPhong) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	return sampleBlinnHalfVector(b, b.Exponent, dirIn, hit, pool, sampler)
}

// Eval returns (n+2)/(4pi(2-2^(-n/2))) F (n.h)^n / cos(theta_out)
func (b *BlinnPhong) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	cosOut := frame.N.Dot(rec.DirOut)
	if cosOut <= 0 || frame.N.Dot(dirIn) <= 0 {
		return core.Vec3{}
	}
	h := dirIn.Add(rec.DirOut).Normalize()
	cosH := frame.N.Dot(h)
	if cosH <= 0 {
		return core.Vec3{}
	}
	n := b.Exponent
	norm := (n + 2) / (4 * math.Pi * (2 - math.Pow(2, -n/2)))
	f := schlick(b.Reflectance.Eval(hit.UV, pool), h.Dot(rec.DirOut))
	return f.Multiply(norm * math.Pow(cosH, n) / cosOut)
}

// PDF returns the half-vector density converted to dirOut
func (b *BlinnPhong) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	return blinnHalfVectorPDF(b.Exponent, dirIn, dirOut, hit)
}

// BlinnPhongMicrofacet is a Cook-Torrance model with a Blinn-Phong
// distribution and Beckmann-Smith shadowing
type BlinnPhongMicrofacet struct {
	Reflectance Texture
	Exponent    float64
}

// NewBlinnPhongMicrofacet creates a Blinn-Phong microfacet material
func NewBlinnPhongMicrofacet(reflectance Texture, exponent float64) *BlinnPhongMicrofacet {
	return &BlinnPhongMicrofacet{Reflectance: reflectance, Exponent: exponent}
}

func (*BlinnPhongMicrofacet) isMaterial() {}

// IsSpecular is false
func (*BlinnPhongMicrofacet) IsSpecular() bool { return false }

// Sample reuses Blinn-Phong half-vector sampling
func (b *BlinnPhongMicrofacet) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	return sampleBlinnHalfVector(b, b.Exponent, dirIn, hit, pool, sampler)
}

// Eval returns F D G / (4 cos_in cos_out)
func (b *BlinnPhongMicrofacet) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	cosIn := frame.N.Dot(dirIn)
	cosOut := frame.N.Dot(rec.DirOut)
	if cosIn <= 0 || cosOut <= 0 {
		return core.Vec3{}
	}
	h := dirIn.Add(rec.DirOut).Normalize()
	cosH := frame.N.Dot(h)
	if cosH <= 0 {
		return core.Vec3{}
	}
	n := b.Exponent
	d := (n + 2) / (2 * math.Pi) * math.Pow(cosH, n)
	alpha := math.Sqrt(2 / (n + 2))
	g := beckmannSmithG1(cosIn, alpha) * beckmannSmithG1(cosOut, alpha)
	f := schlick(b.Reflectance.Eval(hit.UV, pool), h.Dot(rec.DirOut))
	return f.Multiply(d * g / (4 * cosIn * cosOut))
}

// PDF returns the half-vector density converted to dirOut
func (b *BlinnPhongMicrofacet) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	return blinnHalfVectorPDF(b.Exponent, dirIn, dirOut, hit)
}

// beckmannSmithG1 uses Walter et al.'s rational approximation
func beckmannSmithG1(cos, alpha float64) float64 {
	if cos >= 1 {
		return 1
	}
	tan := math.Sqrt(math.Max(0, 1-cos*cos)) / cos
	if tan == 0 {
		return 1
	}
	a := 1 / (alpha * tan)
	if a >= 1.6 {
		return 1
	}
	return (3.535*a + 2.181*a*a) / (1 + 2.276*a + 2.577*a*a)
}

func sampleBlinnHalfVector(m Material, exponent float64, dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 {
		return SampleRecord{}, false
	}
	u := sampler.Get2D()
	cosH := math.Pow(u.X, 1/(exponent+1))
	sinH := math.Sqrt(math.Max(0, 1-cosH*cosH))
	phi := 2 * math.Pi * u.Y
	h := frame.ToWorld(core.NewVec3(sinH*math.Cos(phi), sinH*math.Sin(phi), cosH))
	dirOut := core.Reflect(dirIn, h)

	if frame.N.Dot(dirOut) <= 0 || !sameSide(dirIn, dirOut, hit) {
		return SampleRecord{}, false
	}
	pdf := m.PDF(dirIn, dirOut, hit, pool)
	if pdf <= 0 {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// blinnHalfVectorPDF is (n+1) (n.h)^n / (2pi * 4 (dirOut.h))
func blinnHalfVectorPDF(exponent float64, dirIn, dirOut core.Vec3, hit *geometry.Intersection) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 || frame.N.Dot(dirOut) <= 0 {
		return 0
	}
	h := dirIn.Add(dirOut).Normalize()
	cosH := frame.N.Dot(h)
	hDotOut := h.Dot(dirOut)
	if cosH <= 0 || hDotOut <= 0 {
		return 0
	}
	return (exponent + 1) * math.Pow(cosH, exponent) / (2 * math.Pi * 4 * hDotOut)
}
