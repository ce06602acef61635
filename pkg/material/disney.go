package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// DisneyDiffuse is the Burley diffuse lobe blended with a Hanrahan-Krueger
// style subsurface approximation
type DisneyDiffuse struct {
	BaseColor  Texture
	Roughness  float64
	Subsurface float64
}

func (*DisneyDiffuse) isMaterial() {}

// IsSpecular is false
func (*DisneyDiffuse) IsSpecular() bool { return false }

// Sample draws a cosine-weighted direction
func (d *DisneyDiffuse) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	return sampleCosineLobe(dirIn, hit, sampler)
}

// Eval returns the diffuse/subsurface blend
func (d *DisneyDiffuse) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
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
	hDotOut := math.Abs(h.Dot(rec.DirOut))
	base := d.BaseColor.Eval(hit.UV, pool)

	fd90 := 0.5 + 2*d.Roughness*hDotOut*hDotOut
	baseDiffuse := base.Multiply(schlickWeight(fd90, cosIn) * schlickWeight(fd90, cosOut) / math.Pi)

	fss90 := d.Roughness * hDotOut * hDotOut
	ss := schlickWeight(fss90, cosIn) * schlickWeight(fss90, cosOut)
	subsurface := base.Multiply(1.25 / math.Pi * (ss*(1/(cosIn+cosOut)-0.5) + 0.5))

	return lerp(baseDiffuse, subsurface, d.Subsurface)
}

// PDF returns the cosine-weighted density
func (d *DisneyDiffuse) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	return cosineLobePDF(dirIn, dirOut, hit)
}

// schlickWeight is 1 + (f90-1)(1-cos)^5
func schlickWeight(f90, cos float64) float64 {
	return 1 + (f90-1)*math.Pow(1-cos, 5)
}

func sampleCosineLobe(dirIn core.Vec3, hit *geometry.Intersection, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 {
		return SampleRecord{}, false
	}
	dirOut := core.SampleCosineHemisphere(frame.N, sampler.Get2D())
	pdf := cosineLobePDF(dirIn, dirOut, hit)
	if pdf <= 0 {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

func cosineLobePDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 {
		return 0
	}
	return math.Max(frame.N.Dot(dirOut), 0) / math.Pi
}

// DisneyMetal is an anisotropic GGX conductor with Schlick Fresnel on the base color
type DisneyMetal struct {
	BaseColor   Texture
	Roughness   float64
	Anisotropic float64
}

func (*DisneyMetal) isMaterial() {}

// IsSpecular is false
func (*DisneyMetal) IsSpecular() bool { return false }

// Sample draws a reflected direction from the visible normals
func (m *DisneyMetal) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	ax, ay := anisotropicAlpha(m.Roughness, m.Anisotropic)
	return sampleGGXReflection(m, dirIn, hit, pool, sampler, ax, ay)
}

// Eval returns F D G / (4 cos_in cos_out)
func (m *DisneyMetal) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	ax, ay := anisotropicAlpha(m.Roughness, m.Anisotropic)
	return evalGGXReflection(m.BaseColor.Eval(hit.UV, pool), dirIn, rec.DirOut, hit, ax, ay)
}

// PDF returns the visible-normal density of the reflected direction
func (m *DisneyMetal) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	ax, ay := anisotropicAlpha(m.Roughness, m.Anisotropic)
	return pdfGGXReflection(dirIn, dirOut, hit, ax, ay)
}

func evalGGXReflection(f0, dirIn, dirOut core.Vec3, hit *geometry.Intersection, ax, ay float64) core.Vec3 {
	if !sameSide(dirIn, dirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	return ggxReflectionEval(frame.ToLocal(dirIn), frame.ToLocal(dirOut), f0, ax, ay)
}

func pdfGGXReflection(dirIn, dirOut core.Vec3, hit *geometry.Intersection, ax, ay float64) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	return ggxReflectionPDF(frame.ToLocal(dirIn), frame.ToLocal(dirOut), ax, ay)
}

func sampleGGXReflection(m Material, dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler, ax, ay float64) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	wo, ok := ggxReflectionSample(frame.ToLocal(dirIn), ax, ay, sampler.Get2D())
	if !ok {
		return SampleRecord{}, false
	}
	dirOut := frame.ToWorld(wo).Normalize()
	pdf := m.PDF(dirIn, dirOut, hit, pool)
	if pdf <= 0 {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// DisneyClearcoat is a white GTR1 coat with a fixed 1.5 index of refraction
type DisneyClearcoat struct {
	ClearcoatGloss float64
}

func (*DisneyClearcoat) isMaterial() {}

// IsSpecular is false
func (*DisneyClearcoat) IsSpecular() bool { return false }

func (c *DisneyClearcoat) alpha() float64 {
	return (1-c.ClearcoatGloss)*0.1 + c.ClearcoatGloss*0.001
}

// Sample draws a GTR1 half vector and reflects dirIn about it
func (c *DisneyClearcoat) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	wi := frame.ToLocal(dirIn)
	if wi.Z <= 0 {
		return SampleRecord{}, false
	}
	a2 := c.alpha() * c.alpha()
	u := sampler.Get2D()
	cosH := math.Sqrt(math.Max(0, (1-math.Pow(a2, 1-u.X))/(1-a2)))
	sinH := math.Sqrt(math.Max(0, 1-cosH*cosH))
	phi := 2 * math.Pi * u.Y
	h := core.NewVec3(sinH*math.Cos(phi), sinH*math.Sin(phi), cosH)
	wo := reflectLocal(wi, h)
	if wo.Z <= 0 {
		return SampleRecord{}, false
	}
	dirOut := frame.ToWorld(wo).Normalize()
	pdf := c.PDF(dirIn, dirOut, hit, pool)
	if pdf <= 0 {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// Eval returns F D G / (4 cos_in cos_out) with R0 = 0.04
func (c *DisneyClearcoat) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, _ *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	wi := frame.ToLocal(dirIn)
	wo := frame.ToLocal(rec.DirOut)
	if wi.Z <= 0 || wo.Z <= 0 {
		return core.Vec3{}
	}
	h := wi.Add(wo).Normalize()
	f := schlickScalar(0.04, h.Dot(wo))
	d := gtr1D(h.Z, c.alpha())
	g := ggxG1(wi, 0.25, 0.25) * ggxG1(wo, 0.25, 0.25)
	v := f * d * g / (4 * wi.Z * wo.Z)
	return core.NewVec3(v, v, v)
}

// PDF returns D(h) cos_h / (4 |h.out|)
func (c *DisneyClearcoat) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	if !sameSide(dirIn, dirOut, hit) {
		return 0
	}
	frame := reflectionFrame(dirIn, hit)
	wi := frame.ToLocal(dirIn)
	wo := frame.ToLocal(dirOut)
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	h := wi.Add(wo).Normalize()
	hDotOut := math.Abs(h.Dot(wo))
	if hDotOut == 0 {
		return 0
	}
	return gtr1D(h.Z, c.alpha()) * h.Z / (4 * hDotOut)
}

// DisneySheen is the grazing retro-reflection lobe for cloth
type DisneySheen struct {
	BaseColor Texture
	SheenTint float64
}

func (*DisneySheen) isMaterial() {}

// IsSpecular is false
func (*DisneySheen) IsSpecular() bool { return false }

// Sample draws a cosine-weighted direction
func (s *DisneySheen) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	return sampleCosineLobe(dirIn, hit, sampler)
}

// Eval returns Csheen (1 - |h.out|)^5
func (s *DisneySheen) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	if !sameSide(dirIn, rec.DirOut, hit) {
		return core.Vec3{}
	}
	frame := reflectionFrame(dirIn, hit)
	if frame.N.Dot(dirIn) <= 0 || frame.N.Dot(rec.DirOut) <= 0 {
		return core.Vec3{}
	}
	h := dirIn.Add(rec.DirOut).Normalize()
	tint := luminanceTint(s.BaseColor.Eval(hit.UV, pool))
	sheen := lerp(core.NewVec3(1, 1, 1), tint, s.SheenTint)
	return sheen.Multiply(math.Pow(1-math.Abs(h.Dot(rec.DirOut)), 5))
}

// PDF returns the cosine-weighted density
func (s *DisneySheen) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	return cosineLobePDF(dirIn, dirOut, hit)
}
