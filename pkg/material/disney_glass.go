package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// DisneyGlass is a rough dielectric: GGX reflection and transmission
// weighted by the exact dielectric Fresnel term
type DisneyGlass struct {
	BaseColor   Texture
	Roughness   float64
	Anisotropic float64
	Eta         float64 // interior over exterior index of refraction
}

func (*DisneyGlass) isMaterial() {}

// IsSpecular is false: roughness is clamped above zero
func (*DisneyGlass) IsSpecular() bool { return false }

// glassFrame keeps the shading normal on the same side of dirIn as the geometric normal
func glassFrame(dirIn core.Vec3, hit *geometry.Intersection) core.Frame {
	n := hit.ShadingNormal
	if n.Dot(dirIn)*hit.GeometricNormal.Dot(dirIn) < 0 {
		n = n.Negate()
	}
	return core.NewFrame(n)
}

// relativeEta is the index ratio across the interface as seen from dirIn
func (g *DisneyGlass) relativeEta(dirIn core.Vec3, hit *geometry.Intersection) float64 {
	if hit.GeometricNormal.Dot(dirIn) > 0 {
		return g.Eta
	}
	return 1 / g.Eta
}

// glassHalfVector returns the (generalized) half vector on the frame normal's side
func glassHalfVector(dirIn, dirOut core.Vec3, eta float64, reflect bool, n core.Vec3) core.Vec3 {
	var h core.Vec3
	if reflect {
		h = dirIn.Add(dirOut).Normalize()
	} else {
		h = dirIn.Add(dirOut.Multiply(eta)).Normalize()
	}
	if h.Dot(n) < 0 {
		h = h.Negate()
	}
	return h
}

// Sample picks reflection with probability F at a visible microfacet, otherwise refraction
func (g *DisneyGlass) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	frame := glassFrame(dirIn, hit)
	eta := g.relativeEta(dirIn, hit)
	ax, ay := anisotropicAlpha(g.Roughness, g.Anisotropic)

	u := sampler.Get2D()
	w := sampler.Get1D()
	h := frame.ToWorld(sampleVisibleNormal(frame.ToLocal(dirIn), ax, ay, u))
	if h.Dot(frame.N) < 0 {
		h = h.Negate()
	}

	hDotIn := h.Dot(dirIn)
	f := fresnelDielectric(hDotIn, eta)

	var dirOut core.Vec3
	if w <= f {
		dirOut = core.Reflect(dirIn, h)
	} else {
		cosTSq := 1 - (1-hDotIn*hDotIn)/(eta*eta)
		if cosTSq < 0 {
			return SampleRecord{}, false
		}
		if hDotIn < 0 {
			h = h.Negate()
			hDotIn = -hDotIn
		}
		dirOut = dirIn.Negate().Multiply(1 / eta).Add(h.Multiply(hDotIn/eta - math.Sqrt(cosTSq)))
	}
	dirOut = dirOut.Normalize()

	pdf := g.PDF(dirIn, dirOut, hit, pool)
	if pdf <= 0 || math.IsNaN(pdf) {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: pdf}, true
}

// Eval returns the microfacet reflection or transmission BSDF
func (g *DisneyGlass) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	frame := glassFrame(dirIn, hit)
	eta := g.relativeEta(dirIn, hit)
	ax, ay := anisotropicAlpha(g.Roughness, g.Anisotropic)
	dirOut := rec.DirOut

	reflect := sameSide(dirIn, dirOut, hit)
	h := glassHalfVector(dirIn, dirOut, eta, reflect, frame.N)

	wi := frame.ToLocal(dirIn)
	wo := frame.ToLocal(dirOut)
	cosIn := math.Abs(wi.Z)
	cosOut := math.Abs(wo.Z)
	if cosIn == 0 || cosOut == 0 {
		return core.Vec3{}
	}

	hDotIn := h.Dot(dirIn)
	f := fresnelDielectric(hDotIn, eta)
	d := ggxD(frame.ToLocal(h), ax, ay)
	gg := ggxG1(wi, ax, ay) * ggxG1(wo, ax, ay)
	base := g.BaseColor.Eval(hit.UV, pool)

	if reflect {
		return base.Multiply(f * d * gg / (4 * cosIn * cosOut))
	}

	hDotOut := h.Dot(dirOut)
	denom := hDotIn + eta*hDotOut
	if denom == 0 {
		return core.Vec3{}
	}
	scale := (1 - f) * d * gg * math.Abs(hDotOut*hDotIn) / (cosIn * cosOut * denom * denom)
	return base.Sqrt().Multiply(scale)
}

// PDF returns the visible-normal density of the sampled reflection or refraction
func (g *DisneyGlass) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, _ *TexturePool) float64 {
	frame := glassFrame(dirIn, hit)
	eta := g.relativeEta(dirIn, hit)
	ax, ay := anisotropicAlpha(g.Roughness, g.Anisotropic)

	reflect := sameSide(dirIn, dirOut, hit)
	h := glassHalfVector(dirIn, dirOut, eta, reflect, frame.N)

	wi := frame.ToLocal(dirIn)
	if wi.Z == 0 {
		return 0
	}
	hDotIn := h.Dot(dirIn)
	f := fresnelDielectric(hDotIn, eta)
	d := ggxD(frame.ToLocal(h), ax, ay)
	g1 := ggxG1(wi, ax, ay)

	if reflect {
		return f * d * g1 / (4 * math.Abs(wi.Z))
	}

	hDotOut := h.Dot(dirOut)
	denom := hDotIn + eta*hDotOut
	if denom == 0 {
		return 0
	}
	jacobian := eta * eta * hDotOut / (denom * denom)
	return (1 - f) * d * g1 * math.Abs(jacobian*hDotIn/wi.Z)
}
