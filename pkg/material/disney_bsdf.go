package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// DisneyBSDF mixes the Disney diffuse, sheen, metal, clearcoat and glass lobes.
// From inside an object only the glass lobe contributes.
type DisneyBSDF struct {
	BaseColor            Texture
	SpecularTransmission float64
	Metallic             float64
	Subsurface           float64
	Specular             float64
	Roughness            float64
	SpecularTint         float64
	Anisotropic          float64
	Sheen                float64
	SheenTint            float64
	Clearcoat            float64
	ClearcoatGloss       float64
	Eta                  float64
}

func (*DisneyBSDF) isMaterial() {}

// IsSpecular is false
func (*DisneyBSDF) IsSpecular() bool { return false }

type disneyWeights struct {
	diffuse, sheen, metal, clearcoat, glass float64
}

func (d *DisneyBSDF) weights() disneyWeights {
	st, m := d.SpecularTransmission, d.Metallic
	return disneyWeights{
		diffuse:   (1 - st) * (1 - m),
		sheen:     (1 - m) * d.Sheen,
		metal:     1 - st*(1-m),
		clearcoat: 0.25 * d.Clearcoat,
		glass:     (1 - m) * st,
	}
}

// samplingWeights returns the selection weights of the cosine, metal,
// clearcoat and glass strategies. Sheen is covered by the cosine strategy.
func (w disneyWeights) samplingWeights() [4]float64 {
	return [4]float64{w.diffuse + w.sheen, w.metal, w.clearcoat, w.glass}
}

func (d *DisneyBSDF) diffuseLobe() *DisneyDiffuse {
	return &DisneyDiffuse{BaseColor: d.BaseColor, Roughness: d.Roughness, Subsurface: d.Subsurface}
}

func (d *DisneyBSDF) sheenLobe() *DisneySheen {
	return &DisneySheen{BaseColor: d.BaseColor, SheenTint: d.SheenTint}
}

func (d *DisneyBSDF) clearcoatLobe() *DisneyClearcoat {
	return &DisneyClearcoat{ClearcoatGloss: d.ClearcoatGloss}
}

func (d *DisneyBSDF) glassLobe() *DisneyGlass {
	return &DisneyGlass{BaseColor: d.BaseColor, Roughness: d.Roughness, Anisotropic: d.Anisotropic, Eta: d.Eta}
}

// metalFresnel is the achromatic-to-tinted specular color blended toward the base color by metallic
func (d *DisneyBSDF) metalFresnel(base core.Vec3) core.Vec3 {
	ks := lerp(core.NewVec3(1, 1, 1), luminanceTint(base), d.SpecularTint)
	r0 := (d.Eta - 1) / (d.Eta + 1)
	return ks.Multiply(d.Specular * r0 * r0 * (1 - d.Metallic)).Add(base.Multiply(d.Metallic))
}

func inside(dirIn core.Vec3, hit *geometry.Intersection) bool {
	return hit.GeometricNormal.Dot(dirIn) <= 0
}

// Sample selects a strategy in proportion to its weight; the returned pdf is the full mixture
func (d *DisneyBSDF) Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (SampleRecord, bool) {
	if inside(dirIn, hit) {
		return d.glassLobe().Sample(dirIn, hit, pool, sampler)
	}

	sw := d.weights().samplingWeights()
	total := sw[0] + sw[1] + sw[2] + sw[3]
	if total <= 0 {
		return SampleRecord{}, false
	}

	var rec SampleRecord
	var ok bool
	u := sampler.Get1D() * total
	switch {
	case u < sw[0]:
		rec, ok = sampleCosineLobe(dirIn, hit, sampler)
	case u < sw[0]+sw[1]:
		ax, ay := anisotropicAlpha(d.Roughness, d.Anisotropic)
		rec, ok = sampleGGXReflection(d, dirIn, hit, pool, sampler, ax, ay)
	case u < sw[0]+sw[1]+sw[2]:
		rec, ok = d.clearcoatLobe().Sample(dirIn, hit, pool, sampler)
	default:
		rec, ok = d.glassLobe().Sample(dirIn, hit, pool, sampler)
	}
	if !ok {
		return SampleRecord{}, false
	}

	rec.PDF = d.PDF(dirIn, rec.DirOut, hit, pool)
	rec.Specular = false
	if rec.PDF <= 0 || math.IsNaN(rec.PDF) {
		return SampleRecord{}, false
	}
	return rec, true
}

// Eval returns the weighted sum of the lobes
func (d *DisneyBSDF) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	w := d.weights()
	glass := d.glassLobe().Eval(dirIn, rec, hit, pool).Multiply(w.glass)
	if inside(dirIn, hit) || !sameSide(dirIn, rec.DirOut, hit) {
		return glass
	}

	base := d.BaseColor.Eval(hit.UV, pool)
	ax, ay := anisotropicAlpha(d.Roughness, d.Anisotropic)

	f := glass
	if w.diffuse > 0 {
		f = f.Add(d.diffuseLobe().Eval(dirIn, rec, hit, pool).Multiply(w.diffuse))
	}
	if w.sheen > 0 {
		f = f.Add(d.sheenLobe().Eval(dirIn, rec, hit, pool).Multiply(w.sheen))
	}
	if w.metal > 0 {
		f = f.Add(evalGGXReflection(d.metalFresnel(base), dirIn, rec.DirOut, hit, ax, ay).Multiply(w.metal))
	}
	if w.clearcoat > 0 {
		f = f.Add(d.clearcoatLobe().Eval(dirIn, rec, hit, pool).Multiply(w.clearcoat))
	}
	return f
}

// PDF returns the selection-weighted mixture of the strategy densities
func (d *DisneyBSDF) PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, pool *TexturePool) float64 {
	if inside(dirIn, hit) {
		return d.glassLobe().PDF(dirIn, dirOut, hit, pool)
	}

	sw := d.weights().samplingWeights()
	total := sw[0] + sw[1] + sw[2] + sw[3]
	if total <= 0 {
		return 0
	}

	pdf := 0.0
	if sw[3] > 0 {
		pdf += sw[3] * d.glassLobe().PDF(dirIn, dirOut, hit, pool)
	}
	if sameSide(dirIn, dirOut, hit) {
		if sw[0] > 0 {
			pdf += sw[0] * cosineLobePDF(dirIn, dirOut, hit)
		}
		if sw[1] > 0 {
			ax, ay := anisotropicAlpha(d.Roughness, d.Anisotropic)
			pdf += sw[1] * pdfGGXReflection(dirIn, dirOut, hit, ax, ay)
		}
		if sw[2] > 0 {
			pdf += sw[2] * d.clearcoatLobe().PDF(dirIn, dirOut, hit, pool)
		}
	}
	return pdf / total
}
