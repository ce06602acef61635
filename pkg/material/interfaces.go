package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// Material is the closed set of surface scattering models.
//
// Directions are unit vectors pointing away from the surface: dirIn toward
// the previous path vertex, dirOut toward the next. Eval returns the BSDF
// value without the cosine factor; callers multiply by |n_s . dirOut|.
type Material interface {
	// Sample draws dirOut. ok is false when no valid direction exists.
	Sample(dirIn core.Vec3, hit *geometry.Intersection, pool *TexturePool, sampler core.Sampler) (rec SampleRecord, ok bool)
	// Eval returns the BSDF for dirIn and rec.DirOut
	Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3
	// PDF returns the solid-angle density of Sample at dirOut, exactly 0 where Sample cannot reach
	PDF(dirIn, dirOut core.Vec3, hit *geometry.Intersection, pool *TexturePool) float64
	// IsSpecular reports whether light sampling at this surface should be skipped
	IsSpecular() bool

	isMaterial()
}

// SampleRecord is the result of sampling a material
type SampleRecord struct {
	DirOut   core.Vec3
	PDF      float64
	Specular bool // a delta lobe produced DirOut
}

// Evaluate returns the BSDF for an explicit direction pair, as used for light sampling
func Evaluate(m Material, dirIn, dirOut core.Vec3, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	return m.Eval(dirIn, SampleRecord{DirOut: dirOut}, hit, pool)
}

// reflectionFrame returns the shading frame on the side of the surface dirIn is on
func reflectionFrame(dirIn core.Vec3, hit *geometry.Intersection) core.Frame {
	n := hit.ShadingNormal
	if hit.GeometricNormal.Dot(dirIn) < 0 {
		n = n.Negate()
	}
	return core.NewFrame(n)
}

// sameSide reports whether both directions leave the same side of the geometric surface
func sameSide(dirIn, dirOut core.Vec3, hit *geometry.Intersection) bool {
	return hit.GeometricNormal.Dot(dirIn)*hit.GeometricNormal.Dot(dirOut) > 0
}

// schlick returns the Schlick Fresnel approximation for reflectance f0
func schlick(f0 core.Vec3, cosTheta float64) core.Vec3 {
	c := math.Pow(1-math.Min(1, math.Abs(cosTheta)), 5)
	return f0.Add(core.NewVec3(1, 1, 1).Subtract(f0).Multiply(c))
}

// schlickScalar is schlick for a scalar reflectance
func schlickScalar(f0, cosTheta float64) float64 {
	return f0 + (1-f0)*math.Pow(1-math.Min(1, math.Abs(cosTheta)), 5)
}

// fresnelDielectric is the unpolarized Fresnel reflectance for relative index eta.
// cosI is measured on the incident side; total internal reflection returns 1.
func fresnelDielectric(cosI, eta float64) float64 {
	cosTSq := 1 - (1-cosI*cosI)/(eta*eta)
	if cosTSq <= 0 {
		return 1
	}
	cosI = math.Abs(cosI)
	cosT := math.Sqrt(cosTSq)
	rs := (cosI - eta*cosT) / (cosI + eta*cosT)
	rp := (eta*cosI - cosT) / (eta*cosI + cosT)
	return 0.5 * (rs*rs + rp*rp)
}

// luminanceTint returns c normalized by its luminance, or white for black
func luminanceTint(c core.Vec3) core.Vec3 {
	lum := c.Luminance()
	if lum <= 0 {
		return core.NewVec3(1, 1, 1)
	}
	return c.Multiply(1 / lum)
}

func lerp(a, b core.Vec3, t float64) core.Vec3 {
	return a.Multiply(1 - t).Add(b.Multiply(t))
}
