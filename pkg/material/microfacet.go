package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// minAlpha keeps GGX roughness away from a delta distribution
const minAlpha = 1e-4

// anisotropicAlpha maps Disney roughness and anisotropy to GGX alphas
func anisotropicAlpha(roughness, anisotropic float64) (float64, float64) {
	aspect := math.Sqrt(1 - 0.9*anisotropic)
	r2 := roughness * roughness
	return math.Max(minAlpha, r2/aspect), math.Max(minAlpha, r2*aspect)
}

// ggxD is the anisotropic GGX distribution for a local half vector
func ggxD(h core.Vec3, ax, ay float64) float64 {
	x := h.X / ax
	y := h.Y / ay
	t := x*x + y*y + h.Z*h.Z
	return 1 / (math.Pi * ax * ay * t * t)
}

// ggxG1 is the Smith masking term for a local direction
func ggxG1(w core.Vec3, ax, ay float64) float64 {
	if w.Z == 0 {
		return 0
	}
	x := w.X * ax
	y := w.Y * ay
	lambda := (math.Sqrt(1+(x*x+y*y)/(w.Z*w.Z)) - 1) / 2
	return 1 / (1 + lambda)
}

// sampleVisibleNormal draws a GGX half vector from the distribution of
// normals visible from local direction wi (Heitz 2018)
func sampleVisibleNormal(wi core.Vec3, ax, ay float64, u core.Vec2) core.Vec3 {
	if wi.Z < 0 {
		return sampleVisibleNormal(wi.Negate(), ax, ay, u).Negate()
	}

	vh := core.NewVec3(ax*wi.X, ay*wi.Y, wi.Z).Normalize()
	lenSq := vh.X*vh.X + vh.Y*vh.Y
	t1 := core.NewVec3(1, 0, 0)
	if lenSq > 0 {
		t1 = core.NewVec3(-vh.Y, vh.X, 0).Multiply(1 / math.Sqrt(lenSq))
	}
	t2 := vh.Cross(t1)

	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	p1 := r * math.Cos(phi)
	p2 := r * math.Sin(phi)
	s := 0.5 * (1 + vh.Z)
	p2 = (1-s)*math.Sqrt(math.Max(0, 1-p1*p1)) + s*p2

	nh := t1.Multiply(p1).Add(t2.Multiply(p2)).Add(vh.Multiply(math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))))
	return core.NewVec3(ax*nh.X, ay*nh.Y, math.Max(0, nh.Z)).Normalize()
}

// gtr1D is the Generalized-Trowbridge-Reitz distribution with gamma=1 used by clearcoat
func gtr1D(cosH, alpha float64) float64 {
	a2 := alpha * alpha
	return (a2 - 1) / (math.Pi * math.Log(a2) * (1 + (a2-1)*cosH*cosH))
}

// reflectLocal mirrors w about the local half vector h
func reflectLocal(w, h core.Vec3) core.Vec3 {
	return core.Reflect(w, h)
}

// ggxReflectionPDF is the visible-normal density converted to the reflected direction
func ggxReflectionPDF(wi, wo core.Vec3, ax, ay float64) float64 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return 0
	}
	h := wi.Add(wo).Normalize()
	return ggxG1(wi, ax, ay) * ggxD(h, ax, ay) / (4 * wi.Z)
}

// ggxReflectionEval is F D G / (4 cos_in cos_out) for local directions
func ggxReflectionEval(wi, wo core.Vec3, f0 core.Vec3, ax, ay float64) core.Vec3 {
	if wi.Z <= 0 || wo.Z <= 0 {
		return core.Vec3{}
	}
	h := wi.Add(wo).Normalize()
	f := schlick(f0, h.Dot(wo))
	d := ggxD(h, ax, ay)
	g := ggxG1(wi, ax, ay) * ggxG1(wo, ax, ay)
	return f.Multiply(d * g / (4 * wi.Z * wo.Z))
}

// ggxReflectionSample draws a reflected local direction from visible normals
func ggxReflectionSample(wi core.Vec3, ax, ay float64, u core.Vec2) (core.Vec3, bool) {
	if wi.Z <= 0 {
		return core.Vec3{}, false
	}
	h := sampleVisibleNormal(wi, ax, ay, u)
	wo := reflectLocal(wi, h)
	if wo.Z <= 0 {
		return core.Vec3{}, false
	}
	return wo, true
}
