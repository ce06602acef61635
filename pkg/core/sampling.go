package core

import (
	"math"
	"math/rand"
)

// Sampler supplies uniform numbers in [0, 1). Every sampling routine takes one explicitly.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; each tile owns one.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler wraps random; the sampler is not safe for concurrent use
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns one uniform number
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// Frame is an orthonormal basis with N as the local +Z axis
type Frame struct {
	T, B, N Vec3
}

// NewFrame builds a frame around a unit normal (Duff et al. 2017)
func NewFrame(n Vec3) Frame {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	t := NewVec3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	bt := NewVec3(b, sign+n.Y*n.Y*a, -n.Y)
	return Frame{T: t, B: bt, N: n}
}

// ToLocal expresses a world-space vector in frame coordinates
func (f Frame) ToLocal(v Vec3) Vec3 {
	return NewVec3(v.Dot(f.T), v.Dot(f.B), v.Dot(f.N))
}

// ToWorld expresses a frame-space vector in world coordinates
func (f Frame) ToWorld(v Vec3) Vec3 {
	return f.T.Multiply(v.X).Add(f.B.Multiply(v.Y)).Add(f.N.Multiply(v.Z))
}

// Flip returns the frame mirrored through its tangent plane
func (f Frame) Flip() Frame {
	return Frame{T: f.T.Negate(), B: f.B.Negate(), N: f.N.Negate()}
}

// SampleCosineHemisphere returns a direction about normal with pdf cos(theta)/pi
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	phi := 2.0 * math.Pi * sample.X
	r := math.Sqrt(sample.Y)
	local := NewVec3(r*math.Cos(phi), r*math.Sin(phi), math.Sqrt(math.Max(0, 1.0-sample.Y)))
	return NewFrame(normal).ToWorld(local)
}

// SampleCone returns a direction uniformly distributed in the cone of half-angle acos(cosTotalWidth)
func SampleCone(direction Vec3, cosTotalWidth float64, sample Vec2) Vec3 {
	cosTheta := 1.0 - sample.X*(1.0-cosTotalWidth)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))
	phi := 2.0 * math.Pi * sample.Y
	local := NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
	return NewFrame(direction).ToWorld(local)
}

// SampleOnUnitSphere returns a uniform direction with pdf 1/(4 pi)
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SampleTriangleBarycentric maps a uniform sample to barycentric
// coordinates (b0, b1) distributed uniformly over a triangle
func SampleTriangleBarycentric(sample Vec2) (float64, float64) {
	su := math.Sqrt(sample.X)
	return 1 - su, sample.Y * su
}
