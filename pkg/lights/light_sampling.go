package lights

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// LightSampler selects one light index per shading point
type LightSampler interface {
	// Sample maps u in [0,1) to a light index, or -1 when there are no lights
	Sample(u float64) int
	// PMF returns the selection probability of light i
	PMF(i int) float64
}

// UniformLightSampler picks every light with equal probability
type UniformLightSampler struct {
	count int
}

// NewUniformLightSampler creates a uniform sampler over n lights
func NewUniformLightSampler(n int) *UniformLightSampler {
	return &UniformLightSampler{count: n}
}

// Sample returns floor(u*n), clamped to the last light
func (s *UniformLightSampler) Sample(u float64) int {
	if s.count == 0 {
		return -1
	}
	return min(int(u*float64(s.count)), s.count-1)
}

// PMF returns 1/n
func (s *UniformLightSampler) PMF(i int) float64 {
	if i < 0 || i >= s.count {
		return 0
	}
	return 1 / float64(s.count)
}

// PowerLightSampler picks lights in proportion to their emitted power.
// When every power is zero it falls back to uniform selection.
type PowerLightSampler struct {
	distribution *core.Distribution1D
}

// NewPowerLightSampler builds the selection distribution from per-light powers
func NewPowerLightSampler(powers []float64) *PowerLightSampler {
	return &PowerLightSampler{distribution: core.NewDistribution1D(powers)}
}

// Sample inverts the power cdf with a binary search
func (s *PowerLightSampler) Sample(u float64) int {
	return s.distribution.SampleDiscrete(u)
}

// PMF returns power_i / total power
func (s *PowerLightSampler) PMF(i int) float64 {
	return s.distribution.Probability(i)
}

// SampleLight selects a light and a point on it, returning the light index,
// the point and the selection probability. ok is false when there are no lights.
func SampleLight(ls []Light, sampler LightSampler, prims *geometry.Primitives, pool *material.TexturePool, ref core.Vec3, s core.Sampler) (int, LightPoint, float64, bool) {
	if len(ls) == 0 {
		return -1, LightPoint{}, 0, false
	}
	i := sampler.Sample(s.Get1D())
	if i < 0 {
		return -1, LightPoint{}, 0, false
	}
	lp := ls[i].SampleOnLight(prims, pool, ref, s.Get2D())
	return i, lp, sampler.PMF(i), true
}
