package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/lights"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing with next-event estimation
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{config: config}
}

// vertexMode records which estimators contribute direct light at a path vertex
type vertexMode int

const (
	modeBSDFOnly vertexMode = iota // specular surface, no lights, or StrategyBSDF
	modeMIS
	modeOneSampleLight
	modeOneSampleBSDF
)

// oneSampleProb is the probability of choosing light sampling in one-sample MIS
const oneSampleProb = 0.5

// Li traces one path. Non-finite estimates are dropped and count as black.
func (pt *PathTracingIntegrator) Li(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	radiance := pt.trace(ray, s, sampler)
	if !radiance.IsFinite() {
		return core.Vec3{}
	}
	return radiance
}

func (pt *PathTracingIntegrator) trace(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	hit, ok := s.Intersect(ray)
	if !ok {
		return s.BackgroundRadiance(ray.Direction)
	}

	radiance := core.Vec3{}
	if hit.IsEmitter() {
		radiance = emittedRadiance(s, &hit, ray.Direction.Negate())
	}

	throughput := core.NewVec3(1, 1, 1)
	maxDepth := s.Options.MaxDepth
	for depth := 0; ; depth++ {
		m := s.Materials[hit.MaterialID]
		dirIn := ray.Direction.Negate()

		mode := pt.chooseMode(m, s, sampler)
		if mode == modeMIS || mode == modeOneSampleLight {
			direct := pt.sampleLight(mode, m, dirIn, &hit, s, sampler)
			radiance = radiance.Add(throughput.MultiplyVec(direct))
		}

		rec, ok := m.Sample(dirIn, &hit, s.Textures, sampler)
		if !ok || !(rec.PDF > 0) {
			break
		}
		f := m.Eval(dirIn, rec, &hit, s.Textures)
		cos := math.Abs(hit.ShadingNormal.Dot(rec.DirOut))
		if f.IsZero() || cos == 0 {
			break
		}
		weight := throughput.MultiplyVec(f).Multiply(cos / rec.PDF)

		next := core.SpawnRay(hit.Position, rec.DirOut)
		nextHit, ok := s.Intersect(next)
		if !ok {
			bg := s.BackgroundRadiance(rec.DirOut)
			w := 1.0
			if s.EnvmapID >= 0 {
				lp := lights.LightPoint{Point: rec.DirOut}
				w = pt.bsdfWeight(mode, rec, lightPDF(s, s.EnvmapID, lp, hit.Position))
			}
			radiance = radiance.Add(weight.MultiplyVec(bg).Multiply(w))
			break
		}

		if nextHit.IsEmitter() {
			// Emitters end the path: the light is covered by the sample pair at this vertex
			le := emittedRadiance(s, &nextHit, rec.DirOut.Negate())
			lp := lights.LightPoint{Point: nextHit.Position, Normal: nextHit.GeometricNormal}
			w := pt.bsdfWeight(mode, rec, lightPDF(s, nextHit.AreaLightID, lp, hit.Position))
			radiance = radiance.Add(weight.MultiplyVec(le).Multiply(w))
			break
		}

		if depth >= maxDepth {
			break
		}
		throughput = weight
		ray = next
		hit = nextHit
	}
	return radiance
}

// chooseMode picks the direct lighting estimators for a vertex
func (pt *PathTracingIntegrator) chooseMode(m material.Material, s *scene.Scene, sampler core.Sampler) vertexMode {
	if m.IsSpecular() || len(s.Lights) == 0 {
		return modeBSDFOnly
	}
	switch pt.config.Strategy {
	case StrategyMIS:
		return modeMIS
	case StrategyOneSampleMIS:
		if sampler.Get1D() < oneSampleProb {
			return modeOneSampleLight
		}
		return modeOneSampleBSDF
	}
	return modeBSDFOnly
}

// sampleLight is the light-sampling estimate of direct lighting at hit,
// already divided by its density and weighted for the vertex mode
func (pt *PathTracingIntegrator) sampleLight(mode vertexMode, m material.Material, dirIn core.Vec3, hit *geometry.Intersection, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	i, lp, pmf, ok := lights.SampleLight(s.Lights, s.LightSampler, &s.Primitives, s.Textures, hit.Position, sampler)
	if !ok || pmf <= 0 {
		return core.Vec3{}
	}
	l := s.Lights[i]

	dir, dist := lights.Direction(l, lp, hit.Position)
	if dist == 0 {
		return core.Vec3{}
	}
	lightPdf := pmf * l.PDF(&s.Primitives, s.Textures, lp, hit.Position)
	if !(lightPdf > 0) {
		return core.Vec3{}
	}

	le := l.Emission(&s.Primitives, s.Textures, dir.Negate(), lp)
	if l.IsDelta() {
		le = le.Multiply(1 / (dist * dist))
	}
	if le.IsZero() {
		return core.Vec3{}
	}

	f := material.Evaluate(m, dirIn, dir, hit, s.Textures)
	cos := math.Abs(hit.ShadingNormal.Dot(dir))
	if f.IsZero() || cos == 0 {
		return core.Vec3{}
	}
	if s.Occluded(lights.ShadowRay(l, lp, hit.Position)) {
		return core.Vec3{}
	}

	bsdfPdf := 0.0
	if !l.IsDelta() {
		bsdfPdf = m.PDF(dirIn, dir, hit, s.Textures)
	}

	var scale float64
	switch mode {
	case modeOneSampleLight:
		scale = 1 / (oneSampleProb*lightPdf + (1-oneSampleProb)*bsdfPdf)
	default:
		scale = pt.config.Heuristic.weight(lightPdf, bsdfPdf) / lightPdf
	}
	return f.MultiplyVec(le).Multiply(cos * scale)
}

// bsdfWeight is the weight of an emitter reached by the BSDF sample rec
func (pt *PathTracingIntegrator) bsdfWeight(mode vertexMode, rec material.SampleRecord, lightPdf float64) float64 {
	if rec.Specular {
		return 1
	}
	switch mode {
	case modeMIS:
		return pt.config.Heuristic.weight(rec.PDF, lightPdf)
	case modeOneSampleLight:
		return 0
	case modeOneSampleBSDF:
		return rec.PDF / ((1-oneSampleProb)*rec.PDF + oneSampleProb*lightPdf)
	}
	return 1
}

// lightPDF is the density with which light sampling produces lp from ref
func lightPDF(s *scene.Scene, lightID int, lp lights.LightPoint, ref core.Vec3) float64 {
	pmf := s.LightSampler.PMF(lightID)
	if pmf <= 0 {
		return 0
	}
	return pmf * s.Lights[lightID].PDF(&s.Primitives, s.Textures, lp, ref)
}

// emittedRadiance is the radiance leaving an emitting surface toward viewDir
func emittedRadiance(s *scene.Scene, hit *geometry.Intersection, viewDir core.Vec3) core.Vec3 {
	l := s.Lights[hit.AreaLightID]
	lp := lights.LightPoint{Point: hit.Position, Normal: hit.GeometricNormal}
	return l.Emission(&s.Primitives, s.Textures, viewDir, lp)
}
