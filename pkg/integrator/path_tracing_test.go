package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func newTestSampler() core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(42)))
}

func newTestScene(t *testing.T, maxDepth int) *scene.Scene {
	t.Helper()
	camera, err := geometry.NewCamera(geometry.CameraConfig{
		LookFrom: core.NewVec3(0, 0, 5),
		LookAt:   core.Vec3{},
		Up:       core.NewVec3(0, 1, 0),
		VFov:     40,
		Width:    4,
		Height:   4,
	})
	if err != nil {
		t.Fatal(err)
	}
	return scene.New(camera, scene.Options{SamplesPerPixel: 1, MaxDepth: maxDepth})
}

func diffuse(r, g, b float64) material.Material {
	return material.NewDiffuse(material.NewConstTexture(core.NewVec3(r, g, b)))
}

func preprocess(t *testing.T, s *scene.Scene) *scene.Scene {
	t.Helper()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return s
}

func meanLi(in Integrator, ray core.Ray, s *scene.Scene, n int) core.Vec3 {
	sampler := newTestSampler()
	sum := core.Vec3{}
	for i := 0; i < n; i++ {
		sum = sum.Add(in.Li(ray, s, sampler))
	}
	return sum.Multiply(1 / float64(n))
}

func relErr(got, want float64) float64 {
	return math.Abs(got-want) / math.Abs(want)
}

// A unit diffuse sphere under a point light: at the apex the direct term is Kd/pi * I/d^2
func TestLi_PointLightApex(t *testing.T) {
	s := newTestScene(t, 0)
	kd := 0.6
	m := s.AddMaterial(diffuse(kd, kd, kd))
	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, m))
	intensity := 10.0
	s.AddPointLight(core.NewVec3(0, 5, 0), core.NewVec3(intensity, intensity, intensity))
	preprocess(t, s)

	want := kd / math.Pi * intensity / 16
	ray := core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0))

	t.Run("mis is exact per sample", func(t *testing.T) {
		in := NewPathTracingIntegrator(Config{})
		sampler := newTestSampler()
		for i := 0; i < 32; i++ {
			got := in.Li(ray, s, sampler)
			if relErr(got.X, want) > 1e-9 || got.X != got.Y || got.Y != got.Z {
				t.Fatalf("sample %d: Li = %v, want %f", i, got, want)
			}
		}
	})

	t.Run("one-sample mis in expectation", func(t *testing.T) {
		in := NewPathTracingIntegrator(Config{Strategy: StrategyOneSampleMIS})
		got := meanLi(in, ray, s, 20000)
		if relErr(got.X, want) > 0.05 {
			t.Errorf("mean Li = %f, want %f", got.X, want)
		}
	})

	t.Run("bsdf sampling cannot reach a point light", func(t *testing.T) {
		in := NewPathTracingIntegrator(Config{Strategy: StrategyBSDF})
		if got := meanLi(in, ray, s, 100); !got.IsZero() {
			t.Errorf("Li = %v, want 0", got)
		}
	})
}

func TestLi_NoLightsIsBlack(t *testing.T) {
	for _, strategy := range []Strategy{StrategyMIS, StrategyBSDF, StrategyOneSampleMIS} {
		t.Run(strategy.String(), func(t *testing.T) {
			s := newTestScene(t, 5)
			m := s.AddMaterial(diffuse(0.8, 0.8, 0.8))
			s.AddMesh(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), m))
			s.AddShape(geometry.NewSphere(core.NewVec3(0, 1, 0), 1, m))
			preprocess(t, s)

			in := NewPathTracingIntegrator(Config{Strategy: strategy})
			sampler := newTestSampler()
			for i := 0; i < 200; i++ {
				dir := core.NewVec3(sampler.Get1D()-0.5, -1, sampler.Get1D()-0.5).Normalize()
				got := in.Li(core.NewRay(core.NewVec3(2, 3, 2), dir), s, sampler)
				if !got.IsZero() {
					t.Fatalf("Li = %v, want 0", got)
				}
			}
		})
	}
}

func TestLi_MirrorReflectsBackground(t *testing.T) {
	s := newTestScene(t, 0)
	reflectance := core.NewVec3(0.9, 0.8, 0.7)
	m := s.AddMaterial(material.NewMirror(material.NewConstTexture(reflectance)))
	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, m))
	s.Background = core.NewVec3(0.2, 0.4, 0.6)
	preprocess(t, s)

	in := NewPathTracingIntegrator(Config{})
	got := in.Li(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), s, newTestSampler())
	want := s.Background.MultiplyVec(reflectance)
	if got.Subtract(want).Length() > 1e-12 {
		t.Errorf("Li = %v, want %v", got, want)
	}
}

func TestLi_MissReturnsBackground(t *testing.T) {
	s := newTestScene(t, 3)
	s.Background = core.NewVec3(0.1, 0.2, 0.3)
	preprocess(t, s)

	in := NewPathTracingIntegrator(Config{})
	if got := in.Li(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), s, newTestSampler()); got != s.Background {
		t.Errorf("Li = %v, want %v", got, s.Background)
	}
}

// quadLightScene is a diffuse floor at y = 0 under a 2x2 quad light at y = 2
func quadLightScene(t *testing.T, maxDepth int, selection scene.LightSelection) *scene.Scene {
	s := newTestScene(t, maxDepth)
	s.Options.LightSelection = selection
	floor := s.AddMaterial(diffuse(0.8, 0.8, 0.8))
	black := s.AddMaterial(diffuse(0, 0, 0))
	s.AddMesh(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), floor))
	s.AddQuadLight(core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), core.NewVec3(4, 4, 4), black)
	return preprocess(t, s)
}

func TestLi_EmitterSeenDirectly(t *testing.T) {
	s := quadLightScene(t, 0, scene.LightSelectionUniform)
	in := NewPathTracingIntegrator(Config{})

	// from below the light faces the ray
	if got := in.Li(core.NewRay(core.NewVec3(0.2, 1, 0.1), core.NewVec3(0, 1, 0)), s, newTestSampler()); got != core.NewVec3(4, 4, 4) {
		t.Errorf("front face Li = %v, want (4, 4, 4)", got)
	}
	// from above only the black back of the light is visible
	if got := in.Li(core.NewRay(core.NewVec3(0.2, 3, 0.1), core.NewVec3(0, -1, 0)), s, newTestSampler()); !got.IsZero() {
		t.Errorf("back face Li = %v, want 0", got)
	}
}

// Every strategy estimates the same direct lighting
func TestLi_StrategiesAgree(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0.3, 1, 0.2), core.NewVec3(0, -1, 0))
	const n = 60000

	reference := meanLi(NewPathTracingIntegrator(Config{Strategy: StrategyBSDF}), ray,
		quadLightScene(t, 0, scene.LightSelectionUniform), n).X

	tests := []struct {
		name      string
		config    Config
		selection scene.LightSelection
	}{
		{"mis balance", Config{Strategy: StrategyMIS, Heuristic: HeuristicBalance}, scene.LightSelectionUniform},
		{"mis power", Config{Strategy: StrategyMIS, Heuristic: HeuristicPower}, scene.LightSelectionUniform},
		{"mis power-selected lights", Config{Strategy: StrategyMIS}, scene.LightSelectionPower},
		{"one-sample", Config{Strategy: StrategyOneSampleMIS}, scene.LightSelectionUniform},
		{"one-sample power-selected lights", Config{Strategy: StrategyOneSampleMIS}, scene.LightSelectionPower},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := quadLightScene(t, 0, tt.selection)
			got := meanLi(NewPathTracingIntegrator(tt.config), ray, s, n).X
			if relErr(got, reference) > 0.04 {
				t.Errorf("mean Li = %f, bsdf-only reference %f", got, reference)
			}
		})
	}
}

func TestLi_EnvmapStrategiesAgree(t *testing.T) {
	build := func() *scene.Scene {
		s := newTestScene(t, 0)
		floor := s.AddMaterial(diffuse(0.5, 0.5, 0.5))
		s.AddMesh(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), floor))
		img := material.NewGradientImage(32, 16, core.NewVec3(2, 2, 2), core.NewVec3(0.1, 0.1, 0.1))
		if err := s.SetEnvmap("sky", img, core.Identity(), 1); err != nil {
			t.Fatal(err)
		}
		return preprocess(t, s)
	}
	ray := core.NewRay(core.NewVec3(0.3, 1, 0.2), core.NewVec3(0, -1, 0))
	const n = 40000

	bsdf := meanLi(NewPathTracingIntegrator(Config{Strategy: StrategyBSDF}), ray, build(), n).X
	mis := meanLi(NewPathTracingIntegrator(Config{}), ray, build(), n).X
	if relErr(mis, bsdf) > 0.03 {
		t.Errorf("mis %f, bsdf %f", mis, bsdf)
	}
}

// Only the first environment map lights the scene; a second one must not leak in through light sampling
func TestLi_SecondEnvmapIgnored(t *testing.T) {
	build := func(selection scene.LightSelection) *scene.Scene {
		s := newTestScene(t, 0)
		s.Options.LightSelection = selection
		floor := s.AddMaterial(diffuse(0.5, 0.5, 0.5))
		s.AddMesh(geometry.NewQuad(core.NewVec3(-5, 0, 5), core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -10), floor))
		dim := material.NewGradientImage(16, 8, core.NewVec3(1, 1, 1), core.NewVec3(1, 1, 1))
		bright := material.NewGradientImage(16, 8, core.NewVec3(5, 5, 5), core.NewVec3(5, 5, 5))
		if err := s.SetEnvmap("dim", dim, core.Identity(), 1); err != nil {
			t.Fatal(err)
		}
		if err := s.SetEnvmap("bright", bright, core.Identity(), 1); err != nil {
			t.Fatal(err)
		}
		return preprocess(t, s)
	}
	ray := core.NewRay(core.NewVec3(0.3, 1, 0.2), core.NewVec3(0, -1, 0))
	const n = 40000
	// Kd * L under a constant sky of radiance 1
	const want = 0.5

	tests := []struct {
		name      string
		config    Config
		selection scene.LightSelection
	}{
		{"bsdf", Config{Strategy: StrategyBSDF}, scene.LightSelectionUniform},
		{"mis uniform", Config{}, scene.LightSelectionUniform},
		{"mis power", Config{}, scene.LightSelectionPower},
		{"one-sample", Config{Strategy: StrategyOneSampleMIS}, scene.LightSelectionUniform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := meanLi(NewPathTracingIntegrator(tt.config), ray, build(tt.selection), n).X
			if relErr(got, want) > 0.03 {
				t.Errorf("mean Li = %f, want %f", got, want)
			}
		})
	}
}

func TestLi_DepthBounds(t *testing.T) {
	// Two facing mirrors trap the path; only maxDepth stops it
	for _, depth := range []int{-3, 0, 4, 50} {
		s := newTestScene(t, depth)
		m := s.AddMaterial(material.NewMirror(material.NewConstTexture(core.NewVec3(0.9, 0.9, 0.9))))
		s.AddMesh(geometry.NewQuad(core.NewVec3(-5, -5, 1), core.NewVec3(10, 0, 0), core.NewVec3(0, 10, 0), m))
		s.AddMesh(geometry.NewQuad(core.NewVec3(-5, -5, -1), core.NewVec3(0, 10, 0), core.NewVec3(10, 0, 0), m))
		s.Background = core.NewVec3(1, 1, 1)
		preprocess(t, s)

		// off the quads' diagonals
		origin := core.NewVec3(0.3, -0.2, 0)
		got := NewPathTracingIntegrator(Config{}).Li(core.NewRay(origin, core.NewVec3(0, 0, 1)), s, newTestSampler())
		if !got.IsZero() {
			t.Errorf("depth %d: Li = %v, want 0 for a closed mirror pair", depth, got)
		}
	}
}

func TestLi_DropsNonFinite(t *testing.T) {
	s := newTestScene(t, 0)
	m := s.AddMaterial(diffuse(0.5, 0.5, 0.5))
	s.AddShape(geometry.NewSphere(core.Vec3{}, 1, m))
	s.AddPointLight(core.NewVec3(0, 5, 0), core.NewVec3(math.NaN(), 1, 1))
	preprocess(t, s)

	got := NewPathTracingIntegrator(Config{}).Li(core.NewRay(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0)), s, newTestSampler())
	if !got.IsZero() {
		t.Errorf("Li = %v, want black for a non-finite estimate", got)
	}
}

func TestParseStrategyAndHeuristic(t *testing.T) {
	for _, s := range []Strategy{StrategyMIS, StrategyBSDF, StrategyOneSampleMIS} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	for _, h := range []Heuristic{HeuristicBalance, HeuristicPower} {
		got, err := ParseHeuristic(h.String())
		if err != nil || got != h {
			t.Errorf("ParseHeuristic(%q) = %v, %v", h.String(), got, err)
		}
	}
	if _, err := ParseStrategy("bdpt"); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
	if _, err := ParseHeuristic("max"); err == nil {
		t.Error("expected an error for an unknown heuristic")
	}
}
