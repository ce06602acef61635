package material

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestMirror_NormalIncidenceReturnsReflectance(t *testing.T) {
	f0 := core.NewVec3(0.9, 0.6, 0.3)
	m := NewMirror(NewConstTexture(f0))
	hit := flatHit()

	rec, ok := m.Sample(core.NewVec3(0, 0, 1), hit, nil, newTestSampler())
	if !ok {
		t.Fatal("mirror should always reflect")
	}
	if !rec.Specular {
		t.Error("mirror sample should be marked specular")
	}
	if rec.DirOut.Subtract(core.NewVec3(0, 0, 1)).Length() > 1e-12 {
		t.Errorf("DirOut = %v, want +z", rec.DirOut)
	}

	weight := m.Eval(core.NewVec3(0, 0, 1), rec, hit, nil).Multiply(math.Abs(rec.DirOut.Z) / rec.PDF)
	if weight.Subtract(f0).Length() > 1e-12 {
		t.Errorf("throughput = %v, want %v", weight, f0)
	}
}

func TestMirror_ReflectsAboutNormal(t *testing.T) {
	m := NewMirror(NewConstTexture(core.NewVec3(1, 1, 1)))
	hit := flatHit()
	dirIn := core.NewVec3(0, 1, 1).Normalize()

	rec, ok := m.Sample(dirIn, hit, nil, newTestSampler())
	if !ok {
		t.Fatal("mirror should reflect")
	}
	want := core.NewVec3(0, -1, 1).Normalize()
	if rec.DirOut.Subtract(want).Length() > 1e-12 {
		t.Errorf("DirOut = %v, want %v", rec.DirOut, want)
	}
}

func TestMirror_NoDensity(t *testing.T) {
	m := NewMirror(NewConstTexture(core.NewVec3(1, 1, 1)))
	hit := flatHit()
	dirIn := core.NewVec3(0, 1, 1).Normalize()

	if pdf := m.PDF(dirIn, core.NewVec3(0, -1, 1).Normalize(), hit, nil); pdf != 0 {
		t.Errorf("PDF = %f, want 0 for a delta lobe", pdf)
	}
	if got := Evaluate(m, dirIn, core.NewVec3(0, 0, 1), hit, nil); !got.IsZero() {
		t.Errorf("Eval off the mirror direction = %v, want 0", got)
	}
	if !m.IsSpecular() {
		t.Error("mirror must be specular")
	}
}

func TestPlastic_LobeWeights(t *testing.T) {
	kd := core.NewVec3(0.2, 0.5, 0.8)
	p := NewPlastic(NewConstTexture(kd), 1.5)
	hit := flatHit()
	sampler := newTestSampler()
	dirIn := core.NewVec3(0.2, 0, 1).Normalize()

	f0 := math.Pow((1.5-1)/(1.5+1), 2)
	fresnel := schlickScalar(f0, dirIn.Z)

	specular, diffuse := 0, 0
	for i := 0; i < 20000; i++ {
		rec, ok := p.Sample(dirIn, hit, nil, sampler)
		if !ok {
			continue
		}
		weight := p.Eval(dirIn, rec, hit, nil).Multiply(math.Abs(rec.DirOut.Z) / rec.PDF)
		if rec.Specular {
			specular++
			if weight.Subtract(core.NewVec3(1, 1, 1)).Length() > 1e-9 {
				t.Fatalf("specular weight = %v, want 1", weight)
			}
		} else {
			diffuse++
			if weight.Subtract(kd).Length() > 1e-9 {
				t.Fatalf("diffuse weight = %v, want %v", weight, kd)
			}
		}
	}

	ratio := float64(specular) / float64(specular+diffuse)
	if math.Abs(ratio-fresnel) > 0.01 {
		t.Errorf("specular fraction %f, want %f", ratio, fresnel)
	}
}
