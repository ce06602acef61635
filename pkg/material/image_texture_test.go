package material

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func vecNear(a, b core.Vec3, tol float64) bool {
	return a.Subtract(b).Length() <= tol
}

func TestImage3_BilinearWraps(t *testing.T) {
	img := NewImage3(2, 1)
	img.Set(0, 0, core.NewVec3(1, 0, 0))
	img.Set(1, 0, core.NewVec3(0, 0, 1))

	tests := []struct {
		name string
		x, y float64
		want core.Vec3
	}{
		{"on pixel 0", 0, 0, core.NewVec3(1, 0, 0)},
		{"on pixel 1", 1, 0, core.NewVec3(0, 0, 1)},
		{"midway", 0.5, 0, core.NewVec3(0.5, 0, 0.5)},
		{"wraps past the right edge", 1.5, 0, core.NewVec3(0.5, 0, 0.5)},
		{"wraps past the left edge", -0.25, 0, core.NewVec3(0.75, 0, 0.25)},
		{"wraps vertically", 0, 3, core.NewVec3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.Bilinear(tt.x, tt.y); !vecNear(got, tt.want, 1e-12) {
				t.Errorf("Bilinear(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestImageTexture_UVTransform(t *testing.T) {
	pool := NewTexturePool()
	img := NewCheckerboardImage(2, 2, 1, core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0))
	id := pool.AddImage("checker", img)

	tex := NewImageTexture(id)
	if got := tex.Eval(core.NewVec2(0, 0), pool); !vecNear(got, core.NewVec3(1, 1, 1), 1e-12) {
		t.Errorf("Eval(0,0) = %v, want white", got)
	}
	if got := tex.Eval(core.NewVec2(0.5, 0), pool); !vecNear(got, core.Vec3{}, 1e-12) {
		t.Errorf("Eval(0.5,0) = %v, want black", got)
	}

	// Integer uv periods land on the same texel
	for _, uv := range []core.Vec2{core.NewVec2(1, 0), core.NewVec2(-1, 2), core.NewVec2(3, -4)} {
		if got := tex.Eval(uv, pool); !vecNear(got, core.NewVec3(1, 1, 1), 1e-9) {
			t.Errorf("Eval(%v) = %v, want white", uv, got)
		}
	}

	tex.UScale = 2
	tex.UOffset = 0.25
	// 2*0.125 + 0.25 = 0.5 -> column 1
	if got := tex.Eval(core.NewVec2(0.125, 0), pool); !vecNear(got, core.Vec3{}, 1e-12) {
		t.Errorf("scaled Eval = %v, want black", got)
	}
}

func TestTexturePool_DedupsByName(t *testing.T) {
	pool := NewTexturePool()
	a := pool.AddImage("sky", NewImage3(4, 2))
	b := pool.AddImage("floor", NewImage3(2, 2))
	c := pool.AddImage("sky", NewImage3(8, 8))

	if a != c {
		t.Errorf("same name returned ids %d and %d", a, c)
	}
	if a == b {
		t.Error("different names share an id")
	}
	if pool.Len() != 2 {
		t.Errorf("Len = %d, want 2", pool.Len())
	}
	if pool.Image(a).Width != 4 {
		t.Error("second add with an existing name replaced the image")
	}
	if pool.Image(5) != nil || pool.Image(-1) != nil {
		t.Error("out of range ids should return nil")
	}
}

func TestTexturePool_ValidateTexture(t *testing.T) {
	pool := NewTexturePool()
	id := pool.AddImage("one", NewImage3(1, 1))

	if err := pool.ValidateTexture(NewConstTexture(core.NewVec3(1, 1, 1))); err != nil {
		t.Errorf("const texture: %v", err)
	}
	if err := pool.ValidateTexture(NewImageTexture(id)); err != nil {
		t.Errorf("valid image texture: %v", err)
	}
	if err := pool.ValidateTexture(NewImageTexture(id + 1)); err == nil {
		t.Error("expected an error for a missing image")
	}
}

func TestSkyImage_SunAndHorizon(t *testing.T) {
	sun := core.NewVec3(0, 1, 0)
	img := NewSkyImage(32, 16, core.NewVec3(0.2, 0.4, 1), core.NewVec3(1, 1, 1), core.NewVec3(0.1, 0.1, 0.1), sun, 0.3, core.NewVec3(50, 50, 50))

	if got := img.At(0, 0); !vecNear(got, core.NewVec3(50, 50, 50), 1e-12) {
		t.Errorf("zenith row = %v, want the sun", got)
	}
	if got := img.At(0, 15); !vecNear(got, core.NewVec3(0.1, 0.1, 0.1), 1e-12) {
		t.Errorf("nadir row = %v, want the ground", got)
	}
	mid := img.At(5, 6)
	if math.IsNaN(mid.X) || mid.X < 0.2 || mid.X > 1 {
		t.Errorf("sky row = %v, want between zenith and horizon", mid)
	}
}
