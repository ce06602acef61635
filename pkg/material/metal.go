package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// mirrorTolerance is how close a direction must be to the mirror direction
// to be treated as the delta lobe when evaluated outside of sampling
const mirrorTolerance = 1e-6

// Mirror is a perfect specular reflector with Schlick Fresnel, F0 = reflectance
type Mirror struct {
	Reflectance Texture
}

// NewMirror creates a mirror material
func NewMirror(reflectance Texture) *Mirror {
	return &Mirror{Reflectance: reflectance}
}

func (*Mirror) isMaterial() {}

// IsSpecular is true: the lobe is a delta
func (*Mirror) IsSpecular() bool { return true }

// Sample reflects dirIn about the shading normal
func (m *Mirror) Sample(dirIn core.Vec3, hit *geometry.Intersection, _ *TexturePool, _ core.Sampler) (SampleRecord, bool) {
	frame := reflectionFrame(dirIn, hit)
	dirOut := core.Reflect(dirIn, frame.N)
	if !sameSide(dirIn, dirOut, hit) {
		return SampleRecord{}, false
	}
	return SampleRecord{DirOut: dirOut, PDF: 1, Specular: true}, true
}

// Eval returns F/|cos| along the mirror direction so that f*cos/pdf = F
func (m *Mirror) Eval(dirIn core.Vec3, rec SampleRecord, hit *geometry.Intersection, pool *TexturePool) core.Vec3 {
	frame := reflectionFrame(dirIn, hit)
	if !rec.Specular {
		if core.Reflect(dirIn, frame.N).Subtract(rec.DirOut).Length() > mirrorTolerance {
			return core.Vec3{}
		}
	}
	cos := math.Abs(frame.N.Dot(rec.DirOut))
	if cos <= 0 {
		return core.Vec3{}
	}
	f := schlick(m.Reflectance.Eval(hit.UV, pool), cos)
	return f.Multiply(1 / cos)
}

// PDF is zero: a delta lobe has no density with respect to solid angle
func (m *Mirror) PDF(_, _ core.Vec3, _ *geometry.Intersection, _ *TexturePool) float64 {
	return 0
}
