package lights

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Envmap is an infinitely distant light defined by a latitude-longitude image.
// In local space +y is up, u = atan2(x, -z)/2pi and v = acos(y)/pi.
type Envmap struct {
	ImageID      int
	ToWorld      core.Matrix4x4
	ToLocal      core.Matrix4x4
	Scale        float64
	Distribution *core.Distribution2D
}

// NewEnvmap builds the luminance distribution of the image, weighted by
// sin(theta) so that sampling follows solid angle rather than image area
func NewEnvmap(pool *material.TexturePool, imageID int, toWorld core.Matrix4x4, scale float64) (*Envmap, error) {
	img := pool.Image(imageID)
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("envmap: missing image %d", imageID)
	}

	f := make([]float64, img.Width*img.Height)
	for y := 0; y < img.Height; y++ {
		sinTheta := math.Sin(math.Pi * (float64(y) + 0.5) / float64(img.Height))
		for x := 0; x < img.Width; x++ {
			f[y*img.Width+x] = img.At(x, y).Luminance() * sinTheta
		}
	}

	return &Envmap{
		ImageID:      imageID,
		ToWorld:      toWorld,
		ToLocal:      toWorld.Inverse(),
		Scale:        scale,
		Distribution: core.NewDistribution2D(f, img.Width, img.Height),
	}, nil
}

func (*Envmap) isLight() {}

// IsDelta is false
func (*Envmap) IsDelta() bool { return false }

// directionToUV maps a local unit direction to image coordinates
func directionToUV(d core.Vec3) core.Vec2 {
	u := math.Atan2(d.X, -d.Z) / (2 * math.Pi)
	if u < 0 {
		u++
	}
	v := math.Acos(math.Max(-1, math.Min(1, d.Y))) / math.Pi
	return core.NewVec2(u, v)
}

// uvToDirection is the inverse of directionToUV
func uvToDirection(uv core.Vec2) core.Vec3 {
	phi := uv.X * 2 * math.Pi
	theta := uv.Y * math.Pi
	sinTheta := math.Sin(theta)
	return core.NewVec3(math.Sin(phi)*sinTheta, math.Cos(theta), -math.Cos(phi)*sinTheta)
}

// SampleOnLight draws a direction proportional to luminance
func (e *Envmap) SampleOnLight(_ *geometry.Primitives, _ *material.TexturePool, _ core.Vec3, u core.Vec2) LightPoint {
	uv := e.Distribution.Sample(u)
	dir := e.ToWorld.TransformVector(uvToDirection(uv)).Normalize()
	return LightPoint{Point: dir}
}

// PDF converts the image-space density to solid angle: pdf_uv / (2 pi^2 sin(theta))
func (e *Envmap) PDF(_ *geometry.Primitives, _ *material.TexturePool, lp LightPoint, _ core.Vec3) float64 {
	local := e.ToLocal.TransformVector(lp.Point).Normalize()
	uv := directionToUV(local)
	sinTheta := math.Sin(uv.Y * math.Pi)
	if sinTheta <= 0 {
		return 0
	}
	return e.Distribution.PDF(uv) / (2 * math.Pi * math.Pi * sinTheta)
}

// Emission looks up the radiance arriving from -viewDir
func (e *Envmap) Emission(_ *geometry.Primitives, pool *material.TexturePool, viewDir core.Vec3, _ LightPoint) core.Vec3 {
	return e.Radiance(pool, viewDir.Negate())
}

// Radiance returns the scaled image value seen along the world direction dir
func (e *Envmap) Radiance(pool *material.TexturePool, dir core.Vec3) core.Vec3 {
	img := pool.Image(e.ImageID)
	if img == nil {
		return core.Vec3{}
	}
	uv := directionToUV(e.ToLocal.TransformVector(dir).Normalize())
	return lookupLatLong(img, uv).Multiply(e.Scale)
}

// Power is pi R^2 times the mean scaled luminance of the image
func (e *Envmap) Power(_ *geometry.Primitives, pool *material.TexturePool, sceneRadius float64) float64 {
	img := pool.Image(e.ImageID)
	if img == nil || len(img.Pixels) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range img.Pixels {
		sum += p.Luminance()
	}
	return math.Pi * sceneRadius * sceneRadius * e.Scale * sum / float64(len(img.Pixels))
}

// lookupLatLong interpolates between pixel centers, wrapping in longitude and clamping at the poles
func lookupLatLong(img *material.Image3, uv core.Vec2) core.Vec3 {
	x := uv.X*float64(img.Width) - 0.5
	y := math.Max(0, math.Min(float64(img.Height-1), uv.Y*float64(img.Height)-0.5))

	x0f := math.Floor(x)
	fx := x - x0f
	y0 := int(math.Floor(y))
	fy := y - float64(y0)
	y1 := min(y0+1, img.Height-1)

	x0 := ((int(x0f) % img.Width) + img.Width) % img.Width
	x1 := (x0 + 1) % img.Width

	top := img.At(x0, y0).Multiply(1 - fx).Add(img.At(x1, y0).Multiply(fx))
	bottom := img.At(x0, y1).Multiply(1 - fx).Add(img.At(x1, y1).Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}
