package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// NewCheckerboardImage creates a checkerboard pattern image
func NewCheckerboardImage(width, height, checkSize int, color1, color2 core.Vec3) *Image3 {
	img := NewImage3(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				img.Set(x, y, color1)
			} else {
				img.Set(x, y, color2)
			}
		}
	}
	return img
}

// NewGradientImage creates a vertical gradient from top (row 0) to bottom
func NewGradientImage(width, height int, top, bottom core.Vec3) *Image3 {
	img := NewImage3(width, height)
	for y := 0; y < height; y++ {
		t := 0.0
		if height > 1 {
			t = float64(y) / float64(height-1)
		}
		c := lerp(top, bottom, t)
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// NewSkyImage creates a latitude-longitude sky: a zenith-to-horizon gradient,
// a dim ground below the horizon and a bright sun disc of the given angular
// radius (radians) at sunDir. Rows run from the zenith (v=0) to the nadir (v=1)
// and columns follow u = atan2(x, -z)/2pi.
func NewSkyImage(width, height int, zenith, horizon, ground core.Vec3, sunDir core.Vec3, sunRadius float64, sunRadiance core.Vec3) *Image3 {
	img := NewImage3(width, height)
	sunDir = sunDir.Normalize()
	cosSun := math.Cos(sunRadius)
	for y := 0; y < height; y++ {
		theta := (float64(y) + 0.5) / float64(height) * math.Pi
		cosTheta := math.Cos(theta)
		sinTheta := math.Sin(theta)
		for x := 0; x < width; x++ {
			phi := (float64(x) + 0.5) / float64(width) * 2 * math.Pi
			dir := core.NewVec3(math.Sin(phi)*sinTheta, cosTheta, -math.Cos(phi)*sinTheta)

			var c core.Vec3
			if cosTheta >= 0 {
				c = lerp(horizon, zenith, math.Sqrt(cosTheta))
			} else {
				c = ground
			}
			if dir.Dot(sunDir) >= cosSun {
				c = sunRadiance
			}
			img.Set(x, y, c)
		}
	}
	return img
}
