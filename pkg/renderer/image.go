package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Image holds linear RGB radiance, row-major with row 0 at the top
type Image struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pixels: make([]core.Vec3, width*height)}
}

// At returns the pixel in column x of row y
func (img *Image) At(x, y int) core.Vec3 {
	return img.Pixels[y*img.Width+x]
}

// Set writes the pixel in column x of row y
func (img *Image) Set(x, y int, c core.Vec3) {
	img.Pixels[y*img.Width+x] = c
}

// ToRGBA scales by exposure, gamma-corrects with gamma 2.2 and quantizes to 8 bits
func (img *Image) ToRGBA(exposure float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y).Multiply(exposure).Clamp(0, 1).GammaCorrect(2.2)
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(c.X*255 + 0.5),
				G: uint8(c.Y*255 + 0.5),
				B: uint8(c.Z*255 + 0.5),
				A: 255,
			})
		}
	}
	return out
}

// AverageLuminance returns the mean linear luminance of all pixels
func (img *Image) AverageLuminance() float64 {
	if len(img.Pixels) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range img.Pixels {
		total += p.Luminance()
	}
	return total / float64(len(img.Pixels))
}
