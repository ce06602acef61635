package loaders

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// LoadImage decodes a PNG, JPEG, GIF, BMP or TIFF file into linear RGB.
// Stored values are treated as sRGB encoded.
func LoadImage(filename string) (*material.Image3, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	out := FromImage(img)
	logger.Debugf("loaded %s image %s: %dx%d", format, filename, out.Width, out.Height)
	return out, nil
}

// FromImage converts a decoded image to linear RGB, row 0 at the top
func FromImage(img image.Image) *material.Image3 {
	bounds := img.Bounds()
	out := material.NewImage3(bounds.Dx(), bounds.Dy())

	// 8-bit sources hit the table
	var lut [256]float64
	for i := range lut {
		lut[i] = srgbToLinear(float64(i) / 255)
	}
	decode := func(c uint32) float64 {
		// RGBA scales 8-bit channels by 257
		if c%257 == 0 {
			return lut[c/257]
		}
		return srgbToLinear(float64(c) / 65535)
	}

	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			out.Set(x, y, core.NewVec3(decode(r), decode(g), decode(b)))
		}
	}
	return out
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
