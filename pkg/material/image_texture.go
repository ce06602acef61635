package material

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Image3 is a linear RGB float image stored row-major, row 0 first
type Image3 struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Pixels[y*Width + x]
}

// NewImage3 allocates a black image
func NewImage3(width, height int) *Image3 {
	return &Image3{Width: width, Height: height, Pixels: make([]core.Vec3, width*height)}
}

// At returns the pixel at (x, y)
func (img *Image3) At(x, y int) core.Vec3 {
	return img.Pixels[y*img.Width+x]
}

// Set writes the pixel at (x, y)
func (img *Image3) Set(x, y int, c core.Vec3) {
	img.Pixels[y*img.Width+x] = c
}

// Bilinear samples the image at continuous pixel coordinates with wraparound
// addressing. Pixel (i, j) sits at integer coordinates (i, j).
func (img *Image3) Bilinear(x, y float64) core.Vec3 {
	x0f := math.Floor(x)
	y0f := math.Floor(y)
	fx := x - x0f
	fy := y - y0f

	x0 := wrap(int(x0f), img.Width)
	y0 := wrap(int(y0f), img.Height)
	x1 := wrap(x0+1, img.Width)
	y1 := wrap(y0+1, img.Height)

	top := img.At(x0, y0).Multiply(1 - fx).Add(img.At(x1, y0).Multiply(fx))
	bottom := img.At(x0, y1).Multiply(1 - fx).Add(img.At(x1, y1).Multiply(fx))
	return top.Multiply(1 - fy).Add(bottom.Multiply(fy))
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// modulo returns x mod 1 in [0, 1)
func modulo(x float64) float64 {
	m := x - math.Floor(x)
	if m >= 1 {
		return 0
	}
	return m
}

// ImageTexture samples an image held in the pool, with a uv scale and offset
type ImageTexture struct {
	ImageID int
	UScale  float64
	VScale  float64
	UOffset float64
	VOffset float64
}

// NewImageTexture creates an image texture with identity uv transform
func NewImageTexture(imageID int) ImageTexture {
	return ImageTexture{ImageID: imageID, UScale: 1, VScale: 1}
}

// Eval samples the texture bilinearly with wraparound
func (t ImageTexture) Eval(uv core.Vec2, pool *TexturePool) core.Vec3 {
	img := pool.Image(t.ImageID)
	if img == nil || img.Width == 0 || img.Height == 0 {
		return core.Vec3{}
	}
	x := float64(img.Width) * modulo(t.UScale*uv.X+t.UOffset)
	y := float64(img.Height) * modulo(t.VScale*uv.Y+t.VOffset)
	return img.Bilinear(x, y)
}

func (ImageTexture) isTexture() {}

// TexturePool owns the images referenced by image textures and environment maps
type TexturePool struct {
	images []*Image3
	byName map[string]int
}

// NewTexturePool creates an empty pool
func NewTexturePool() *TexturePool {
	return &TexturePool{byName: make(map[string]int)}
}

// AddImage stores an image under name and returns its id.
// Adding a name twice returns the existing id.
func (p *TexturePool) AddImage(name string, img *Image3) int {
	if p.byName == nil {
		p.byName = make(map[string]int)
	}
	if id, ok := p.byName[name]; ok {
		return id
	}
	p.images = append(p.images, img)
	id := len(p.images) - 1
	p.byName[name] = id
	return id
}

// Image returns the image with the given id, or nil
func (p *TexturePool) Image(id int) *Image3 {
	if p == nil || id < 0 || id >= len(p.images) {
		return nil
	}
	return p.images[id]
}

// Len returns the number of images
func (p *TexturePool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.images)
}

// ValidateTexture checks that an image texture references an image in the pool
func (p *TexturePool) ValidateTexture(t Texture) error {
	if it, ok := t.(ImageTexture); ok {
		if img := p.Image(it.ImageID); img == nil || img.Width <= 0 || img.Height <= 0 {
			return fmt.Errorf("image texture references missing image %d", it.ImageID)
		}
	}
	return nil
}
