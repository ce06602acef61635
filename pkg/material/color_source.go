package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Texture provides spatially-varying colors for materials.
// The set is closed: ConstTexture and ImageTexture.
type Texture interface {
	// Eval returns the color at uv; image data is resolved through pool
	Eval(uv core.Vec2, pool *TexturePool) core.Vec3
	isTexture()
}

// ConstTexture provides a uniform color
type ConstTexture struct {
	Value core.Vec3
}

// NewConstTexture creates a new constant texture
func NewConstTexture(value core.Vec3) ConstTexture {
	return ConstTexture{Value: value}
}

// Eval returns the constant color regardless of uv
func (c ConstTexture) Eval(_ core.Vec2, _ *TexturePool) core.Vec3 {
	return c.Value
}

func (ConstTexture) isTexture() {}
