package geometry

import (
	"errors"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned for non-positive resolutions or field of view
var ErrInvalidCamera = errors.New("camera: resolution and vertical fov must be positive")

// CameraConfig describes a pinhole camera
type CameraConfig struct {
	LookFrom core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	VFov     float64 // vertical field of view in degrees
	Width    int
	Height   int
}

// Camera generates primary rays for a pinhole camera
type Camera struct {
	Config   CameraConfig
	origin   core.Vec3
	u, v, w  core.Vec3
	viewport core.Vec2
}

// NewCamera builds the camera basis from its configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.Width <= 0 || config.Height <= 0 || config.VFov <= 0 || config.VFov >= 180 {
		return nil, ErrInvalidCamera
	}
	basis := core.LookAt(config.LookFrom, config.LookAt, config.Up)

	theta := config.VFov * math.Pi / 180
	vh := 2 * math.Tan(theta/2)
	vw := vh * float64(config.Width) / float64(config.Height)

	return &Camera{
		Config:   config,
		origin:   config.LookFrom,
		u:        basis.Column(0),
		v:        basis.Column(1),
		w:        basis.Column(2),
		viewport: core.NewVec2(vw, vh),
	}, nil
}

// GetRay returns the ray through pixel (x, y) jittered by sample.
// y counts up from the bottom row of the image.
func (c *Camera) GetRay(x, y int, sample core.Vec2) core.Ray {
	sx := (float64(x)+sample.X)/float64(c.Config.Width) - 0.5
	sy := (float64(y)+sample.Y)/float64(c.Config.Height) - 0.5
	dir := c.u.Multiply(sx * c.viewport.X).
		Add(c.v.Multiply(sy * c.viewport.Y)).
		Subtract(c.w).
		Normalize()
	return core.NewRay(c.origin, dir)
}
