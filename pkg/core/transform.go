package core

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Matrix4x4 is an affine transform in homogeneous coordinates
type Matrix4x4 struct {
	m mgl64.Mat4
}

// Identity returns the identity transform
func Identity() Matrix4x4 {
	return Matrix4x4{m: mgl64.Ident4()}
}

// Translate returns a translation by t
func Translate(t Vec3) Matrix4x4 {
	return Matrix4x4{m: mgl64.Translate3D(t.X, t.Y, t.Z)}
}

// Scale returns a non-uniform scale
func Scale(s Vec3) Matrix4x4 {
	return Matrix4x4{m: mgl64.Scale3D(s.X, s.Y, s.Z)}
}

// Rotate returns a rotation of angle radians around axis
func Rotate(angle float64, axis Vec3) Matrix4x4 {
	return Matrix4x4{m: mgl64.HomogRotate3D(angle, toMgl(axis.Normalize()))}
}

// LookAt returns the camera-to-world transform for a viewer at eye
func LookAt(eye, center, up Vec3) Matrix4x4 {
	view := mgl64.LookAtV(toMgl(eye), toMgl(center), toMgl(up))
	return Matrix4x4{m: view.Inv()}
}

// Mul composes two transforms; the result applies other first
func (t Matrix4x4) Mul(other Matrix4x4) Matrix4x4 {
	return Matrix4x4{m: t.m.Mul4(other.m)}
}

// Inverse returns the inverse transform
func (t Matrix4x4) Inverse() Matrix4x4 {
	return Matrix4x4{m: t.m.Inv()}
}

// TransformPoint applies the transform to a position
func (t Matrix4x4) TransformPoint(p Vec3) Vec3 {
	v := t.m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if v[3] != 0 && v[3] != 1 {
		return NewVec3(v[0]/v[3], v[1]/v[3], v[2]/v[3])
	}
	return NewVec3(v[0], v[1], v[2])
}

// TransformVector applies the transform to a direction, ignoring translation
func (t Matrix4x4) TransformVector(d Vec3) Vec3 {
	v := t.m.Mul4x1(mgl64.Vec4{d.X, d.Y, d.Z, 0})
	return NewVec3(v[0], v[1], v[2])
}

// Column returns column i of the upper 3x3 block
func (t Matrix4x4) Column(i int) Vec3 {
	c := t.m.Col(i)
	return NewVec3(c[0], c[1], c[2])
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
