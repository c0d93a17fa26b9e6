package geom

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Transform places a shape in the world: uniform scale, then rotation
// (radians, counter-clockwise), then translation. A zero Scale is treated as
// 1 so the zero Transform is the identity.
type Transform struct {
	Position Vec2
	Rotation float64
	Scale    float64
}

// Identity is the transform that leaves points unchanged.
var Identity = Transform{Scale: 1}

// NewTransform returns an unscaled transform.
func NewTransform(position Vec2, rotation float64) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: 1}
}

func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// Matrix returns the homogeneous affine matrix of t.
func (t Transform) Matrix() mgl64.Mat3 {
	s := t.scale()
	return mgl64.Translate2D(t.Position[0], t.Position[1]).
		Mul3(mgl64.HomogRotate2D(t.Rotation)).
		Mul3(mgl64.Scale2D(s, s))
}

// Apply maps a local point to world space.
func (t Transform) Apply(p Vec2) Vec2 {
	return t.Matrix().Mul3x1(p.Vec3(1)).Vec2()
}

// ApplyVector maps a local direction to world space, ignoring translation.
func (t Transform) ApplyVector(v Vec2) Vec2 {
	return mgl64.Rotate2D(t.Rotation).Mul2x1(v).Mul(t.scale())
}

// InverseApply maps a world point back into local space.
func (t Transform) InverseApply(p Vec2) Vec2 {
	local := mgl64.Rotate2D(-t.Rotation).Mul2x1(p.Sub(t.Position))
	return local.Mul(1 / t.scale())
}

// LocalDirection maps a world search direction into local space. It applies
// the transpose of the linear part, which is what support mapping needs.
func (t Transform) LocalDirection(d Vec2) Vec2 {
	return mgl64.Rotate2D(-t.Rotation).Mul2x1(d).Mul(t.scale())
}

// ScaleFactor returns the effective uniform scale.
func (t Transform) ScaleFactor() float64 {
	return t.scale()
}

// Translate returns t moved by d.
func (t Transform) Translate(d Vec2) Transform {
	t.Position = t.Position.Add(d)
	return t
}
