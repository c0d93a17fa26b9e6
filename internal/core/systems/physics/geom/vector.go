// Package geom holds the value types every stage of the collision pipeline
// shares: vectors, axis-aligned boxes and affine transforms.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a 2D vector. It is an array type, so assignment always copies.
type Vec2 = mgl64.Vec2

// V builds a Vec2.
func V(x, y float64) Vec2 { return Vec2{x, y} }

// Cross returns the z component of the 3D cross product of a and b.
func Cross(a, b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// TripleProduct computes (a × b) × c in the plane. TripleProduct(ab, ao, ab)
// is the normal of ab pointing towards o.
func TripleProduct(a, b, c Vec2) Vec2 {
	k := Cross(a, b)
	return Vec2{-k * c[1], k * c[0]}
}

// Perp returns v rotated by +90 degrees.
func Perp(v Vec2) Vec2 {
	return Vec2{-v[1], v[0]}
}

// Normalize returns v with unit length, or the zero vector when v is
// shorter than eps.
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v[0] / l, v[1] / l}
}

// IsZero reports whether both components are within eps of zero.
func IsZero(v Vec2, eps float64) bool {
	return math.Abs(v[0]) <= eps && math.Abs(v[1]) <= eps
}

// MinVec returns the component-wise minimum.
func MinVec(a, b Vec2) Vec2 {
	return Vec2{math.Min(a[0], b[0]), math.Min(a[1], b[1])}
}

// MaxVec returns the component-wise maximum.
func MaxVec(a, b Vec2) Vec2 {
	return Vec2{math.Max(a[0], b[0]), math.Max(a[1], b[1])}
}
