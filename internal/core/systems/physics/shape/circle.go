package shape

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

var _ Shape = Circle{}

type Circle struct {
	center geom.Vec2
	radius float64
}

// NewCircle rejects negative or non-finite radii.
func NewCircle(center geom.Vec2, radius float64) (Circle, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Circle{}, fmt.Errorf("%w: circle radius %g", physics.ErrInvalidShape, radius)
	}
	return Circle{center: center, radius: radius}, nil
}

func (c Circle) Kind() Kind        { return KindCircle }
func (c Circle) Center() geom.Vec2 { return c.center }
func (c Circle) Radius() float64   { return c.radius }
func (c Circle) sealed()           {}

func (c Circle) worldRadius(t geom.Transform) float64 {
	return c.radius * math.Abs(t.ScaleFactor())
}

func (c Circle) PointIn(t geom.Transform, p geom.Vec2) bool {
	r := c.worldRadius(t)
	return t.Apply(c.center).Sub(p).LenSqr() <= r*r
}

func (c Circle) BoundingBox(t geom.Transform) geom.Box {
	center := t.Apply(c.center)
	r := c.worldRadius(t)
	return geom.Box{Position: geom.V(center[0]-r, center[1]-r), Width: 2 * r, Height: 2 * r}
}

func (c Circle) Transform(t geom.Transform) Shape {
	return Circle{center: t.Apply(c.center), radius: c.worldRadius(t)}
}

func (c Circle) Support(t geom.Transform, d geom.Vec2) geom.Vec2 {
	center := t.Apply(c.center)
	n := geom.Normalize(d)
	return center.Add(n.Mul(c.worldRadius(t)))
}

func (c Circle) Feature(t geom.Transform, d geom.Vec2) Feature {
	return PointFeature(c.Support(t, d))
}

func (c Circle) Pick(t geom.Transform) geom.Vec2 {
	return t.Apply(c.center.Add(geom.V(c.radius, 0)))
}
