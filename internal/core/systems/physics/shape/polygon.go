package shape

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

var _ Shape = Polygon{}

// Polygon is a convex polygon. Vertices are relative to the center and wound
// counter-clockwise.
type Polygon struct {
	center   geom.Vec2
	vertices []geom.Vec2
}

// NewPolygon validates and copies vertices. It rejects fewer than three
// vertices, non-finite coordinates, clockwise or degenerate winding and
// reflex corners.
func NewPolygon(center geom.Vec2, vertices []geom.Vec2) (Polygon, error) {
	if len(vertices) < 3 {
		return Polygon{}, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", physics.ErrInvalidShape, len(vertices))
	}
	for i, v := range vertices {
		if !finite(v) {
			return Polygon{}, fmt.Errorf("%w: vertex %d is not finite", physics.ErrInvalidShape, i)
		}
	}
	if signedArea(vertices) <= 0 {
		return Polygon{}, fmt.Errorf("%w: polygon is not wound counter-clockwise", physics.ErrInvalidShape)
	}
	n := len(vertices)
	for i := range vertices {
		a, b, c := vertices[i], vertices[(i+1)%n], vertices[(i+2)%n]
		if geom.Cross(b.Sub(a), c.Sub(b)) < -physics.Epsilon {
			return Polygon{}, fmt.Errorf("%w: polygon is not convex at vertex %d", physics.ErrInvalidShape, (i+1)%n)
		}
	}
	vs := make([]geom.Vec2, n)
	copy(vs, vertices)
	return Polygon{center: center, vertices: vs}, nil
}

// NewRectangle builds an axis-aligned rectangle centered on center.
func NewRectangle(center geom.Vec2, width, height float64) (Polygon, error) {
	if width <= 0 || height <= 0 {
		return Polygon{}, fmt.Errorf("%w: rectangle %gx%g", physics.ErrInvalidShape, width, height)
	}
	hw, hh := width*0.5, height*0.5
	return NewPolygon(center, []geom.Vec2{
		geom.V(-hw, -hh),
		geom.V(hw, -hh),
		geom.V(hw, hh),
		geom.V(-hw, hh),
	})
}

func (p Polygon) Kind() Kind        { return KindPolygon }
func (p Polygon) Center() geom.Vec2 { return p.center }
func (p Polygon) sealed()           {}

// Vertices returns a copy of the local vertices relative to the center.
func (p Polygon) Vertices() []geom.Vec2 {
	vs := make([]geom.Vec2, len(p.vertices))
	copy(vs, p.vertices)
	return vs
}

func (p Polygon) world(t geom.Transform) []geom.Vec2 {
	out := make([]geom.Vec2, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = t.Apply(p.center.Add(v))
	}
	return out
}

func (p Polygon) PointIn(t geom.Transform, point geom.Vec2) bool {
	local := t.InverseApply(point).Sub(p.center)
	n := len(p.vertices)
	for i, v := range p.vertices {
		edge := p.vertices[(i+1)%n].Sub(v)
		if geom.Cross(edge, local.Sub(v)) < 0 {
			return false
		}
	}
	return true
}

func (p Polygon) BoundingBox(t geom.Transform) geom.Box {
	ws := p.world(t)
	lo, hi := ws[0], ws[0]
	for _, w := range ws[1:] {
		lo, hi = geom.MinVec(lo, w), geom.MaxVec(hi, w)
	}
	return geom.BoxFromPoints(lo, hi)
}

func (p Polygon) Transform(t geom.Transform) Shape {
	vs := make([]geom.Vec2, len(p.vertices))
	for i, v := range p.vertices {
		vs[i] = t.ApplyVector(v)
	}
	return Polygon{center: t.Apply(p.center), vertices: vs}
}

func (p Polygon) Support(t geom.Transform, d geom.Vec2) geom.Vec2 {
	i := p.farthest(t.LocalDirection(d))
	return t.Apply(p.center.Add(p.vertices[i]))
}

// farthest returns the index of the local vertex with the largest
// projection on d. Ties keep the lowest index.
func (p Polygon) farthest(d geom.Vec2) int {
	best, bestDot := 0, math.Inf(-1)
	for i, v := range p.vertices {
		if dot := v.Dot(d); dot > bestDot {
			best, bestDot = i, dot
		}
	}
	return best
}

func (p Polygon) Feature(t geom.Transform, d geom.Vec2) Feature {
	ws := p.world(t)
	n := len(ws)
	i := p.farthest(t.LocalDirection(d))
	prev, next := ws[(i+n-1)%n], ws[(i+1)%n]
	maxV := ws[i]

	dir := geom.Normalize(d)
	left := geom.Normalize(maxV.Sub(prev))
	right := geom.Normalize(next.Sub(maxV))

	// The edge whose direction is closer to perpendicular to d faces it.
	if math.Abs(right.Dot(dir)) <= math.Abs(left.Dot(dir)) {
		return Feature{Kind: FeatureEdge, Max: maxV, A: maxV, B: next}
	}
	return Feature{Kind: FeatureEdge, Max: maxV, A: prev, B: maxV}
}

func (p Polygon) Pick(t geom.Transform) geom.Vec2 {
	return t.Apply(p.center.Add(p.vertices[0]))
}

func signedArea(vs []geom.Vec2) float64 {
	area := 0.0
	for i, v := range vs {
		area += geom.Cross(v, vs[(i+1)%len(vs)])
	}
	return area * 0.5
}

func finite(v geom.Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}
