package narrow

import (
	"fmt"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

// Simplex holds up to three Minkowski-difference points. The most recently
// added point is always last.
type Simplex struct {
	Points [3]geom.Vec2
	Count  int
}

func (s *Simplex) push(p geom.Vec2) {
	if s.Count >= len(s.Points) {
		panic(physics.NewError("gjk", fmt.Errorf("%w: pushing onto %d points", physics.ErrSimplexOverflow, s.Count)))
	}
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) last() geom.Vec2 { return s.Points[s.Count-1] }

// Slice copies the live points.
func (s *Simplex) Slice() []geom.Vec2 {
	out := make([]geom.Vec2, s.Count)
	copy(out, s.Points[:s.Count])
	return out
}

// MinkowskiSupport is the support point of A - B along d.
func MinkowskiSupport(a, b *collider.Collider, d geom.Vec2) geom.Vec2 {
	return a.Support(d).Sub(b.Support(d.Mul(-1)))
}

// GJK reports whether a and b intersect. On intersection the returned
// simplex is a triangle enclosing the origin, ready to seed EPA. A nil error
// with false means the shapes are separated; ErrNoConvergence means the
// iteration cap ran out.
func GJK(a, b *collider.Collider, maxIterations int) (Simplex, bool, error) {
	var s Simplex

	d := a.Pick().Sub(b.Pick())
	if geom.IsZero(d, physics.Epsilon) {
		d = geom.V(1, 0)
	}

	for i := 0; i < maxIterations; i++ {
		v := MinkowskiSupport(a, b, d)
		if d.Dot(v) <= 0 {
			return Simplex{}, false, nil
		}
		s.push(v)

		var enclosed bool
		d, enclosed = refine(&s)
		if enclosed {
			return s, true, nil
		}
		if geom.IsZero(d, physics.Epsilon) {
			// The origin sits on the current simplex; it touches the
			// boundary of the difference at best.
			return Simplex{}, false, nil
		}
	}

	return Simplex{}, false, fmt.Errorf("%w: gjk after %d iterations", physics.ErrNoConvergence, maxIterations)
}

// refine shrinks the simplex to the feature closest to the origin and
// returns the next search direction.
func refine(s *Simplex) (geom.Vec2, bool) {
	switch s.Count {
	case 1:
		return s.Points[0].Mul(-1), false
	case 2:
		return lineDirection(s.Points[1], s.Points[0]), false
	case 3:
		return triangle(s)
	default:
		panic(physics.NewError("gjk", fmt.Errorf("%w: %d points", physics.ErrSimplexOverflow, s.Count)))
	}
}

// lineDirection returns the normal of segment ab that faces the origin. a is
// the newest point.
func lineDirection(a, b geom.Vec2) geom.Vec2 {
	ab := b.Sub(a)
	ao := a.Mul(-1)
	d := geom.TripleProduct(ab, ao, ab)
	if geom.IsZero(d, physics.Epsilon) {
		// Origin on the line through ab: either normal will do.
		return geom.Perp(ab)
	}
	return d
}

func triangle(s *Simplex) (geom.Vec2, bool) {
	a, b, c := s.Points[2], s.Points[1], s.Points[0]
	ao := a.Mul(-1)
	ab := b.Sub(a)
	ac := c.Sub(a)

	abPerp := geom.TripleProduct(ac, ab, ab)
	if abPerp.Dot(ao) > 0 {
		// Outside ab: drop c.
		s.Points[0], s.Points[1] = b, a
		s.Count = 2
		return abPerp, false
	}

	acPerp := geom.TripleProduct(ab, ac, ac)
	if acPerp.Dot(ao) > 0 {
		// Outside ac: drop b.
		s.Points[0], s.Points[1] = c, a
		s.Count = 2
		return acPerp, false
	}

	if geom.IsZero(abPerp, physics.Epsilon) && geom.IsZero(acPerp, physics.Epsilon) {
		// Collinear triangle, keep searching off the line.
		s.Points[0], s.Points[1] = b, a
		s.Count = 2
		return lineDirection(a, b), false
	}

	return geom.Vec2{}, true
}
