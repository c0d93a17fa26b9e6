package narrow

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/pkg/generic"
)

// polytopes recycles EPA vertex buffers across solves.
var polytopes = generic.NewSlicePool[geom.Vec2](16)

// Penetration is the minimum translation separating two shapes: moving B by
// Normal*Depth (or A by the opposite) leaves them touching.
type Penetration struct {
	Normal geom.Vec2
	Depth  float64
}

// Invert describes the same penetration seen from the other shape.
func (p Penetration) Invert() Penetration {
	return Penetration{Normal: p.Normal.Mul(-1), Depth: p.Depth}
}

// EPA expands the enclosing GJK triangle until the edge of the Minkowski
// difference closest to the origin is found.
func EPA(a, b *collider.Collider, simplex Simplex, tolerance float64, maxIterations int) (Penetration, error) {
	if simplex.Count != 3 {
		return Penetration{}, fmt.Errorf("%w: epa needs a triangle, got %d points", physics.ErrNoConvergence, simplex.Count)
	}

	polytope := append(polytopes.Get(), simplex.Points[:]...)
	defer func() { polytopes.Put(polytope) }()
	p0, p1, p2 := polytope[0], polytope[1], polytope[2]
	ccw := geom.Cross(p1.Sub(p0), p2.Sub(p1)) > 0

	for i := 0; i < maxIterations; i++ {
		index, normal, distance, ok := closestEdge(polytope, ccw)
		if !ok {
			return Penetration{}, fmt.Errorf("%w: epa polytope collapsed", physics.ErrNoConvergence)
		}

		support := MinkowskiSupport(a, b, normal)
		if support.Dot(normal)-distance < tolerance {
			return Penetration{Normal: normal, Depth: math.Max(distance, 0)}, nil
		}

		polytope = append(polytope, geom.Vec2{})
		copy(polytope[index+2:], polytope[index+1:])
		polytope[index+1] = support
	}

	return Penetration{}, fmt.Errorf("%w: epa after %d iterations", physics.ErrNoConvergence, maxIterations)
}

// closestEdge finds the edge (polytope[i], polytope[i+1]) nearest the origin
// and its outward unit normal. Zero-length edges are skipped.
func closestEdge(polytope []geom.Vec2, ccw bool) (int, geom.Vec2, float64, bool) {
	best, bestDistance := -1, math.Inf(1)
	var bestNormal geom.Vec2

	for i, p := range polytope {
		q := polytope[(i+1)%len(polytope)]
		e := q.Sub(p)
		if e.LenSqr() < physics.Epsilon*physics.Epsilon {
			continue
		}
		var n geom.Vec2
		if ccw {
			n = geom.Vec2{e[1], -e[0]}
		} else {
			n = geom.Vec2{-e[1], e[0]}
		}
		n = geom.Normalize(n)
		if d := n.Dot(p); d < bestDistance {
			best, bestDistance, bestNormal = i, d, n
		}
	}

	return best, bestNormal, bestDistance, best >= 0
}
