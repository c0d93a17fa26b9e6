package narrow

import (
	"math"

	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

// Manifold derives up to two contact points from a penetration. Curved
// shapes contribute their single support point; two edges are clipped
// against each other. Degenerate input produces fewer points and a debug
// log entry, never an error.
func Manifold(a, b *collider.Collider, p Penetration, logger log.Log) []Contact {
	n := p.Normal
	fa := a.Feature(n)
	fb := b.Feature(n.Mul(-1))

	var (
		points []geom.Vec2
		depths []float64
	)

	switch {
	case fa.IsPoint() && fb.IsPoint():
		points = []geom.Vec2{fa.Max, fb.Max}
		depths = []float64{p.Depth, p.Depth}
	case fa.IsPoint():
		points = []geom.Vec2{fa.Max}
		depths = []float64{p.Depth}
	case fb.IsPoint():
		points = []geom.Vec2{fb.Max}
		depths = []float64{p.Depth}
	default:
		points, depths = clipEdges(fa, fb, n)
		if len(points) < 2 {
			logger.Debug("degraded contact manifold",
				log.Uint64("a", a.ID()),
				log.Uint64("b", b.ID()),
				log.Int("points", len(points)),
				log.Float64("depth", p.Depth),
			)
		}
	}

	contacts := make([]Contact, len(points))
	for i, pt := range points {
		contacts[i] = Contact{
			Point:  pt,
			LocalA: a.ToLocal(pt),
			LocalB: b.ToLocal(pt),
			Depth:  depths[i],
		}
	}
	return contacts
}

// clipEdges clips the incident edge against the reference edge's side
// planes and keeps the points lying inside the reference face. The
// reference edge is the one closer to perpendicular to the normal.
func clipEdges(fa, fb shape.Feature, n geom.Vec2) ([]geom.Vec2, []float64) {
	ref, inc := fa, fb
	refNormal := n
	if math.Abs(geom.Normalize(fa.Edge()).Dot(n)) > math.Abs(geom.Normalize(fb.Edge()).Dot(n)) {
		ref, inc = fb, fa
		refNormal = n.Mul(-1)
	}

	refDir := geom.Normalize(ref.Edge())
	if refDir == (geom.Vec2{}) {
		return nil, nil
	}

	clipped := clip(inc.A, inc.B, refDir, refDir.Dot(ref.A))
	if len(clipped) == 2 {
		clipped = clip(clipped[0], clipped[1], refDir.Mul(-1), -refDir.Dot(ref.B))
	}

	face := refNormal.Dot(ref.Max)
	points := make([]geom.Vec2, 0, 2)
	depths := make([]float64, 0, 2)
	for _, pt := range clipped {
		depth := face - refNormal.Dot(pt)
		if depth < 0 {
			continue
		}
		points = append(points, pt)
		depths = append(depths, depth)
	}
	return points, depths
}

// clip keeps the part of segment v1-v2 where dir·p >= offset.
func clip(v1, v2, dir geom.Vec2, offset float64) []geom.Vec2 {
	d1 := dir.Dot(v1) - offset
	d2 := dir.Dot(v2) - offset

	out := make([]geom.Vec2, 0, 2)
	if d1 >= 0 {
		out = append(out, v1)
	}
	if d2 >= 0 {
		out = append(out, v2)
	}
	if d1*d2 < 0 {
		u := d1 / (d1 - d2)
		out = append(out, v1.Add(v2.Sub(v1).Mul(u)))
	}
	return out
}
