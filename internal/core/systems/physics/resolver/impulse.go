package resolver

import (
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
)

// resolve turns this tick's pairs into pending corrections. They accumulate
// over all pairs and are applied once at the end.
func (w *World) resolve(pairs []*narrow.Pair) {
	for _, p := range pairs {
		for _, b := range [2]*Body{w.body(p.A()), w.body(p.B())} {
			b.contacts++
			b.force = geom.Vec2{}
		}
	}

	for _, p := range pairs {
		a, b := w.body(p.A()), w.body(p.B())
		if a.IsStatic() && b.IsStatic() {
			continue
		}
		separate(a, b, p)
		exchange(a, b, p)
	}

	for _, b := range w.order {
		if !b.IsStatic() {
			b.translate(b.shift)
			b.momentum = b.momentum.Add(b.impulse)
		}
		b.shift, b.impulse = geom.Vec2{}, geom.Vec2{}
		b.contacts = 0
	}
}

// share is the part of a positional correction a body takes, split over its
// contacts this tick. Two dynamic bodies halve it; against a static body the
// dynamic side takes all of it.
func share(self, other *Body) float64 {
	if self.IsStatic() {
		return 0
	}
	s := 0.5
	if other.IsStatic() {
		s = 1
	}
	return s / float64(self.contacts)
}

// separate queues the positional correction. Its magnitude is the depth
// scaled by the summed normal components, pushing A against the normal and
// B along it.
func separate(a, b *Body, p *narrow.Pair) {
	n := p.Normal()
	magnitude := p.Depth() * (math.Abs(n[0]) + math.Abs(n[1]))

	a.shift = a.shift.Sub(n.Mul(magnitude * share(a, b)))
	b.shift = b.shift.Add(n.Mul(magnitude * share(b, a)))
}

// exchange queues the momentum change: restitution along the normal from
// the lower bounciness, and Coulomb friction along the tangent from the
// combined roughness.
func exchange(a, b *Body, p *narrow.Pair) {
	n := p.Normal()
	inv := a.inverseMass() + b.inverseMass()
	relative := b.Velocity().Sub(a.Velocity())

	vn := relative.Dot(n)
	if vn >= 0 {
		return
	}

	e := math.Min(a.bounciness, b.bounciness)
	j := -(1 + e) * vn / inv

	t := geom.Perp(n)
	jt := -relative.Dot(t) / inv
	limit := math.Sqrt(a.roughness*b.roughness) * j
	jt = math.Max(-limit, math.Min(jt, limit))

	impulse := n.Mul(j).Add(t.Mul(jt))
	a.impulse = a.impulse.Sub(impulse.Mul(split(a)))
	b.impulse = b.impulse.Add(impulse.Mul(split(b)))
}

// split divides a momentum change over the body's contacts this tick.
func split(b *Body) float64 {
	if b.IsStatic() {
		return 0
	}
	return 1 / float64(b.contacts)
}
