package narrow

import (
	"fmt"

	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

// Contact is one point of a manifold.
type Contact struct {
	// Point is the world-space contact position.
	Point geom.Vec2
	// LocalA and LocalB are Point in each collider's local frame.
	LocalA geom.Vec2
	LocalB geom.Vec2
	// Depth is how far the point lies inside the other shape.
	Depth float64
}

// Pair is a confirmed intersection between two colliders. It is immutable:
// accessors hand out copies.
type Pair struct {
	a, b     *collider.Collider
	contacts []Contact
	normal   geom.Vec2
	depth    float64
}

func newPair(a, b *collider.Collider, p Penetration, contacts []Contact) *Pair {
	return &Pair{a: a, b: b, contacts: contacts, normal: p.Normal, depth: p.Depth}
}

func (p *Pair) A() *collider.Collider { return p.a }
func (p *Pair) B() *collider.Collider { return p.b }

// Normal is the unit collision normal pointing from A to B.
func (p *Pair) Normal() geom.Vec2 { return p.normal }

// Depth is the penetration depth along Normal, never negative.
func (p *Pair) Depth() float64 { return p.depth }

func (p *Pair) Contacts() []Contact {
	out := make([]Contact, len(p.contacts))
	copy(out, p.contacts)
	return out
}

func (p *Pair) ContactCount() int { return len(p.contacts) }

// Key identifies the unordered pair.
func (p *Pair) Key() PairKey { return KeyOf(p.a, p.b) }

func (p *Pair) String() string {
	return fmt.Sprintf("Pair{%d-%d n=(%.4f, %.4f) depth=%.4f contacts=%d}",
		p.a.ID(), p.b.ID(), p.normal[0], p.normal[1], p.depth, len(p.contacts))
}

// PairKey orders the two collider IDs so (a, b) and (b, a) match.
type PairKey struct {
	Low, High uint64
}

func KeyOf(a, b *collider.Collider) PairKey {
	if a.ID() <= b.ID() {
		return PairKey{Low: a.ID(), High: b.ID()}
	}
	return PairKey{Low: b.ID(), High: a.ID()}
}

// Less orders keys by low ID, then high ID.
func (k PairKey) Less(o PairKey) bool {
	if k.Low != o.Low {
		return k.Low < o.Low
	}
	return k.High < o.High
}
