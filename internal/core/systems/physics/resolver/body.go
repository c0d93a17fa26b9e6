package resolver

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

var _ collider.Object = (*Body)(nil)

// BodyOptions describes a rigid body at creation.
type BodyOptions struct {
	Name     string
	Position geom.Vec2
	Rotation float64
	// Mass is required for dynamic bodies and ignored for static ones.
	Mass   float64
	Static bool
	// Bounciness is the restitution in [0, 1].
	Bounciness float64
	// Roughness is the friction coefficient in [0, 1].
	Roughness float64
	Momentum  geom.Vec2
}

// Body is a rigid body without rotational dynamics. A body is owned by at
// most one World, which mutates it only during Step.
type Body struct {
	name     string
	collider *collider.Collider

	transform  geom.Transform
	momentum   geom.Vec2
	mass       float64
	bounciness float64
	roughness  float64

	force    geom.Vec2
	contacts int
	shift    geom.Vec2
	impulse  geom.Vec2

	moved     bool
	disabled  bool
	onCollide func(CollisionEvent)
}

func NewBody(s shape.Shape, opts BodyOptions) (*Body, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: body %q has no shape", physics.ErrInvalidShape, opts.Name)
	}
	if !opts.Static && !(opts.Mass > 0 && !math.IsInf(opts.Mass, 0)) {
		return nil, fmt.Errorf("%w: dynamic body %q needs a positive mass, got %g", physics.ErrInvalidBody, opts.Name, opts.Mass)
	}
	if !unit(opts.Bounciness) || !unit(opts.Roughness) {
		return nil, fmt.Errorf("%w: body %q coefficients must lie in [0, 1]", physics.ErrInvalidBody, opts.Name)
	}

	b := &Body{
		name:       opts.Name,
		transform:  geom.NewTransform(opts.Position, opts.Rotation),
		mass:       opts.Mass,
		bounciness: opts.Bounciness,
		roughness:  opts.Roughness,
		moved:      true,
	}
	if opts.Static {
		b.mass = 0
	} else {
		b.momentum = opts.Momentum
	}
	b.collider = collider.New(s, b, opts.Static)
	return b, nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func (b *Body) Name() string                      { return b.name }
func (b *Body) ID() uint64                        { return b.collider.ID() }
func (b *Body) Collider() *collider.Collider      { return b.collider }
func (b *Body) Transform() geom.Transform         { return b.transform }
func (b *Body) Position() geom.Vec2               { return b.transform.Position }
func (b *Body) Rotation() float64                 { return b.transform.Rotation }
func (b *Body) Momentum() geom.Vec2               { return b.momentum }
func (b *Body) Mass() float64                     { return b.mass }
func (b *Body) IsStatic() bool                    { return b.collider.IsStatic() }
func (b *Body) Bounciness() float64               { return b.bounciness }
func (b *Body) Roughness() float64                { return b.roughness }
func (b *Body) Moved() bool                       { return b.moved }
func (b *Body) Enabled() bool                     { return !b.disabled }
func (b *Body) OnCollide(fn func(CollisionEvent)) { b.onCollide = fn }

// Velocity is momentum over mass; static bodies never move.
func (b *Body) Velocity() geom.Vec2 {
	if b.IsStatic() {
		return geom.Vec2{}
	}
	return b.momentum.Mul(1 / b.mass)
}

func (b *Body) inverseMass() float64 {
	if b.IsStatic() {
		return 0
	}
	return 1 / b.mass
}

func (b *Body) SetMomentum(p geom.Vec2) {
	if !b.IsStatic() {
		b.momentum = p
	}
}

// ApplyForce adds a force that acts on every step until the body next
// touches something.
func (b *Body) ApplyForce(f geom.Vec2) {
	b.force = b.force.Add(f)
}

// SetTransform teleports the body.
func (b *Body) SetTransform(t geom.Transform) {
	b.transform = t
	b.moved = true
}

// Disable removes the body from its world on the next step.
func (b *Body) Disable() {
	b.disabled = true
}

func (b *Body) translate(d geom.Vec2) {
	if d[0] == 0 && d[1] == 0 {
		return
	}
	b.transform.Position = b.transform.Position.Add(d)
	b.moved = true
}

func (b *Body) String() string {
	if b.name != "" {
		return b.name
	}
	return fmt.Sprintf("body#%d", b.ID())
}
