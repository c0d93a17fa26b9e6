// Package collider binds a shape to the object that places it in the world.
package collider

import (
	"sync/atomic"

	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

// Object is the owner of a collider as seen by the collision pipeline. The
// pipeline only reads it.
type Object interface {
	Transform() geom.Transform
	// Moved reports whether the transform changed since the owner last
	// cleared its flag.
	Moved() bool
	// Enabled is false once the owner is gone; its collider is dropped from
	// the tree on the next update.
	Enabled() bool
}

var lastID atomic.Uint64

// Collider is a shape attached to an Object. IDs are unique per process and
// increase with creation order, which gives pair resolution its tie-break.
type Collider struct {
	id               uint64
	shape            shape.Shape
	owner            Object
	static           bool
	collisionEnabled bool
}

func New(s shape.Shape, owner Object, static bool) *Collider {
	return &Collider{
		id:               lastID.Add(1),
		shape:            s,
		owner:            owner,
		static:           static,
		collisionEnabled: true,
	}
}

func (c *Collider) ID() uint64             { return c.id }
func (c *Collider) Shape() shape.Shape     { return c.shape }
func (c *Collider) Owner() Object          { return c.owner }
func (c *Collider) IsStatic() bool         { return c.static }
func (c *Collider) CollisionEnabled() bool { return c.collisionEnabled }

// SetCollisionEnabled toggles narrow-phase participation without leaving
// the tree, e.g. while a projectile is held.
func (c *Collider) SetCollisionEnabled(enabled bool) {
	c.collisionEnabled = enabled
}

func (c *Collider) Transform() geom.Transform {
	return c.owner.Transform()
}

// BoundingBox is the tight world box of the shape, never fattened.
func (c *Collider) BoundingBox() geom.Box {
	return c.shape.BoundingBox(c.owner.Transform())
}

func (c *Collider) Support(d geom.Vec2) geom.Vec2 {
	return c.shape.Support(c.owner.Transform(), d)
}

func (c *Collider) Feature(d geom.Vec2) shape.Feature {
	return c.shape.Feature(c.owner.Transform(), d)
}

func (c *Collider) Pick() geom.Vec2 {
	return c.shape.Pick(c.owner.Transform())
}

// ToLocal maps a world point into the collider's local frame.
func (c *Collider) ToLocal(p geom.Vec2) geom.Vec2 {
	return c.owner.Transform().InverseApply(p)
}

// Less orders colliders by ID.
func Less(a, b *Collider) bool {
	return a.id < b.id
}
