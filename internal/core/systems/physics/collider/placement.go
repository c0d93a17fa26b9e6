package collider

import "github.com/zeusync/physics2d/internal/core/systems/physics/geom"

var _ Object = (*Placement)(nil)

// Placement is a minimal Object for colliders without a rigid body, such as
// level geometry and triggers.
type Placement struct {
	transform geom.Transform
	moved     bool
	disabled  bool
}

func NewPlacement(t geom.Transform) *Placement {
	return &Placement{transform: t, moved: true}
}

func (p *Placement) Transform() geom.Transform { return p.transform }
func (p *Placement) Moved() bool               { return p.moved }
func (p *Placement) Enabled() bool             { return !p.disabled }

// SetTransform moves the placement and raises its moved flag.
func (p *Placement) SetTransform(t geom.Transform) {
	p.transform = t
	p.moved = true
}

func (p *Placement) Translate(d geom.Vec2) {
	p.SetTransform(p.transform.Translate(d))
}

// ClearMoved acknowledges the last move.
func (p *Placement) ClearMoved() { p.moved = false }

// Disable marks the placement as gone.
func (p *Placement) Disable() { p.disabled = true }
