// Package resolver advances rigid bodies one fixed step at a time: it
// integrates motion, runs the broad and narrow phases, applies impulses
// and reports collisions that begin or end.
package resolver

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics/bvh"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
)

// Frame is the outcome of one Step.
type Frame struct {
	Tick uint64
	// Pairs are this tick's collisions ordered by pair key.
	Pairs []*narrow.Pair
	// Began and Ended list bodies entering and leaving the collision set,
	// in ID order.
	Began []*Body
	Ended []*Body
}

// World owns a set of bodies and the state carried between ticks. It is
// not safe for concurrent use; independent worlds may run in parallel.
type World struct {
	config Config
	logger log.Log
	events bus.EventBus

	tree   *bvh.Tree
	solver *narrow.Solver

	bodies    map[*collider.Collider]*Body
	order     []*Body
	colliding map[*Body]struct{}
	tick      uint64
}

// NewWorld builds an empty world. events may be nil.
func NewWorld(config Config, logger log.Log, events bus.EventBus) (*World, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	solver := narrow.NewSolver(config.Narrow, logger)
	return &World{
		config:    config,
		logger:    logger,
		events:    events,
		tree:      bvh.New(config.tree(), solver, logger),
		solver:    solver,
		bodies:    make(map[*collider.Collider]*Body),
		colliding: make(map[*Body]struct{}),
	}, nil
}

func (w *World) Config() Config { return w.config }
func (w *World) Tick() uint64   { return w.tick }
func (w *World) Len() int       { return len(w.order) }

// Bodies returns the tracked bodies in ID order.
func (w *World) Bodies() []*Body {
	return slices.Clone(w.order)
}

// Add starts tracking b. Adding a body twice fails.
func (w *World) Add(b *Body) error {
	if err := w.tree.Insert(b.collider); err != nil {
		return fmt.Errorf("add %s: %w", b, err)
	}

	w.bodies[b.collider] = b
	i, _ := slices.BinarySearchFunc(w.order, b.ID(), func(x *Body, id uint64) int {
		return cmp.Compare(x.ID(), id)
	})
	w.order = slices.Insert(w.order, i, b)

	w.logger.Debug("body added",
		log.String("body", b.String()),
		log.Uint64("id", b.ID()),
		log.Bool("static", b.IsStatic()),
	)
	return nil
}

// Remove stops tracking b. Removing an untracked body fails.
func (w *World) Remove(b *Body) error {
	if err := w.tree.Remove(b.collider); err != nil {
		return fmt.Errorf("remove %s: %w", b, err)
	}
	w.forget(b)
	return nil
}

func (w *World) forget(b *Body) {
	delete(w.bodies, b.collider)
	delete(w.colliding, b)
	if i := slices.Index(w.order, b); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
	w.logger.Debug("body removed", log.String("body", b.String()), log.Uint64("id", b.ID()))
}

// Step advances the world by one time step.
func (w *World) Step() Frame {
	w.tick++
	frame := Frame{Tick: w.tick}

	w.integrate()

	for _, c := range w.tree.Update() {
		if b, ok := w.bodies[c]; ok {
			w.forget(b)
		}
	}

	frame.Pairs = w.tree.QueryAll()
	for _, b := range w.order {
		b.moved = false
	}

	w.resolve(frame.Pairs)
	frame.Began, frame.Ended = w.notify(frame.Pairs)
	return frame
}

func (w *World) integrate() {
	dt := w.config.TimeStep
	for _, b := range w.order {
		if b.IsStatic() || b.disabled {
			continue
		}
		b.momentum = b.momentum.Add(w.config.Gravity.Mul(b.mass).Add(b.force).Mul(dt))
		b.translate(b.momentum.Mul(dt / b.mass))
	}
}

// body maps a pair side back to its body.
func (w *World) body(c *collider.Collider) *Body {
	return w.bodies[c]
}

// QueryBox returns the bodies whose broad-phase box overlaps box.
func (w *World) QueryBox(box geom.Box) []*Body {
	var out []*Body
	for _, c := range w.tree.QueryBox(box) {
		if b := w.body(c); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Contacts returns the current pairs involving b, with b on the A side.
func (w *World) Contacts(b *Body) []*narrow.Pair {
	return w.tree.Query(b.collider)
}

// Stats exposes the broad-phase counters.
func (w *World) Stats() bvh.Stats {
	return w.tree.Stats()
}
