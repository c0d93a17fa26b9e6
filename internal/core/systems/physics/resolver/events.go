package resolver

import (
	"cmp"
	"slices"

	"github.com/zeusync/physics2d/internal/core/events/bus"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
)

// CollisionEvent is published when a body enters or leaves the collision
// set.
type CollisionEvent struct {
	Tick uint64
	Body *Body
	// Others are the bodies it touches this tick, in ID order. Empty for
	// end events.
	Others []*Body
}

const eventSource = "physics.resolver"

// notify diffs this tick's collision set against the previous one. Bodies
// still colliding produce nothing.
func (w *World) notify(pairs []*narrow.Pair) (began, ended []*Body) {
	touching := make(map[*Body][]*Body)
	for _, p := range pairs {
		a, b := w.body(p.A()), w.body(p.B())
		touching[a] = append(touching[a], b)
		touching[b] = append(touching[b], a)
	}

	for _, b := range w.order {
		_, was := w.colliding[b]
		others, is := touching[b]
		switch {
		case is && !was:
			slices.SortFunc(others, byID)
			began = append(began, b)
			w.emit(physics.EventCollisionBegin, CollisionEvent{Tick: w.tick, Body: b, Others: others})
		case was && !is:
			ended = append(ended, b)
			w.emit(physics.EventCollisionEnd, CollisionEvent{Tick: w.tick, Body: b})
		}
	}

	clear(w.colliding)
	for b := range touching {
		w.colliding[b] = struct{}{}
	}
	return began, ended
}

func (w *World) emit(eventType string, ev CollisionEvent) {
	if eventType == physics.EventCollisionBegin && ev.Body.onCollide != nil {
		ev.Body.onCollide(ev)
	}
	if w.events == nil {
		return
	}
	if err := w.events.Publish(bus.NewEvent(eventType, eventSource, ev, nil)); err != nil {
		w.logger.Warn("collision handler failed",
			log.String("event", eventType),
			log.String("body", ev.Body.String()),
			log.Uint64("tick", ev.Tick),
			log.Error(err),
		)
	}
}

// IsColliding reports whether b was in the collision set after the last
// step.
func (w *World) IsColliding(b *Body) bool {
	_, ok := w.colliding[b]
	return ok
}

func byID(a, b *Body) int {
	return cmp.Compare(a.ID(), b.ID())
}
