package resolver

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
	"github.com/zeusync/physics2d/pkg/encoding"
)

var _ encoding.Serializable = (*Snapshot)(nil)

// BodyState is the render-facing view of a body after a step.
type BodyState struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Kind      string    `json:"kind"`
	Position  geom.Vec2 `json:"position"`
	Rotation  float64   `json:"rotation"`
	Momentum  geom.Vec2 `json:"momentum"`
	Static    bool      `json:"static,omitempty"`
	Colliding bool      `json:"colliding,omitempty"`
	// Radius is set for circles, Vertices (world space) for polygons.
	Radius   float64     `json:"radius,omitempty"`
	Vertices []geom.Vec2 `json:"vertices,omitempty"`
}

type Snapshot struct {
	Tick   uint64      `json:"tick"`
	Bodies []BodyState `json:"bodies"`
}

// Serialize encodes the snapshot as JSON.
func (s *Snapshot) Serialize() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Snapshot) Deserialize(data []byte) error {
	return json.Unmarshal(data, s)
}

// Snapshot captures every body in ID order.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{Tick: w.tick, Bodies: make([]BodyState, 0, len(w.order))}
	for _, b := range w.order {
		t := b.transform
		state := BodyState{
			ID:        b.ID(),
			Name:      b.name,
			Position:  t.Position,
			Rotation:  t.Rotation,
			Momentum:  b.momentum,
			Static:    b.IsStatic(),
			Colliding: w.IsColliding(b),
		}

		switch sh := b.collider.Shape().(type) {
		case shape.Circle:
			state.Kind = shape.KindCircle.String()
			state.Radius = sh.Radius() * t.ScaleFactor()
		case shape.Polygon:
			state.Kind = shape.KindPolygon.String()
			for _, v := range sh.Vertices() {
				state.Vertices = append(state.Vertices, t.Apply(sh.Center().Add(v)))
			}
		}
		s.Bodies = append(s.Bodies, state)
	}
	return s
}

// Digest fingerprints the simulation state. Two worlds built from the same
// input and stepped the same number of times have equal digests, whatever
// collider IDs they were assigned.
func (w *World) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte

	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}
	putVec := func(v geom.Vec2) {
		put(math.Float64bits(v[0]))
		put(math.Float64bits(v[1]))
	}

	put(w.tick)
	put(uint64(len(w.order)))
	for _, b := range w.order {
		_, _ = h.WriteString(b.name)
		putVec(b.transform.Position)
		put(math.Float64bits(b.transform.Rotation))
		putVec(b.momentum)
		if w.IsColliding(b) {
			put(1)
		} else {
			put(0)
		}
	}
	return h.Sum64()
}
