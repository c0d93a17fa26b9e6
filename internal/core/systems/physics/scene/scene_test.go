package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/resolver"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

func TestLoadFile(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		s, err := LoadFile("testdata/stack.yaml")
		require.NoError(t, err)
		require.Equal(t, "stack", s.Name)
		require.Equal(t, 300, s.Ticks)
		require.NotNil(t, s.Gravity)
		require.Equal(t, geom.V(0, -9.81), *s.Gravity)
		require.Len(t, s.Bodies, 4)
		require.Equal(t, geom.V(0.2, 1.2), s.Bodies[1].Repeat.Offset)
		require.Len(t, s.Bodies[2].Shape.Vertices, 3)

		bodies, err := s.Build()
		require.NoError(t, err)
		require.Len(t, bodies, 6)

		require.True(t, bodies[0].IsStatic())
		require.Equal(t, "crate#2", bodies[3].Name())
		require.InDelta(t, 0.4, bodies[3].Position()[0], 1e-12)
		require.InDelta(t, 3.9, bodies[3].Position()[1], 1e-12)
		require.Equal(t, shape.KindPolygon, bodies[4].Collider().Shape().Kind())
		require.Equal(t, 0.3, bodies[4].Rotation())
		require.Equal(t, geom.V(2, 0), bodies[5].Momentum())
	})

	t.Run("JSON", func(t *testing.T) {
		s, err := LoadFile("testdata/bounce.json")
		require.NoError(t, err)
		require.Equal(t, "bounce", s.Name)

		cfg := s.Configure(resolver.DefaultConfig())
		require.Equal(t, geom.Vec2{}, cfg.Gravity)

		w, err := resolver.NewWorld(cfg, log.NewNop(), nil)
		require.NoError(t, err)
		bodies, err := s.Populate(w)
		require.NoError(t, err)
		require.Equal(t, 2, w.Len())

		for i := 0; i < 60; i++ {
			w.Step()
		}
		require.Less(t, bodies[0].Velocity()[0], 0.0)
		require.Greater(t, bodies[1].Velocity()[0], 0.0)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile("testdata/missing.yaml")
		require.Error(t, err)
	})
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		err  error
	}{
		{
			name: "Unknown Kind",
			doc:  "bodies:\n  - shape: {kind: star}\n    mass: 1\n",
			err:  physics.ErrInvalidShape,
		},
		{
			name: "Two Vertices",
			doc:  "bodies:\n  - shape: {kind: polygon, vertices: [[0, 0], [1, 0]]}\n    mass: 1\n",
			err:  physics.ErrInvalidShape,
		},
		{
			name: "Dynamic Without Mass",
			doc:  "bodies:\n  - shape: {kind: circle, radius: 1}\n",
			err:  physics.ErrInvalidBody,
		},
		{
			name: "Bad Repeat",
			doc:  "bodies:\n  - shape: {kind: circle, radius: 1}\n    mass: 1\n    repeat: {count: 0}\n",
			err:  physics.ErrInvalidBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadYAML(strings.NewReader(tt.doc))
			require.NoError(t, err)
			_, err = s.Build()
			require.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("Unknown Field", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("bodies:\n  - shape: {kind: circle, radius: 1}\n    weight: 3\n"))
		require.Error(t, err)
	})
}
