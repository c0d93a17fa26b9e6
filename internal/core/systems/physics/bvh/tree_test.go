package bvh

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
	"github.com/zeusync/physics2d/internal/core/systems/physics/shape"
)

type countingSolver struct {
	solver *narrow.Solver
	calls  int
}

func (s *countingSolver) Solve(a, b *collider.Collider) (*narrow.Pair, bool) {
	s.calls++
	return s.solver.Solve(a, b)
}

func newCounting() *countingSolver {
	return &countingSolver{solver: narrow.NewSolver(narrow.DefaultConfig(), log.NewNop())}
}

func newTree(debug bool) (*Tree, *countingSolver) {
	s := newCounting()
	cfg := DefaultConfig()
	cfg.Debug = debug
	return New(cfg, s, log.NewNop()), s
}

func circle(t *testing.T, pos geom.Vec2, r float64, static bool) (*collider.Collider, *collider.Placement) {
	t.Helper()
	c, err := shape.NewCircle(geom.V(0, 0), r)
	require.NoError(t, err)
	p := collider.NewPlacement(geom.NewTransform(pos, 0))
	return collider.New(c, p, static), p
}

func rect(t *testing.T, pos geom.Vec2, w, h float64, static bool) (*collider.Collider, *collider.Placement) {
	t.Helper()
	s, err := shape.NewRectangle(geom.V(0, 0), w, h)
	require.NoError(t, err)
	p := collider.NewPlacement(geom.NewTransform(pos, 0))
	return collider.New(s, p, static), p
}

func randomColliders(t *testing.T, rng *rand.Rand, n int) ([]*collider.Collider, []*collider.Placement) {
	t.Helper()
	cs := make([]*collider.Collider, n)
	ps := make([]*collider.Placement, n)
	for i := range cs {
		pos := geom.V(rng.Float64()*200-100, rng.Float64()*200-100)
		if rng.IntN(2) == 0 {
			cs[i], ps[i] = circle(t, pos, 0.5+rng.Float64()*4, rng.IntN(5) == 0)
		} else {
			cs[i], ps[i] = rect(t, pos, 0.5+rng.Float64()*6, 0.5+rng.Float64()*6, rng.IntN(5) == 0)
		}
	}
	return cs, ps
}

func bruteForce(t *testing.T, cs []*collider.Collider) map[narrow.PairKey]bool {
	t.Helper()
	s := narrow.NewSolver(narrow.DefaultConfig(), log.NewNop())
	out := make(map[narrow.PairKey]bool)
	for i, a := range cs {
		for _, b := range cs[i+1:] {
			if _, hit := s.Solve(a, b); hit {
				out[narrow.KeyOf(a, b)] = true
			}
		}
	}
	return out
}

func keys(pairs []*narrow.Pair) map[narrow.PairKey]bool {
	out := make(map[narrow.PairKey]bool, len(pairs))
	for _, p := range pairs {
		out[p.Key()] = true
	}
	return out
}

func TestInsertRemove(t *testing.T) {
	t.Run("Randomized Invariants", func(t *testing.T) {
		for seed := uint64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewPCG(seed, 42))
			tree, _ := newTree(false)
			cs, _ := randomColliders(t, rng, 150)

			for _, c := range cs {
				require.NoError(t, tree.Insert(c))
				require.NoError(t, tree.Validate())
			}
			require.Equal(t, len(cs), tree.Len())
			require.NoError(t, tree.ValidateEnclosure())

			stats := tree.Stats()
			require.Equal(t, len(cs), stats.Leaves)
			require.Equal(t, 2*len(cs)-1, stats.Nodes)
			require.GreaterOrEqual(t, stats.Height, 8)

			rng.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
			for i, c := range cs {
				require.NoError(t, tree.Remove(c))
				require.NoError(t, tree.Validate())
				require.False(t, tree.Contains(c))
				require.Equal(t, len(cs)-i-1, tree.Len())
			}
			require.True(t, tree.IsEmpty())
			require.Equal(t, 0, tree.Stats().Nodes)
		}
	})

	t.Run("Interleaved", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 7))
		tree, _ := newTree(false)
		cs, _ := randomColliders(t, rng, 100)

		var tracked []*collider.Collider
		for _, c := range cs {
			require.NoError(t, tree.Insert(c))
			tracked = append(tracked, c)
			if rng.IntN(3) == 0 {
				i := rng.IntN(len(tracked))
				require.NoError(t, tree.Remove(tracked[i]))
				tracked = append(tracked[:i], tracked[i+1:]...)
			}
			require.NoError(t, tree.Validate())
		}
		require.Equal(t, len(tracked), tree.Len())
	})

	t.Run("Duplicate Insert", func(t *testing.T) {
		tree, _ := newTree(false)
		c, _ := circle(t, geom.V(0, 0), 1, false)
		require.NoError(t, tree.Insert(c))

		err := tree.Insert(c)
		require.Error(t, err)
		require.True(t, errors.Is(err, physics.ErrAlreadyTracked))
		require.Equal(t, physics.ErrorCodeAlreadyTracked, physics.GetErrorCode(err))
		require.Equal(t, 1, tree.Len())
	})

	t.Run("Remove Untracked", func(t *testing.T) {
		tree, _ := newTree(false)
		c, _ := circle(t, geom.V(0, 0), 1, false)

		err := tree.Remove(c)
		require.True(t, errors.Is(err, physics.ErrNotTracked))
	})

	t.Run("Leaf Boxes", func(t *testing.T) {
		tree, _ := newTree(false)
		moving, _ := rect(t, geom.V(0, 0), 2, 2, false)
		floor, _ := rect(t, geom.V(0, -10), 40, 1, true)
		require.NoError(t, tree.Insert(moving))
		require.NoError(t, tree.Insert(floor))

		box, ok := tree.LeafBox(moving)
		require.True(t, ok)
		require.InDelta(t, 2.2, box.Width, 1e-12)
		require.InDelta(t, 2.2, box.Height, 1e-12)

		box, ok = tree.LeafBox(floor)
		require.True(t, ok)
		require.Equal(t, floor.BoundingBox(), box)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Enclosure After Moves", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(3, 9))
		tree, _ := newTree(false)
		cs, ps := randomColliders(t, rng, 80)
		for _, c := range cs {
			require.NoError(t, tree.Insert(c))
		}

		for step := 0; step < 30; step++ {
			for i, p := range ps {
				p.ClearMoved()
				if cs[i].IsStatic() || rng.IntN(2) == 0 {
					continue
				}
				p.Translate(geom.V(rng.Float64()*2-1, rng.Float64()*2-1))
			}
			require.Empty(t, tree.Update())
			require.NoError(t, tree.Validate())
			require.NoError(t, tree.ValidateEnclosure())
		}
		require.Greater(t, tree.Stats().Reinsertions, uint64(0))
	})

	t.Run("Small Move Keeps Leaf", func(t *testing.T) {
		tree, _ := newTree(false)
		c, p := rect(t, geom.V(0, 0), 10, 10, false)
		require.NoError(t, tree.Insert(c))
		before, _ := tree.LeafBox(c)

		p.Translate(geom.V(0.1, 0))
		tree.Update()

		after, _ := tree.LeafBox(c)
		require.Equal(t, before, after)
		require.Equal(t, uint64(0), tree.Stats().Reinsertions)
	})

	t.Run("Escaped Leaf Is Refattened", func(t *testing.T) {
		tree, _ := newTree(false)
		c, p := rect(t, geom.V(0, 0), 10, 10, false)
		require.NoError(t, tree.Insert(c))

		p.Translate(geom.V(5, 0))
		tree.Update()

		box, _ := tree.LeafBox(c)
		require.True(t, box.Encloses(c.BoundingBox()))
		require.InDelta(t, 5, box.Center()[0], 1e-9)
		require.Equal(t, uint64(1), tree.Stats().Reinsertions)
	})

	t.Run("Disabled Owner Removed", func(t *testing.T) {
		tree, _ := newTree(false)
		a, pa := circle(t, geom.V(0, 0), 1, false)
		b, _ := circle(t, geom.V(5, 0), 1, false)
		require.NoError(t, tree.Insert(a))
		require.NoError(t, tree.Insert(b))

		pa.Disable()
		removed := tree.Update()
		require.Equal(t, []*collider.Collider{a}, removed)
		require.False(t, tree.Contains(a))
		require.True(t, tree.Contains(b))
		require.NoError(t, tree.Validate())
	})
}

func TestQuery(t *testing.T) {
	t.Run("QueryAll Matches Brute Force", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(11, 5))
		tree, _ := newTree(true)
		cs, _ := randomColliders(t, rng, 120)
		for _, c := range cs {
			require.NoError(t, tree.Insert(c))
		}

		pairs := tree.QueryAll()
		require.Equal(t, bruteForce(t, cs), keys(pairs))
		for i, p := range pairs {
			require.Less(t, p.A().ID(), p.B().ID())
			if i > 0 {
				require.True(t, pairs[i-1].Key().Less(p.Key()))
			}
		}
	})

	t.Run("Idempotent On Static Scene", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(2, 2))
		tree, solver := newTree(true)
		cs, ps := randomColliders(t, rng, 60)
		for _, c := range cs {
			require.NoError(t, tree.Insert(c))
		}

		first := tree.QueryAll()
		for _, p := range ps {
			p.ClearMoved()
		}
		tree.Update()

		solver.calls = 0
		second := tree.QueryAll()
		third := tree.QueryAll()
		require.Equal(t, keys(first), keys(second))
		require.Equal(t, keys(first), keys(third))
		require.Zero(t, solver.calls)
	})

	t.Run("Moved Pair Is Solved Again", func(t *testing.T) {
		tree, solver := newTree(false)
		a, pa := circle(t, geom.V(0, 0), 2, false)
		b, pb := circle(t, geom.V(3, 0), 2, false)
		require.NoError(t, tree.Insert(a))
		require.NoError(t, tree.Insert(b))

		require.Len(t, tree.QueryAll(), 1)
		pa.ClearMoved()
		pb.ClearMoved()

		pb.Translate(geom.V(0.5, 0))
		tree.Update()
		solver.calls = 0
		pairs := tree.QueryAll()
		require.Equal(t, 1, solver.calls)
		require.Len(t, pairs, 1)
		require.InDelta(t, 0.5, pairs[0].Depth(), 1e-3)
	})

	t.Run("Collision Disabled", func(t *testing.T) {
		tree, _ := newTree(false)
		a, _ := circle(t, geom.V(0, 0), 2, false)
		b, _ := circle(t, geom.V(1, 0), 2, false)
		require.NoError(t, tree.Insert(a))
		require.NoError(t, tree.Insert(b))

		require.Len(t, tree.QueryAll(), 1)
		a.SetCollisionEnabled(false)
		require.Empty(t, tree.QueryAll())
		a.SetCollisionEnabled(true)
		require.Len(t, tree.QueryAll(), 1)
	})

	t.Run("Query Single", func(t *testing.T) {
		tree, _ := newTree(false)
		a, _ := circle(t, geom.V(0, 0), 2, false)
		b, _ := circle(t, geom.V(3, 0), 2, false)
		c, _ := circle(t, geom.V(50, 0), 2, false)
		for _, x := range []*collider.Collider{a, b, c} {
			require.NoError(t, tree.Insert(x))
		}

		pairs := tree.Query(b)
		require.Len(t, pairs, 1)
		require.Same(t, b, pairs[0].A())
		require.Same(t, a, pairs[0].B())
		require.InDelta(t, -1, pairs[0].Normal()[0], 1e-3)
		require.Empty(t, tree.Query(c))
	})

	t.Run("QueryBox", func(t *testing.T) {
		tree, _ := newTree(false)
		a, _ := rect(t, geom.V(0, 0), 2, 2, true)
		b, _ := rect(t, geom.V(10, 0), 2, 2, true)
		c, _ := rect(t, geom.V(20, 0), 2, 2, true)
		for _, x := range []*collider.Collider{c, a, b} {
			require.NoError(t, tree.Insert(x))
		}

		box, err := geom.NewBox(geom.V(-1, -1), 12, 2)
		require.NoError(t, err)
		require.Equal(t, []*collider.Collider{a, b}, tree.QueryBox(box))
	})

	t.Run("Debug Detects Corruption", func(t *testing.T) {
		tree, _ := newTree(true)
		for i := 0; i < 4; i++ {
			c, _ := circle(t, geom.V(float64(i)*3, 0), 1, false)
			require.NoError(t, tree.Insert(c))
		}
		require.NotPanics(t, func() { tree.QueryAll() })

		tree.nodes[tree.root].box.Width += 1
		require.ErrorIs(t, tree.Validate(), physics.ErrTreeCorrupt)
		require.Panics(t, func() { tree.QueryAll() })
	})
}

func TestBestSibling(t *testing.T) {
	tree, _ := newTree(false)
	far, _ := rect(t, geom.V(100, 100), 2, 2, true)
	near, _ := rect(t, geom.V(0, 0), 2, 2, true)
	other, _ := rect(t, geom.V(100, 95), 2, 2, true)
	for _, c := range []*collider.Collider{far, near, other} {
		require.NoError(t, tree.Insert(c))
	}

	// The newcomer belongs next to near, away from the far cluster.
	box, err := geom.NewBox(geom.V(1, 1), 2, 2)
	require.NoError(t, err)
	best := tree.bestSibling(box)
	require.Same(t, near, tree.nodes[best].collider)
}

func BenchmarkInsertRemove(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	tree := New(DefaultConfig(), newCounting(), log.NewNop())
	cs := make([]*collider.Collider, 1024)
	for i := range cs {
		s, _ := shape.NewCircle(geom.V(0, 0), 1)
		p := collider.NewPlacement(geom.NewTransform(geom.V(rng.Float64()*500, rng.Float64()*500), 0))
		cs[i] = collider.New(s, p, false)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range cs {
			_ = tree.Insert(c)
		}
		for _, c := range cs {
			_ = tree.Remove(c)
		}
	}
}
