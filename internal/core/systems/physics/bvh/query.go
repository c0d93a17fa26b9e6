package bvh

import (
	"cmp"
	"slices"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
)

// walk calls visit for every leaf whose box overlaps box.
func (t *Tree) walk(box geom.Box, visit func(c *collider.Collider)) {
	if t.root == nullNode {
		return
	}

	stack := append(t.stack[:0], t.root)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[id]
		if !n.box.Intersects(box) {
			continue
		}
		if n.isLeaf() {
			visit(n.collider)
			continue
		}
		stack = append(stack, n.left, n.right)
	}
	t.stack = stack[:0]
}

// QueryBox returns the tracked colliders whose leaf box overlaps box, in
// ID order. It does not run the narrow phase.
func (t *Tree) QueryBox(box geom.Box) []*collider.Collider {
	var out []*collider.Collider
	t.walk(box, func(c *collider.Collider) {
		out = append(out, c)
	})
	slices.SortFunc(out, byID)
	return out
}

// Query returns the pairs c forms with tracked colliders. c is always the
// A side, so normals point away from it. c need not be tracked.
func (t *Tree) Query(c *collider.Collider) []*narrow.Pair {
	box, ok := t.LeafBox(c)
	if !ok {
		box = c.BoundingBox()
	}

	var pairs []*narrow.Pair
	for _, other := range t.QueryBox(box) {
		if other == c {
			continue
		}
		if p, hit := t.solver.Solve(c, other); hit {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// QueryAll returns every intersecting pair of tracked colliders, ordered by
// pair key with the lower ID on the A side. Pairs whose colliders both kept
// still since the previous call reuse the previous narrow-phase answer.
//
// In debug mode the tree is validated first and a broken invariant panics.
func (t *Tree) QueryAll() []*narrow.Pair {
	if t.config.Debug {
		if err := t.Validate(); err != nil {
			panic(physics.NewError("bvh.QueryAll", err))
		}
	}

	var (
		pairs []*narrow.Pair
		cache = make(map[narrow.PairKey]*narrow.Pair, len(t.cache))
	)

	for _, a := range t.Colliders() {
		if !a.CollisionEnabled() {
			continue
		}
		aStill := t.still(a)

		t.walk(t.nodes[t.leaves[a]].box, func(b *collider.Collider) {
			if b.ID() <= a.ID() || !b.CollisionEnabled() {
				return
			}

			key := narrow.KeyOf(a, b)
			p, cached := t.cache[key]
			if !cached || !aStill || !t.still(b) {
				p, _ = t.solver.Solve(a, b)
			}
			cache[key] = p
		})
	}

	for _, p := range cache {
		if p != nil {
			pairs = append(pairs, p)
		}
	}
	slices.SortFunc(pairs, func(x, y *narrow.Pair) int {
		kx, ky := x.Key(), y.Key()
		switch {
		case kx.Less(ky):
			return -1
		case ky.Less(kx):
			return 1
		default:
			return 0
		}
	})

	t.cache = cache
	clear(t.dirty)
	return pairs
}

// still reports whether c kept its place since the last QueryAll.
func (t *Tree) still(c *collider.Collider) bool {
	if _, ok := t.dirty[c]; ok {
		return false
	}
	return !c.Owner().Moved()
}

func byID(a, b *collider.Collider) int {
	return cmp.Compare(a.ID(), b.ID())
}
