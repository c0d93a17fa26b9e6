// Package bvh is the broad phase: a dynamic tree of axis-aligned boxes,
// one leaf per tracked collider.
package bvh

import (
	"fmt"
	"slices"

	"github.com/zeusync/physics2d/internal/core/observability/log"
	"github.com/zeusync/physics2d/internal/core/systems/physics"
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
	"github.com/zeusync/physics2d/internal/core/systems/physics/narrow"
	"github.com/zeusync/physics2d/pkg/sequence"
)

// PairSolver confirms a broad-phase candidate.
type PairSolver interface {
	Solve(a, b *collider.Collider) (*narrow.Pair, bool)
}

type Config struct {
	// FattenFactor enlarges the leaf boxes of moving colliders.
	FattenFactor float64 `yaml:"fattenFactor"`
	// Debug validates the tree structure on every QueryAll.
	Debug bool `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{FattenFactor: physics.FattenFactor}
}

func (c Config) Validate() error {
	if c.FattenFactor < 1 {
		return fmt.Errorf("%w: fatten factor %g is below 1", physics.ErrInvalidConfig, c.FattenFactor)
	}
	return nil
}

// Stats describes the current shape of the tree and its lifetime
// maintenance counters.
type Stats struct {
	Leaves       int
	Nodes        int
	Height       int
	Reinsertions uint64
	Rotations    uint64
}

// Tree is a dynamic bounding volume hierarchy. It is not safe for
// concurrent use.
type Tree struct {
	config Config
	solver PairSolver
	logger log.Log

	nodes []node
	free  int
	root  int
	count int

	leaves map[*collider.Collider]int
	// dirty holds colliders that moved or were inserted since the last
	// QueryAll.
	dirty map[*collider.Collider]struct{}
	cache map[narrow.PairKey]*narrow.Pair

	queue *sequence.PriorityQueue[int, float64]
	stack []int

	reinsertions uint64
	rotations    uint64
}

func New(config Config, solver PairSolver, logger log.Log) *Tree {
	if logger == nil {
		logger = log.NewNop()
	}
	if config.FattenFactor < 1 {
		config.FattenFactor = 1
	}
	return &Tree{
		config: config,
		solver: solver,
		logger: logger,
		free:   nullNode,
		root:   nullNode,
		leaves: make(map[*collider.Collider]int),
		dirty:  make(map[*collider.Collider]struct{}),
		cache:  make(map[narrow.PairKey]*narrow.Pair),
		queue:  sequence.NewPriorityQueue[int, float64](),
	}
}

// Insert adds a leaf for c. Tracking the same collider twice fails.
func (t *Tree) Insert(c *collider.Collider) error {
	if c == nil {
		return fmt.Errorf("%w: nil collider", physics.ErrInvalidShape)
	}
	if _, ok := t.leaves[c]; ok {
		return fmt.Errorf("%w: collider %d", physics.ErrAlreadyTracked, c.ID())
	}

	leaf := t.allocate()
	t.nodes[leaf].collider = c
	t.setBox(leaf, t.leafBox(c))
	t.leaves[c] = leaf
	t.dirty[c] = struct{}{}

	t.insertLeaf(leaf)
	return nil
}

// Remove drops c's leaf. Removing an untracked collider fails.
func (t *Tree) Remove(c *collider.Collider) error {
	leaf, ok := t.leaves[c]
	if !ok {
		return fmt.Errorf("%w: collider %d", physics.ErrNotTracked, c.ID())
	}

	t.removeLeaf(leaf)
	t.release(leaf)
	delete(t.leaves, c)
	delete(t.dirty, c)
	return nil
}

// Update refits the tree after its colliders moved. Moving colliders whose
// tight box escaped their leaf get a fresh leaf; colliders whose owner is
// disabled are removed and returned in ID order.
func (t *Tree) Update() []*collider.Collider {
	var (
		removed    []*collider.Collider
		reinserted int
	)

	for _, c := range t.Colliders() {
		owner := c.Owner()
		if !owner.Enabled() {
			_ = t.Remove(c)
			removed = append(removed, c)
			continue
		}
		if c.IsStatic() || !owner.Moved() {
			continue
		}

		t.dirty[c] = struct{}{}
		leaf := t.leaves[c]
		if t.nodes[leaf].box.Encloses(c.BoundingBox()) {
			continue
		}

		t.removeLeaf(leaf)
		t.setBox(leaf, t.leafBox(c))
		t.insertLeaf(leaf)
		reinserted++
	}

	if reinserted > 0 {
		t.reinsertions += uint64(reinserted)
		t.logger.Debug("bvh leaves reinserted",
			log.Int("count", reinserted),
			log.Int("leaves", len(t.leaves)),
		)
	}
	return removed
}

// Colliders returns the tracked colliders in ID order.
func (t *Tree) Colliders() []*collider.Collider {
	out := make([]*collider.Collider, 0, len(t.leaves))
	for c := range t.leaves {
		out = append(out, c)
	}
	slices.SortFunc(out, byID)
	return out
}

func (t *Tree) Len() int {
	return len(t.leaves)
}

func (t *Tree) IsEmpty() bool {
	return t.root == nullNode
}

func (t *Tree) Contains(c *collider.Collider) bool {
	_, ok := t.leaves[c]
	return ok
}

// LeafBox returns the cached, possibly fattened box of c's leaf.
func (t *Tree) LeafBox(c *collider.Collider) (geom.Box, bool) {
	leaf, ok := t.leaves[c]
	if !ok {
		return geom.Box{}, false
	}
	return t.nodes[leaf].box, true
}

func (t *Tree) Stats() Stats {
	return Stats{
		Leaves:       len(t.leaves),
		Nodes:        t.count,
		Height:       t.height(t.root),
		Reinsertions: t.reinsertions,
		Rotations:    t.rotations,
	}
}

func (t *Tree) leafBox(c *collider.Collider) geom.Box {
	box := c.BoundingBox()
	if c.IsStatic() {
		return box
	}
	return box.Fatten(t.config.FattenFactor)
}

func (t *Tree) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	sibling := t.bestSibling(t.nodes[leaf].box)
	oldParent := t.nodes[sibling].parent

	parent := t.allocate()
	t.nodes[parent].left = sibling
	t.nodes[parent].right = leaf
	t.replaceChild(oldParent, sibling, parent)
	t.nodes[sibling].parent = parent
	t.nodes[leaf].parent = parent
	t.refit(parent)

	for id := oldParent; id != nullNode; id = t.nodes[id].parent {
		t.refit(id)
		t.rotate(id)
	}
}

// removeLeaf detaches leaf without releasing it. The leaf's sibling takes
// the place of their parent.
func (t *Tree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	sibling := t.sibling(leaf)

	t.replaceChild(grandParent, parent, sibling)
	t.release(parent)
	t.nodes[leaf].parent = nullNode

	for id := grandParent; id != nullNode; id = t.nodes[id].parent {
		t.refit(id)
	}
}
