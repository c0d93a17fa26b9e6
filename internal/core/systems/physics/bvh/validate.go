package bvh

import (
	"fmt"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
)

// Validate checks the structural invariants: parent links agree with child
// links, every internal node caches exactly the merge of its children and
// every tracked collider has exactly one reachable leaf.
func (t *Tree) Validate() error {
	if t.root == nullNode {
		if len(t.leaves) != 0 {
			return fmt.Errorf("%w: empty tree tracks %d colliders", physics.ErrTreeCorrupt, len(t.leaves))
		}
		return nil
	}
	if p := t.nodes[t.root].parent; p != nullNode {
		return fmt.Errorf("%w: root %d has parent %d", physics.ErrTreeCorrupt, t.root, p)
	}

	var (
		leaves  int
		visited int
		stack   = []int{t.root}
	)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		visited++
		if visited > t.count {
			return fmt.Errorf("%w: cycle below root", physics.ErrTreeCorrupt)
		}

		n := &t.nodes[id]
		if n.area != n.box.Area() {
			return fmt.Errorf("%w: node %d caches area %g, box has %g", physics.ErrTreeCorrupt, id, n.area, n.box.Area())
		}

		if n.isLeaf() {
			if n.right != nullNode || n.collider == nil {
				return fmt.Errorf("%w: malformed leaf %d", physics.ErrTreeCorrupt, id)
			}
			if t.leaves[n.collider] != id {
				return fmt.Errorf("%w: leaf %d not indexed for collider %d", physics.ErrTreeCorrupt, id, n.collider.ID())
			}
			leaves++
			continue
		}

		if n.right == nullNode || n.collider != nil {
			return fmt.Errorf("%w: malformed internal node %d", physics.ErrTreeCorrupt, id)
		}
		for _, child := range [2]int{n.left, n.right} {
			if t.nodes[child].parent != id {
				return fmt.Errorf("%w: node %d does not point back to parent %d", physics.ErrTreeCorrupt, child, id)
			}
		}
		if merged := t.nodes[n.left].box.Merge(t.nodes[n.right].box); merged != n.box {
			return fmt.Errorf("%w: node %d box %s, children merge to %s", physics.ErrTreeCorrupt, id, n.box, merged)
		}
		stack = append(stack, n.left, n.right)
	}

	if leaves != len(t.leaves) {
		return fmt.Errorf("%w: %d reachable leaves for %d colliders", physics.ErrTreeCorrupt, leaves, len(t.leaves))
	}
	return nil
}

// ValidateEnclosure checks that every leaf box still encloses its
// collider's tight box. It holds between Update calls.
func (t *Tree) ValidateEnclosure() error {
	for c, leaf := range t.leaves {
		if box := c.BoundingBox(); !t.nodes[leaf].box.Encloses(box) {
			return fmt.Errorf("%w: leaf of collider %d %s does not enclose %s",
				physics.ErrTreeCorrupt, c.ID(), t.nodes[leaf].box, box)
		}
	}
	return nil
}
