package bvh

import (
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

// bestSibling runs a branch and bound search for the node whose pairing
// with a new leaf of the given box adds the least area to the tree.
// Candidates are visited cheapest inherited cost first.
func (t *Tree) bestSibling(box geom.Box) int {
	leafArea := box.Area()

	best := t.root
	bestCost := t.nodes[t.root].box.MergedArea(box)

	t.queue.Reset()
	t.queue.Enqueue(t.root, 0)

	for !t.queue.IsEmpty() {
		id, inherited, _ := t.queue.Dequeue()
		if inherited+leafArea >= bestCost {
			// Every remaining candidate inherits at least this much.
			break
		}

		n := &t.nodes[id]
		direct := n.box.MergedArea(box)
		if cost := direct + inherited; cost < bestCost {
			best, bestCost = id, cost
		}
		if n.isLeaf() {
			continue
		}

		childInherited := inherited + direct - n.area
		if leafArea+childInherited < bestCost {
			t.queue.Enqueue(n.left, childInherited)
			t.queue.Enqueue(n.right, childInherited)
		}
	}

	return best
}

// rotate tries the four swaps of one child of id with a grandchild under
// the other child, and applies the one that shrinks the affected child the
// most. Nothing happens unless the area strictly decreases.
func (t *Tree) rotate(id int) {
	n := t.nodes[id]
	if n.isLeaf() {
		return
	}

	type swap struct {
		child  int // moved down
		target int // grandchild moved up
		under  int // child whose subtree receives child
		keep   int // grandchild that stays under under
		delta  float64
	}

	var (
		best  swap
		found bool
	)
	consider := func(child, under int) {
		u := &t.nodes[under]
		if u.isLeaf() {
			return
		}
		for _, pair := range [2][2]int{{u.left, u.right}, {u.right, u.left}} {
			target, keep := pair[0], pair[1]
			delta := t.nodes[child].box.MergedArea(t.nodes[keep].box) - u.area
			if delta < 0 && (!found || delta < best.delta) {
				best = swap{child: child, target: target, under: under, keep: keep, delta: delta}
				found = true
			}
		}
	}
	consider(n.left, n.right)
	consider(n.right, n.left)

	if !found {
		return
	}

	// child and target trade places.
	u := &t.nodes[best.under]
	if u.left == best.target {
		u.left = best.child
	} else {
		u.right = best.child
	}
	if t.nodes[id].left == best.child {
		t.nodes[id].left = best.target
	} else {
		t.nodes[id].right = best.target
	}
	t.nodes[best.child].parent = best.under
	t.nodes[best.target].parent = id

	t.refit(best.under)
	t.refit(id)
	t.rotations++
}
