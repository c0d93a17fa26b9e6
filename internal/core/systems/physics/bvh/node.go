package bvh

import (
	"github.com/zeusync/physics2d/internal/core/systems/physics/collider"
	"github.com/zeusync/physics2d/internal/core/systems/physics/geom"
)

const nullNode = -1

// node is a slot in the tree arena. Internal nodes have both children set
// and a nil collider; leaves have no children.
type node struct {
	box      geom.Box
	area     float64
	parent   int
	left     int
	right    int
	collider *collider.Collider
	// next links free slots.
	next int
}

func (n *node) isLeaf() bool {
	return n.left == nullNode
}

func (t *Tree) allocate() int {
	if t.free == nullNode {
		t.nodes = append(t.nodes, node{})
		t.free = len(t.nodes) - 1
		t.nodes[t.free].next = nullNode
	}

	id := t.free
	t.free = t.nodes[id].next
	t.nodes[id] = node{
		parent: nullNode,
		left:   nullNode,
		right:  nullNode,
		next:   nullNode,
	}
	t.count++
	return id
}

func (t *Tree) release(id int) {
	t.nodes[id] = node{
		parent: nullNode,
		left:   nullNode,
		right:  nullNode,
		next:   t.free,
	}
	t.free = id
	t.count--
}

func (t *Tree) setBox(id int, box geom.Box) {
	t.nodes[id].box = box
	t.nodes[id].area = box.Area()
}

// refit recomputes an internal node's box from its children.
func (t *Tree) refit(id int) {
	n := &t.nodes[id]
	t.setBox(id, t.nodes[n.left].box.Merge(t.nodes[n.right].box))
}

func (t *Tree) sibling(id int) int {
	p := t.nodes[id].parent
	if t.nodes[p].left == id {
		return t.nodes[p].right
	}
	return t.nodes[p].left
}

// replaceChild points parent's slot holding old at child. A null parent
// means old was the root.
func (t *Tree) replaceChild(parent, old, child int) {
	t.nodes[child].parent = parent
	if parent == nullNode {
		t.root = child
		return
	}
	if t.nodes[parent].left == old {
		t.nodes[parent].left = child
	} else {
		t.nodes[parent].right = child
	}
}

func (t *Tree) height(id int) int {
	if id == nullNode {
		return 0
	}
	n := &t.nodes[id]
	if n.isLeaf() {
		return 1
	}
	return 1 + max(t.height(n.left), t.height(n.right))
}
