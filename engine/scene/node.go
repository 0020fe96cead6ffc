package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/octree"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeID identifies a node of a Scene. The low 32 bits index the node arena, the high 32 bits
// hold the generation of the slot, so IDs of destroyed nodes are detected and ignored.
type NodeID uint64

// Nil represents an invalid NodeID.
const Nil NodeID = 0

func makeID(index, gen uint32) NodeID {
	return NodeID(uint64(gen)<<32 | uint64(index))
}

func (id NodeID) index() uint32 {
	return uint32(id)
}

func (id NodeID) generation() uint32 {
	return uint32(id >> 32)
}

// node is one arena slot. Relations are NodeIDs into the same arena.
type node struct {
	id    NodeID
	alive bool

	name     string
	parent   NodeID
	children []NodeID
	byName   map[string]NodeID

	// attached is set while the node is reachable from the scene root.
	attached bool
	cell     octree.CellID

	position           mgl32.Vec3
	orientation        mgl32.Quat
	inheritOrientation bool
	static             bool

	worldPosition    mgl32.Vec3
	worldOrientation mgl32.Quat
	worldTransform   mgl32.Mat4

	customBounds bool
	localBounds  common.AxisAlignedBox
	worldBounds  common.AxisAlignedBox

	// needParentUpdate: the world pose must be recomputed.
	// needChildUpdate: every child must be refreshed.
	// parentNotified: the parent already queued this node in the current frame.
	// pending: children queued for a targeted refresh.
	needParentUpdate bool
	needChildUpdate  bool
	parentNotified   bool
	pending          []NodeID

	payload Payload
}

func (n *node) reset(id NodeID, name string, payload Payload) {
	*n = node{
		id:                 id,
		alive:              true,
		name:               name,
		cell:               octree.NoCell,
		orientation:        mgl32.QuatIdent(),
		inheritOrientation: true,
		worldOrientation:   mgl32.QuatIdent(),
		worldTransform:     mgl32.Ident4(),
		localBounds:        common.NullBox(),
		worldBounds:        common.NullBox(),
		needParentUpdate:   true,
		needChildUpdate:    true,
		payload:            payload,
		children:           n.children[:0],
		pending:            n.pending[:0],
	}
}

// bounds returns the model-space box of the node.
func (n *node) bounds() common.AxisAlignedBox {
	if n.customBounds || n.payload == nil {
		return n.localBounds
	}
	return n.payload.LocalBounds()
}

func (n *node) dirty() bool {
	return n.needParentUpdate || n.needChildUpdate || len(n.pending) > 0
}

// arena stores nodes in a slice and recycles freed slots. Slot 0 is reserved so that Nil never
// resolves.
type arena struct {
	nodes []node
	free  []uint32
	live  int
}

func newArena() arena {
	return arena{nodes: make([]node, 1)}
}

func (a *arena) alloc(name string, payload Payload) *node {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.nodes))
		a.nodes = append(a.nodes, node{})
	}
	n := &a.nodes[idx]
	gen := n.id.generation() + 1
	n.reset(makeID(idx, gen), name, payload)
	a.live++
	return n
}

func (a *arena) release(n *node) {
	id := n.id
	children, pending := n.children[:0], n.pending[:0]
	*n = node{id: id, children: children, pending: pending}
	a.free = append(a.free, id.index())
	a.live--
}

// get resolves id, returning nil for Nil, out of range and stale IDs.
func (a *arena) get(id NodeID) *node {
	idx := id.index()
	if id == Nil || int(idx) >= len(a.nodes) {
		return nil
	}
	n := &a.nodes[idx]
	if !n.alive || n.id != id {
		return nil
	}
	return n
}
