package scene

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// needUpdate marks n and its whole subtree for refresh and queues n with its parent.
// The upward walk happens once per frame per node thanks to parentNotified.
func (s *sceneImpl) needUpdate(n *node) {
	n.needParentUpdate = true
	n.needChildUpdate = true
	n.pending = n.pending[:0]

	if n.parent != Nil && !n.parentNotified {
		n.parentNotified = true
		s.requestUpdate(s.nodes.get(n.parent), n.id)
	}
}

// requestUpdate queues child for a targeted refresh with parent, then walks up the ancestors
// that have not been notified yet. Nothing is queued when parent already refreshes all of
// its children.
func (s *sceneImpl) requestUpdate(parent *node, child NodeID) {
	for parent != nil {
		if parent.needChildUpdate {
			return
		}
		if !slices.Contains(parent.pending, child) {
			parent.pending = append(parent.pending, child)
		}
		if parent.parent == Nil || parent.parentNotified {
			return
		}
		parent.parentNotified = true
		child = parent.id
		parent = s.nodes.get(parent.parent)
	}
}

// cancelUpdate drops child from the pending worklist of parent.
func (s *sceneImpl) cancelUpdate(parent *node, child NodeID) {
	if i := slices.Index(parent.pending, child); i >= 0 {
		parent.pending = slices.Delete(parent.pending, i, i+1)
	}
}

type updateTask struct {
	id            NodeID
	parentChanged bool
}

// update runs one top-down pass from root, refreshing dirty world poses and bounds, then the
// octree entries of the nodes that moved. Only subtrees that are dirty or queued are visited.
//
// Returns:
//   - int: the number of nodes whose world pose was recomputed
func (s *sceneImpl) update(root NodeID) int {
	updated := 0
	stack := append(s.stack[:0], updateTask{id: root})
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := s.nodes.get(t.id)
		if n == nil {
			continue
		}
		n.parentNotified = false

		changed := n.needParentUpdate || t.parentChanged
		if changed {
			s.updateFromParent(n)
			updated++
		}

		if n.needChildUpdate || t.parentChanged {
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, updateTask{id: n.children[i], parentChanged: true})
			}
		} else {
			for i := len(n.pending) - 1; i >= 0; i-- {
				stack = append(stack, updateTask{id: n.pending[i]})
			}
		}
		n.pending = n.pending[:0]
		n.needChildUpdate = false
	}
	s.stack = stack
	return updated
}

// updateFromParent recomputes the world pose, transform and bounds of n from its parent, then
// mirrors the result into the octree and the light payload. A node without parent uses its
// local pose as world pose.
func (s *sceneImpl) updateFromParent(n *node) {
	parent := s.nodes.get(n.parent)
	if parent == nil {
		n.worldOrientation = n.orientation
		n.worldPosition = n.position
	} else {
		if n.inheritOrientation {
			n.worldOrientation = parent.worldOrientation.Mul(n.orientation)
		} else {
			n.worldOrientation = n.orientation
		}
		n.worldPosition = parent.worldOrientation.Rotate(n.position).Add(parent.worldPosition)
	}
	n.worldOrientation = common.NormalizeQuat(n.worldOrientation)
	n.worldTransform = common.ComposeTransform(n.worldPosition, n.worldOrientation)
	n.worldBounds = n.bounds().Transform(n.worldTransform)
	n.needParentUpdate = false

	if !n.attached {
		return
	}
	n.cell = s.ctx.Octree.Update(n.id, n.worldBounds, n.cell)

	if p, ok := n.payload.(*LightPayload); ok && p.Light != nil {
		p.Light.SetPosition(n.worldPosition)
		p.Light.SetDirection(n.worldOrientation.Rotate(p.Direction))
	}
}
