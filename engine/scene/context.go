package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/octree"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// Context bundles the per-scene collaborators. Members left nil are created by NewScene:
// a default octree, an empty light manager and a state batcher over a RecordingDriver.
type Context struct {
	Octree  octree.Octree[NodeID]
	Lights  light.Manager
	Batcher renderer.StateBatcher
}
