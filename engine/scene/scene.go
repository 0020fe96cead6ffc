package scene

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/octree"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameStats describes one rendered scene frame.
type FrameStats = profiler.FrameStats

// Scene owns a node hierarchy rooted at Root and drives the per-frame pipeline over it:
// Update resolves world transforms and bounds and re-files moved nodes in the octree, Render
// culls against the camera, selects the lights affecting each visible node and hands the
// draws to the state batcher.
//
// Nodes are created detached and become part of the scene once attached below Root. Only
// attached nodes are indexed, lit and drawn. Mutations return false when they did not take
// effect; stale or unknown NodeIDs are ignored. Each node must own its payload.
// Thread-safe for concurrent access, but the scene must not be mutated while Render runs.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera. Nil is ignored.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Context returns the scene's collaborators.
	Context() Context

	// Root returns the root node. It is always attached and cannot be destroyed.
	Root() NodeID

	// Len returns the number of nodes attached to the scene, root included.
	Len() int

	// CreateNode creates a detached node.
	//
	// Parameters:
	//   - name: the node name, unique among its future siblings; empty generates "node_<id>"
	//   - payload: what the node carries, nil means a TransformPayload
	//
	// Returns:
	//   - NodeID: the new node
	CreateNode(name string, payload Payload) NodeID

	// Valid reports whether id refers to a live node.
	Valid(id NodeID) bool

	// AttachChild makes child a child of parent. Fails if child already has a parent, if
	// parent already has a child with the same name, or if child is an ancestor of parent.
	//
	// Parameters:
	//   - parent: the new parent
	//   - child: the node to attach
	//
	// Returns:
	//   - bool: true if child was attached
	AttachChild(parent, child NodeID) bool

	// DetachChild unlinks child from parent. The detached subtree leaves the octree and the
	// light manager and keeps its nodes alive.
	//
	// Parameters:
	//   - parent: the current parent
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: true if child was detached
	DetachChild(parent, child NodeID) bool

	// DestroyNode detaches id and destroys it with its whole subtree.
	//
	// Parameters:
	//   - id: the node to destroy
	//
	// Returns:
	//   - bool: true if the node was destroyed
	DestroyNode(id NodeID) bool

	// SeparateFromParent re-attaches id directly below Root keeping its world position and orientation.
	//
	// Parameters:
	//   - id: the node to move
	//
	// Returns:
	//   - bool: true if the node is now a child of Root
	SeparateFromParent(id NodeID) bool

	// RenameNode renames id. Fails if a sibling already uses the name.
	//
	// Parameters:
	//   - id: the node
	//   - name: the new name
	//
	// Returns:
	//   - bool: true if the node was renamed
	RenameNode(id NodeID, name string) bool

	// NodeName returns the name of id.
	NodeName(id NodeID) string

	// Child returns the child of parent with the given name, or Nil.
	Child(parent NodeID, name string) NodeID

	// Children returns the children of id in attach order.
	Children(id NodeID) []NodeID

	// Parent returns the parent of id, or Nil.
	Parent(id NodeID) NodeID

	// Payload returns the payload of id.
	Payload(id NodeID) Payload

	// SetPosition sets the position of id relative to its parent.
	SetPosition(id NodeID, position mgl32.Vec3)

	// Position returns the position of id relative to its parent.
	Position(id NodeID) mgl32.Vec3

	// Translate moves id by delta in parent space.
	Translate(id NodeID, delta mgl32.Vec3)

	// SetOrientation sets the orientation of id relative to its parent.
	SetOrientation(id NodeID, orientation mgl32.Quat)

	// Orientation returns the orientation of id relative to its parent.
	Orientation(id NodeID) mgl32.Quat

	// Rotate applies rotation to the orientation of id in local space.
	Rotate(id NodeID, rotation mgl32.Quat)

	// SetInheritOrientation sets whether id composes its orientation with its parent's. Enabled by default.
	SetInheritOrientation(id NodeID, inherit bool)

	// SetLocalBounds overrides the model-space box of id that its payload provides.
	SetLocalBounds(id NodeID, box common.AxisAlignedBox)

	// LocalBounds returns the model-space box of id.
	LocalBounds(id NodeID) common.AxisAlignedBox

	// SetStaticHint marks id as rarely moving. The hint is informational.
	SetStaticHint(id NodeID, static bool)

	// StaticHint returns the static hint of id.
	StaticHint(id NodeID) bool

	// IsDirty reports whether id waits for the next Update.
	IsDirty(id NodeID) bool

	// WorldPosition returns the world position of id as of the last Update.
	WorldPosition(id NodeID) mgl32.Vec3

	// WorldOrientation returns the world orientation of id as of the last Update.
	WorldOrientation(id NodeID) mgl32.Quat

	// WorldTransform returns the world transform of id as of the last Update.
	WorldTransform(id NodeID) mgl32.Mat4

	// WorldBounds returns the world-space box of id as of the last Update.
	WorldBounds(id NodeID) common.AxisAlignedBox

	// Walk visits start and its descendants breadth first, ancestors before descendants.
	// The order is captured before the first visit, so visit may mutate the scene.
	//
	// Parameters:
	//   - start: the first node
	//   - visit: called per node, returning false stops the walk
	Walk(start NodeID, visit func(id NodeID) bool)

	// Update refreshes every dirty world pose and bound top-down and re-files moved nodes in
	// the octree. Must run before Render whenever nodes changed.
	//
	// Returns:
	//   - int: the number of nodes whose world pose was recomputed
	Update() int

	// Render culls the attached nodes against the camera, uploads the lights in view,
	// enqueues visible nodes with their affecting lights and renders the batch.
	//
	// Returns:
	//   - FrameStats: statistics of the frame
	Render() FrameStats

	// Close stops the light worker pool. The scene must not be rendered afterwards.
	Close()
}

type lightJob struct {
	p      *RendrablePayload
	center mgl32.Vec3
	radius float32
}

type sceneImpl struct {
	mu *sync.RWMutex

	name   string
	active bool
	cam    camera.Camera
	ctx    Context
	logger *slog.Logger

	nodes    arena
	root     NodeID
	attached int

	octreeOptions []octree.OctreeBuilderOption
	lightOptions  []light.ManagerBuilderOption

	debugBounds bool
	debugColor  mgl32.Vec4
	profiler    *profiler.Profiler

	// lightPool refreshes affecting-light caches in parallel once a frame has at least
	// parallelThreshold visible rendrables. Nil when lightWorkers is 0.
	lightPool         worker.DynamicWorkerPool
	lightWorkers      int
	parallelThreshold int

	// Scratch buffers reused every frame.
	stack   []updateTask
	visible []NodeID
	jobs    []lightJob
	slotOf  map[light.Light]int

	updated    int
	updateTime time.Duration
}

var _ Scene = &sceneImpl{}

// NewScene creates a new Scene viewed through cam. Members of ctx left nil are created with
// defaults. Panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene, also used for the root node
//   - cam: the camera to attach (must not be nil)
//   - ctx: the collaborators
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, ctx Context, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &sceneImpl{
		mu:                &sync.RWMutex{},
		name:              name,
		active:            true,
		cam:               cam,
		ctx:               ctx,
		logger:            slog.Default(),
		nodes:             newArena(),
		debugColor:        mgl32.Vec4{1, 1, 0, 1},
		parallelThreshold: 64,
		slotOf:            make(map[light.Light]int),
	}
	for _, option := range options {
		option(s)
	}
	base := s.logger
	s.logger = base.With("component", "scene", "scene", name)

	if s.ctx.Octree == nil {
		s.ctx.Octree = octree.NewOctree[NodeID](append([]octree.OctreeBuilderOption{octree.WithLogger(base)}, s.octreeOptions...)...)
	}
	if s.ctx.Lights == nil {
		s.ctx.Lights = light.NewManager(append([]light.ManagerBuilderOption{light.WithLogger(base)}, s.lightOptions...)...)
	}
	if s.ctx.Batcher == nil {
		s.ctx.Batcher = renderer.NewStateBatcher(renderer.NewRecordingDriver(nil), renderer.WithLogger(base))
	}

	// Queue size of 256 matches the chunked task count with headroom.
	if s.lightWorkers > 0 {
		s.lightPool = worker.NewDynamicWorkerPool(s.lightWorkers, 256, 1*time.Second)
	}

	root := s.nodes.alloc(name, TransformPayload{})
	root.attached = true
	s.root = root.id
	s.attached = 1
	return s
}

func (s *sceneImpl) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *sceneImpl) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *sceneImpl) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *sceneImpl) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *sceneImpl) SetCamera(cam camera.Camera) {
	if cam == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *sceneImpl) Context() Context {
	return s.ctx
}

func (s *sceneImpl) Root() NodeID {
	return s.root
}

func (s *sceneImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attached
}

func (s *sceneImpl) CreateNode(name string, payload Payload) NodeID {
	if payload == nil {
		payload = TransformPayload{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.nodes.alloc(name, payload)
	if name == "" {
		n.name = fmt.Sprintf("node_%d", uint64(n.id))
	}
	return n.id
}

func (s *sceneImpl) Valid(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.get(id) != nil
}

func (s *sceneImpl) AttachChild(parent, child NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, c := s.nodes.get(parent), s.nodes.get(child)
	if p == nil || c == nil || c.parent != Nil || child == s.root {
		return false
	}
	if _, taken := p.byName[c.name]; taken {
		s.logger.Debug("ignoring child with duplicate name", "parent", p.name, "name", c.name)
		return false
	}
	for a := p; a != nil; a = s.nodes.get(a.parent) {
		if a.id == child {
			return false
		}
	}

	if p.byName == nil {
		p.byName = make(map[string]NodeID)
	}
	p.byName[c.name] = child
	p.children = append(p.children, child)
	c.parent = parent
	c.parentNotified = false

	if p.attached {
		s.attachSubtree(child)
	}
	s.needUpdate(c)
	return true
}

func (s *sceneImpl) DetachChild(parent, child NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detach(parent, child)
}

func (s *sceneImpl) DestroyNode(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nodes.get(id)
	if n == nil || id == s.root {
		return false
	}
	if n.parent != Nil {
		s.detach(n.parent, id)
	}

	for _, d := range s.subtree(id) {
		if dn := s.nodes.get(d); dn != nil {
			s.nodes.release(dn)
		}
	}
	return true
}

func (s *sceneImpl) SeparateFromParent(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nodes.get(id)
	if n == nil || id == s.root {
		return false
	}
	if n.parent == s.root {
		return true
	}
	root := s.nodes.get(s.root)
	if _, taken := root.byName[n.name]; taken {
		return false
	}

	wp, wo := s.worldPose(n)
	if n.parent != Nil {
		s.detach(n.parent, id)
	}

	rp, ro := s.worldPose(root)
	inv := ro.Inverse()
	n.position = inv.Rotate(wp.Sub(rp))
	if n.inheritOrientation {
		n.orientation = common.NormalizeQuat(inv.Mul(wo))
	} else {
		n.orientation = wo
	}

	if root.byName == nil {
		root.byName = make(map[string]NodeID)
	}
	root.byName[n.name] = id
	root.children = append(root.children, id)
	n.parent = s.root
	n.parentNotified = false
	s.attachSubtree(id)
	s.needUpdate(n)
	return true
}

func (s *sceneImpl) RenameNode(id NodeID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.nodes.get(id)
	if n == nil {
		return false
	}
	if n.name == name {
		return true
	}
	if p := s.nodes.get(n.parent); p != nil {
		if _, taken := p.byName[name]; taken {
			return false
		}
		delete(p.byName, n.name)
		p.byName[name] = id
	}
	n.name = name
	return true
}

func (s *sceneImpl) NodeName(id NodeID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.name
	}
	return ""
}

func (s *sceneImpl) Child(parent NodeID, name string) NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.nodes.get(parent); p != nil {
		if id, ok := p.byName[name]; ok {
			return id
		}
	}
	return Nil
}

func (s *sceneImpl) Children(id NodeID) []NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return slices.Clone(n.children)
	}
	return nil
}

func (s *sceneImpl) Parent(id NodeID) NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.parent
	}
	return Nil
}

func (s *sceneImpl) Payload(id NodeID) Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.payload
	}
	return nil
}

func (s *sceneImpl) SetPosition(id NodeID, position mgl32.Vec3) {
	s.mutate(id, func(n *node) { n.position = position })
}

func (s *sceneImpl) Position(id NodeID) mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.position
	}
	return mgl32.Vec3{}
}

func (s *sceneImpl) Translate(id NodeID, delta mgl32.Vec3) {
	s.mutate(id, func(n *node) { n.position = n.position.Add(delta) })
}

func (s *sceneImpl) SetOrientation(id NodeID, orientation mgl32.Quat) {
	s.mutate(id, func(n *node) { n.orientation = common.NormalizeQuat(orientation) })
}

func (s *sceneImpl) Orientation(id NodeID) mgl32.Quat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.orientation
	}
	return mgl32.QuatIdent()
}

func (s *sceneImpl) Rotate(id NodeID, rotation mgl32.Quat) {
	s.mutate(id, func(n *node) { n.orientation = common.NormalizeQuat(n.orientation.Mul(rotation)) })
}

func (s *sceneImpl) SetInheritOrientation(id NodeID, inherit bool) {
	s.mutate(id, func(n *node) { n.inheritOrientation = inherit })
}

func (s *sceneImpl) SetLocalBounds(id NodeID, box common.AxisAlignedBox) {
	s.mutate(id, func(n *node) {
		n.localBounds = box
		n.customBounds = true
	})
}

func (s *sceneImpl) LocalBounds(id NodeID) common.AxisAlignedBox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.bounds()
	}
	return common.NullBox()
}

func (s *sceneImpl) SetStaticHint(id NodeID, static bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.nodes.get(id); n != nil {
		n.static = static
	}
}

func (s *sceneImpl) StaticHint(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.static
	}
	return false
}

func (s *sceneImpl) IsDirty(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.dirty()
	}
	return false
}

func (s *sceneImpl) WorldPosition(id NodeID) mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.worldPosition
	}
	return mgl32.Vec3{}
}

func (s *sceneImpl) WorldOrientation(id NodeID) mgl32.Quat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.worldOrientation
	}
	return mgl32.QuatIdent()
}

func (s *sceneImpl) WorldTransform(id NodeID) mgl32.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.worldTransform
	}
	return mgl32.Ident4()
}

func (s *sceneImpl) WorldBounds(id NodeID) common.AxisAlignedBox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.nodes.get(id); n != nil {
		return n.worldBounds
	}
	return common.NullBox()
}

func (s *sceneImpl) Walk(start NodeID, visit func(id NodeID) bool) {
	if visit == nil {
		return
	}
	s.mu.RLock()
	order := s.subtree(start)
	s.mu.RUnlock()

	for _, id := range order {
		if !visit(id) {
			return
		}
	}
}

func (s *sceneImpl) Update() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.cam.Update()
	s.updated = s.update(s.root)
	s.updateTime = time.Since(start)
	return s.updated
}

func (s *sceneImpl) Render() FrameStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	cam, lm, batcher := s.cam, s.ctx.Lights, s.ctx.Batcher

	lm.FindLightsInFrustum(cam)
	inFrustum := lm.InFrustum()
	clear(s.slotOf)
	for _, l := range inFrustum {
		s.slotOf[l] = batcher.AddLight(lightUpload(l))
	}

	s.visible = s.visible[:0]
	s.ctx.Octree.WalkAndCull(cam, func(id NodeID) {
		s.visible = append(s.visible, id)
	})

	s.jobs = s.jobs[:0]
	for _, id := range s.visible {
		n := s.nodes.get(id)
		if n == nil {
			continue
		}
		if p, ok := n.payload.(*RendrablePayload); ok {
			center, radius := n.worldBounds.Center(), n.worldBounds.Radius()
			if !n.worldBounds.IsFinite() {
				center, radius = n.worldPosition, float32(math.Inf(1))
			}
			s.jobs = append(s.jobs, lightJob{p: p, center: center, radius: radius})
		}
	}
	s.refreshLights(s.jobs)

	for _, id := range s.visible {
		n := s.nodes.get(id)
		if n == nil {
			continue
		}
		switch p := n.payload.(type) {
		case *RendrablePayload:
			p.slots = p.slots[:0]
			for _, l := range p.lights.Lights() {
				if slot, ok := s.slotOf[l]; ok {
					p.slots = append(p.slots, slot)
				}
			}
			batcher.AddToQueue(renderer.DrawItem{
				Shader:    p.Shader,
				Texture:   p.Texture,
				Material:  p.Material,
				Mesh:      p.Mesh,
				Transform: n.worldTransform,
				Lights:    p.slots,
			})
		case *EmitterPayload:
			if p.Emitter == nil {
				break
			}
			p.Emitter.Animate()
			if p.Emitter.Visible() {
				batcher.AddParticleEmitter(renderer.ParticleBatch{
					Shader:    p.Shader,
					Texture:   p.Texture,
					Vertices:  p.Emitter.Vertices(),
					Colors:    p.Emitter.Colors(),
					Transform: n.worldTransform,
				})
			}
		}
		if s.debugBounds {
			batcher.AddBox(n.worldBounds, s.debugColor)
		}
	}

	stats := FrameStats{
		Nodes:           s.attached,
		Updated:         s.updated,
		Visible:         len(s.visible),
		LightsInFrustum: len(inFrustum),
		LightVersion:    lm.Version(),
		UpdateTime:      s.updateTime,
	}
	stats.Render = batcher.Render(cam.ViewMatrix(), cam.ProjectionMatrix())
	stats.RenderTime = time.Since(start)
	if s.profiler != nil {
		s.profiler.Record(stats)
	}
	return stats
}

func (s *sceneImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lightPool != nil {
		s.lightPool.Stop()
		s.lightPool = nil
	}
}

// mutate applies a local change to id and schedules it for the next Update.
func (s *sceneImpl) mutate(id NodeID, change func(n *node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.nodes.get(id); n != nil {
		change(n)
		s.needUpdate(n)
	}
}

// detach unlinks child from parent after clearing the subtree's scene associations.
// Caller must hold the mutex.
func (s *sceneImpl) detach(parent, child NodeID) bool {
	p, c := s.nodes.get(parent), s.nodes.get(child)
	if p == nil || c == nil || c.parent != parent {
		return false
	}
	if c.attached {
		s.detachSubtree(child)
	}

	s.cancelUpdate(p, child)
	if i := slices.Index(p.children, child); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	delete(p.byName, c.name)
	c.parent = Nil
	c.parentNotified = false
	return true
}

// attachSubtree marks the subtree of id as part of the scene and registers its lights.
// Octree entries are created by the next Update. Caller must hold the mutex.
func (s *sceneImpl) attachSubtree(id NodeID) {
	for _, d := range s.subtree(id) {
		n := s.nodes.get(d)
		if n == nil || n.attached {
			continue
		}
		n.attached = true
		s.attached++
		if p, ok := n.payload.(*LightPayload); ok && p.Light != nil {
			s.ctx.Lights.AddLight(p.Light)
		}
	}
}

// detachSubtree removes the subtree of id from the octree and the light manager, top-down.
// Caller must hold the mutex.
func (s *sceneImpl) detachSubtree(id NodeID) {
	for _, d := range s.subtree(id) {
		n := s.nodes.get(d)
		if n == nil || !n.attached {
			continue
		}
		if n.cell != octree.NoCell {
			s.ctx.Octree.Remove(n.id, n.cell)
			n.cell = octree.NoCell
		}
		switch p := n.payload.(type) {
		case *LightPayload:
			if p.Light != nil && s.ctx.Lights.Light(p.Light.Name()) == p.Light {
				s.ctx.Lights.RemoveLight(p.Light.Name())
			}
		case *RendrablePayload:
			p.lights.Invalidate()
		}
		n.attached = false
		s.attached--
	}
}

// subtree lists id and its descendants breadth first. Caller must hold the mutex.
func (s *sceneImpl) subtree(id NodeID) []NodeID {
	if s.nodes.get(id) == nil {
		return nil
	}
	out := []NodeID{id}
	for i := 0; i < len(out); i++ {
		if n := s.nodes.get(out[i]); n != nil {
			out = append(out, n.children...)
		}
	}
	return out
}

// worldPose composes the local poses from the top ancestor down to n, so the result is
// current even when n is dirty. Caller must hold the mutex.
func (s *sceneImpl) worldPose(n *node) (mgl32.Vec3, mgl32.Quat) {
	var chain []*node
	for a := n; a != nil; a = s.nodes.get(a.parent) {
		chain = append(chain, a)
	}

	top := chain[len(chain)-1]
	wp, wo := top.position, top.orientation
	for i := len(chain) - 2; i >= 0; i-- {
		c := chain[i]
		wp = wo.Rotate(c.position).Add(wp)
		if c.inheritOrientation {
			wo = wo.Mul(c.orientation)
		} else {
			wo = c.orientation
		}
	}
	return wp, common.NormalizeQuat(wo)
}

// refreshLights recomputes stale affecting-light caches, on the worker pool when the frame is
// large enough. Every job writes only its own cache; the light manager is read under its
// read lock. Caller must hold the mutex.
func (s *sceneImpl) refreshLights(jobs []lightJob) {
	lm := s.ctx.Lights
	if s.lightPool == nil || len(jobs) < s.parallelThreshold {
		for _, j := range jobs {
			j.p.lights.Refresh(lm, j.center, j.radius)
		}
		return
	}

	// A WaitGroup provides the per-frame barrier; pool.Wait() blocks until workers idle-exit.
	chunk := (len(jobs) + s.lightWorkers - 1) / s.lightWorkers
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(jobs); start += chunk {
		part := jobs[start:min(start+chunk, len(jobs))]
		wg.Add(1)
		id := taskID
		taskID++
		s.lightPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, j := range part {
					j.p.lights.Refresh(lm, j.center, j.radius)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func lightUpload(l light.Light) renderer.LightUpload {
	c, lin, q := l.Attenuation()
	return renderer.LightUpload{
		Position:    l.Position(),
		Direction:   l.Direction(),
		Directional: l.Type() == light.LightTypeDirectional,
		Ambient:     l.Ambient(),
		Diffuse:     l.Diffuse(),
		Specular:    l.Specular(),
		Constant:    c,
		Linear:      lin,
		Quadratic:   q,
	}
}
