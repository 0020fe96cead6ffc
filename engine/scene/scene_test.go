package scene

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/particle"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitBox = common.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

func newTestCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithInternals(mgl32.DegToRad(60), 1, 1, 100),
		camera.WithLookAt(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
	)
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *renderer.RecordingDriver) {
	t.Helper()
	d := renderer.NewRecordingDriver(nil)
	s := NewScene("test", newTestCamera(), Context{Batcher: renderer.NewStateBatcher(d)}, options...)
	t.Cleanup(s.Close)
	return s, d
}

func cube() *RendrablePayload {
	return NewRendrablePayload(renderer.NewMesh("cube", unitBox, 36, renderer.PrimitiveTriangles), nil, nil, nil)
}

// attach creates a node below parent and fails the test if attaching does not succeed.
func attach(t *testing.T, s Scene, parent NodeID, name string, payload Payload, position mgl32.Vec3) NodeID {
	t.Helper()
	id := s.CreateNode(name, payload)
	s.SetPosition(id, position)
	require.True(t, s.AttachChild(parent, id))
	return id
}

func assertVec(t *testing.T, want, have mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], have[:], 1e-4, "have %v, want %v", have, want)
}

func TestNewScenePanicsWithoutCamera(t *testing.T) {
	assert.PanicsWithValue(t, "scene: NewScene requires a non-nil Camera", func() {
		NewScene("x", nil, Context{})
	})
}

func TestNewSceneFillsContext(t *testing.T) {
	s := NewScene("x", newTestCamera(), Context{})
	defer s.Close()
	ctx := s.Context()
	assert.NotNil(t, ctx.Octree)
	assert.NotNil(t, ctx.Lights)
	assert.NotNil(t, ctx.Batcher)
	assert.IsType(t, &renderer.RecordingDriver{}, ctx.Batcher.Driver())
	assert.Equal(t, "x", s.NodeName(s.Root()))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Active())
}

func TestChildWorldPosition(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "a", nil, mgl32.Vec3{1, 0, 0})
	b := attach(t, s, a, "b", nil, mgl32.Vec3{0, 1, 0})

	s.Update()
	assertVec(t, mgl32.Vec3{1, 1, 0}, s.WorldPosition(b))

	s.SetOrientation(a, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 0, 1}))
	s.Update()
	assertVec(t, mgl32.Vec3{0, 0, 0}, s.WorldPosition(b))

	s.SetInheritOrientation(b, false)
	s.Update()
	assert.True(t, s.WorldOrientation(b).ApproxEqual(mgl32.QuatIdent()))
}

func TestWorldTransformComposition(t *testing.T) {
	s, _ := newTestScene(t)
	rng := rand.New(rand.NewPCG(7, 11))
	randVec := func() mgl32.Vec3 {
		return mgl32.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
	}

	chain := []NodeID{s.Root()}
	for i := 0; i < 6; i++ {
		id := attach(t, s, chain[len(chain)-1], "n", cube(), randVec())
		s.SetOrientation(id, mgl32.QuatRotate(rng.Float32()*6, randVec().Normalize()))
		chain = append(chain, id)
	}
	s.Update()

	for i := 1; i < len(chain); i++ {
		parent, child := chain[i-1], chain[i]
		want := s.WorldTransform(parent).Mul4(common.ComposeTransform(s.Position(child), s.Orientation(child)))
		assert.True(t, want.ApproxEqualThreshold(s.WorldTransform(child), 1e-3), "depth %d", i)

		box := s.WorldBounds(child)
		assert.True(t, box.Contains(s.WorldPosition(child)), "world bounds follow the node at depth %d", i)
	}
}

func TestNeedUpdateIsIdempotent(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "a", nil, mgl32.Vec3{})
	b := attach(t, s, a, "b", nil, mgl32.Vec3{})
	c := attach(t, s, b, "c", nil, mgl32.Vec3{})
	assert.Equal(t, 4, s.Update())
	assert.False(t, s.IsDirty(s.Root()))
	assert.Zero(t, s.Update(), "nothing changed")

	s.SetPosition(c, mgl32.Vec3{1, 0, 0})
	assert.True(t, s.IsDirty(a), "ancestors hold the targeted refresh")
	assert.Equal(t, 1, s.Update())

	for i := 0; i < 5; i++ {
		s.SetPosition(c, mgl32.Vec3{2, 0, 0})
	}
	assert.Equal(t, 1, s.Update(), "repeated mutation refreshes the node once")

	s.Translate(b, mgl32.Vec3{0, 1, 0})
	s.SetPosition(c, mgl32.Vec3{3, 0, 0})
	assert.Equal(t, 2, s.Update(), "a moved parent refreshes its subtree")
	assertVec(t, mgl32.Vec3{3, 1, 0}, s.WorldPosition(c))
	assert.False(t, s.IsDirty(c))
}

func TestDuplicateNamesAreIgnored(t *testing.T) {
	s, _ := newTestScene(t)
	first := attach(t, s, s.Root(), "x", nil, mgl32.Vec3{})
	second := s.CreateNode("x", nil)

	assert.False(t, s.AttachChild(s.Root(), second))
	assert.Equal(t, first, s.Child(s.Root(), "x"))
	assert.Equal(t, Nil, s.Parent(second))
	assert.Equal(t, []NodeID{first}, s.Children(s.Root()))

	require.True(t, s.RenameNode(second, "y"))
	require.True(t, s.AttachChild(s.Root(), second))
	assert.False(t, s.RenameNode(second, "x"), "sibling already uses the name")
	assert.True(t, s.RenameNode(first, "z"))
	assert.Equal(t, first, s.Child(s.Root(), "z"))
	assert.Equal(t, Nil, s.Child(s.Root(), "x"))
}

func TestUnnamedNodesGetUniqueNames(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "", nil, mgl32.Vec3{})
	b := attach(t, s, s.Root(), "", nil, mgl32.Vec3{})

	assert.NotEqual(t, s.NodeName(a), s.NodeName(b))
	assert.Equal(t, fmt.Sprintf("node_%d", uint64(a)), s.NodeName(a))
	assert.Equal(t, b, s.Child(s.Root(), s.NodeName(b)))
}

func TestAttachChildRejectsCycles(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "a", nil, mgl32.Vec3{})
	b := attach(t, s, a, "b", nil, mgl32.Vec3{})

	require.True(t, s.DetachChild(s.Root(), a))
	assert.False(t, s.AttachChild(b, a))
	assert.False(t, s.AttachChild(a, s.Root()))
	assert.False(t, s.AttachChild(a, b), "already has a parent")
	assert.False(t, s.DetachChild(s.Root(), a), "not a child")
}

func TestDetachUnregisters(t *testing.T) {
	s, _ := newTestScene(t)
	ctx := s.Context()

	group := attach(t, s, s.Root(), "group", nil, mgl32.Vec3{})
	attach(t, s, group, "mesh", cube(), mgl32.Vec3{})
	lamp := light.NewLight("lamp", light.LightTypePoint, light.WithRange(5))
	attach(t, s, group, "lamp", NewLightPayload(lamp), mgl32.Vec3{0, 3, 0})
	s.Update()

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 1, ctx.Octree.Len())
	assert.Same(t, lamp, ctx.Lights.Light("lamp"))
	assertVec(t, mgl32.Vec3{0, 3, 0}, lamp.Position())

	require.True(t, s.DetachChild(s.Root(), group))
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, ctx.Octree.Len())
	assert.Nil(t, ctx.Lights.Light("lamp"))
	assert.Zero(t, s.Update())

	require.True(t, s.AttachChild(s.Root(), group))
	s.Update()
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 1, ctx.Octree.Len())
	assert.NotNil(t, ctx.Lights.Light("lamp"))
}

func TestDestroyNode(t *testing.T) {
	s, _ := newTestScene(t)
	ctx := s.Context()
	a := attach(t, s, s.Root(), "a", cube(), mgl32.Vec3{})
	b := attach(t, s, a, "b", cube(), mgl32.Vec3{5, 0, 0})
	s.Update()
	require.Equal(t, 2, ctx.Octree.Len())

	assert.False(t, s.DestroyNode(s.Root()))
	require.True(t, s.DestroyNode(a))
	assert.False(t, s.DestroyNode(a), "stale ID")
	assert.False(t, s.Valid(a))
	assert.False(t, s.Valid(b))
	assert.Zero(t, ctx.Octree.Len())
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.Children(s.Root()))

	// Stale IDs are ignored even once their slot is reused.
	c := s.CreateNode("c", nil)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
	s.SetPosition(b, mgl32.Vec3{9, 9, 9})
	assert.Equal(t, mgl32.Vec3{}, s.Position(c))
	assert.Equal(t, "", s.NodeName(b))
}

func TestSeparateFromParent(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "a", nil, mgl32.Vec3{5, 0, 0})
	s.SetOrientation(a, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	b := attach(t, s, a, "b", cube(), mgl32.Vec3{0, 0, 1})
	s.Update()
	wantPos, wantOri := s.WorldPosition(b), s.WorldOrientation(b)

	require.True(t, s.SeparateFromParent(b))
	assert.Equal(t, s.Root(), s.Parent(b))
	assert.True(t, s.SeparateFromParent(b), "already below the root")
	s.Update()

	assertVec(t, wantPos, s.WorldPosition(b))
	assert.True(t, wantOri.ApproxEqualThreshold(s.WorldOrientation(b), 1e-4))
	assert.Equal(t, 1, s.Context().Octree.Len())

	dup := s.CreateNode("a", nil)
	require.True(t, s.AttachChild(b, dup))
	assert.False(t, s.SeparateFromParent(dup), "root already has a child named a")
}

func TestWalkIsBreadthFirst(t *testing.T) {
	s, _ := newTestScene(t)
	a := attach(t, s, s.Root(), "a", nil, mgl32.Vec3{})
	b := attach(t, s, s.Root(), "b", nil, mgl32.Vec3{})
	a1 := attach(t, s, a, "a1", nil, mgl32.Vec3{})
	b1 := attach(t, s, b, "b1", nil, mgl32.Vec3{})
	a2 := attach(t, s, a1, "a2", nil, mgl32.Vec3{})

	var order []NodeID
	s.Walk(s.Root(), func(id NodeID) bool {
		order = append(order, id)
		return true
	})
	assert.Equal(t, []NodeID{s.Root(), a, b, a1, b1, a2}, order)

	order = order[:0]
	s.Walk(a, func(id NodeID) bool {
		order = append(order, id)
		return len(order) < 2
	})
	assert.Equal(t, []NodeID{a, a1}, order)
}

func TestRenderCullsAgainstCamera(t *testing.T) {
	s, d := newTestScene(t)
	attach(t, s, s.Root(), "near", cube(), mgl32.Vec3{})
	attach(t, s, s.Root(), "behind_far", cube(), mgl32.Vec3{0, 0, -200})
	attach(t, s, s.Root(), "behind_eye", cube(), mgl32.Vec3{0, 0, 200})
	s.Update()

	stats := s.Render()
	assert.Equal(t, 4, stats.Nodes)
	assert.Equal(t, 1, stats.Visible)
	assert.Equal(t, 1, stats.Render.Draws)
	assert.Equal(t, 1, d.Count(renderer.VerbDrawElements))
}

func TestRenderAssignsAffectingLights(t *testing.T) {
	s, d := newTestScene(t)
	near := cube()
	far := cube()
	attach(t, s, s.Root(), "near", near, mgl32.Vec3{})
	attach(t, s, s.Root(), "far", far, mgl32.Vec3{0, 0, -40})
	lamp := light.NewLight("lamp", light.LightTypePoint, light.WithRange(5))
	attach(t, s, s.Root(), "lamp", NewLightPayload(lamp), mgl32.Vec3{0, 0, 2})
	s.Update()

	stats := s.Render()
	assert.Equal(t, 1, stats.LightsInFrustum)
	assert.Equal(t, 2, stats.Render.Draws)
	assert.Equal(t, []light.Light{lamp}, near.AffectingLights())
	assert.Empty(t, far.AffectingLights())

	var slots [][]int
	for _, c := range d.Calls() {
		if c.Verb == renderer.VerbEnableLights {
			slots = append(slots, c.Slots)
		}
	}
	assert.ElementsMatch(t, [][]int{{0}, nil}, slots)

	created := d.Calls()
	for _, c := range created {
		if c.Verb == renderer.VerbCreateLight {
			// Eye at (0, 0, 10): the lamp is 8 units in front of the camera.
			assertVec(t, mgl32.Vec3{0, 0, -8}, c.Light.Position)
		}
	}
}

func TestRenderRefreshesLightsInParallel(t *testing.T) {
	s, _ := newTestScene(t, WithLightWorkers(4, 1))
	sun := light.NewLight("sun", light.LightTypeDirectional)
	attach(t, s, s.Root(), "sun", NewLightPayload(sun), mgl32.Vec3{})

	payloads := make([]*RendrablePayload, 50)
	for i := range payloads {
		payloads[i] = cube()
		attach(t, s, s.Root(), string(rune('A'+i)), payloads[i], mgl32.Vec3{float32(i%5) - 2, float32(i/5) - 5, -20})
	}
	s.Update()

	stats := s.Render()
	assert.Equal(t, 50, stats.Render.Draws)
	for i, p := range payloads {
		assert.Equal(t, []light.Light{sun}, p.AffectingLights(), "payload %d", i)
	}
	assert.Equal(t, 1, stats.Render.LightSwitches)
}

func TestRenderAnimatesEmitters(t *testing.T) {
	s, d := newTestScene(t)
	e := particle.NewEmitter(10, particle.WithSeed(1), particle.WithBounds(2, 2, 2))
	e.Start()
	e.Show(true)
	attach(t, s, s.Root(), "sparks", NewEmitterPayload(e, renderer.NewShader("sprite"), nil), mgl32.Vec3{})
	s.Update()

	stats := s.Render()
	assert.Equal(t, 1, stats.Render.ParticleBatches)
	assert.Equal(t, 1, d.Count(renderer.VerbDrawParticles))
	assert.NotEqual(t, make([]float32, 30), e.Vertices(), "render advanced the simulation")

	e.Show(false)
	assert.Zero(t, s.Render().Render.ParticleBatches)
}

func TestRenderDebugBounds(t *testing.T) {
	s, _ := newTestScene(t, WithDebugBounds(mgl32.Vec4{0, 1, 0, 1}))
	attach(t, s, s.Root(), "box", cube(), mgl32.Vec3{})
	s.Update()
	assert.Equal(t, 12, s.Render().Render.Lines)
}

func TestRenderFeedsProfiler(t *testing.T) {
	now := time.Unix(0, 0)
	p := profiler.NewProfiler(profiler.WithClock(func() time.Time { return now }), profiler.WithMemStats(false))
	s, _ := newTestScene(t, WithProfiler(p))
	attach(t, s, s.Root(), "box", cube(), mgl32.Vec3{})
	s.Update()
	s.Render()
	s.Render()

	now = now.Add(time.Second)
	require.True(t, p.Tick())
	summary, _ := p.Last()
	assert.InDelta(t, 1.0, summary.AvgDraws, 1e-9)
	assert.InDelta(t, 1.0, summary.AvgVisible, 1e-9)
}

func TestWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Octree.MaxDepth = 2
	cfg.Lights.MaxAffecting = 3
	s := NewScene("cfg", newTestCamera(), Context{}, WithConfig(cfg), WithActive(false))
	defer s.Close()

	assert.Equal(t, 2, s.Context().Octree.MaxDepth())
	assert.Equal(t, 3, s.Context().Lights.MaxAffectingLights())
	assert.False(t, s.Active())
}
