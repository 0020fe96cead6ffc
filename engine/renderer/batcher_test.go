package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitBox = common.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})

// fakeMaterial applies a single color.
type fakeMaterial struct {
	id    uint64
	color mgl32.Vec4
}

func (m *fakeMaterial) ID() uint64 { return m.id }

func (m *fakeMaterial) Bind(d Driver) {
	record(d, VerbBindMaterial, m.id)
	d.ApplyMaterial(m.color, m.color, m.color, mgl32.Vec4{})
}

func (m *fakeMaterial) Unbind(d Driver) { record(d, VerbUnbindMaterial, m.id) }

func filter(calls []Call, verbs ...string) []Call {
	var out []Call
	for _, c := range calls {
		for _, v := range verbs {
			if c.Verb == v {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func TestNewStateBatcherPanicsWithoutDriver(t *testing.T) {
	assert.PanicsWithValue(t, "renderer: NewStateBatcher requires a driver", func() {
		NewStateBatcher(nil)
	})
}

func TestRenderSingleDraw(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d, WithCapacity(8))
	require.Same(t, d, b.Driver())

	require.True(t, b.AddToQueue(DrawItem{
		Shader:    NewShader("flat"),
		Mesh:      NewMesh("cube", unitBox, 36, PrimitiveTriangles),
		Transform: mgl32.Ident4(),
	}))

	stats := b.Render(mgl32.Ident4(), mgl32.Ident4())
	assert.Equal(t, []string{
		VerbProjection,
		VerbActivateShader,
		VerbBindMesh,
		VerbEnableLights,
		VerbModelView,
		VerbDrawElements,
		VerbUnbindMesh,
		VerbDeactivateShader,
	}, d.Verbs())
	assert.Equal(t, 1, stats.Draws)

	draw := filter(d.Calls(), VerbDrawElements)[0]
	assert.Equal(t, 36, draw.Count)
	assert.Equal(t, PrimitiveTriangles, draw.Primitive)
}

func TestRenderGroupsByShader(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	first, second := NewShader("first"), NewShader("second")
	mesh := NewMesh("cube", unitBox, 36, PrimitiveTriangles)

	for _, s := range []Shader{second, first, second, first} {
		b.AddToQueue(DrawItem{Shader: s, Mesh: mesh, Transform: mgl32.Ident4()})
	}
	stats := b.Render(mgl32.Ident4(), mgl32.Ident4())

	shaderCalls := filter(d.Calls(), VerbActivateShader, VerbDeactivateShader)
	require.Len(t, shaderCalls, 4)
	assert.Equal(t, Call{Verb: VerbActivateShader, ID: first.ID()}, shaderCalls[0])
	assert.Equal(t, Call{Verb: VerbDeactivateShader, ID: first.ID()}, shaderCalls[1])
	assert.Equal(t, Call{Verb: VerbActivateShader, ID: second.ID()}, shaderCalls[2])
	assert.Equal(t, Call{Verb: VerbDeactivateShader, ID: second.ID()}, shaderCalls[3])

	assert.Equal(t, 4, stats.Draws)
	assert.Equal(t, 2, stats.ShaderSwitches)
	assert.Equal(t, 1, stats.MeshSwitches)
	assert.Equal(t, 1, d.Count(VerbBindMesh))
	assert.Equal(t, 1, stats.LightSwitches)
}

func TestRenderNilStateIsValid(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	tex := NewTexture("bricks")
	mat := &fakeMaterial{id: NewHandleID(), color: mgl32.Vec4{1, 0, 0, 1}}
	mesh := NewMesh("cube", unitBox, 36, PrimitiveTriangles)

	b.AddToQueue(DrawItem{Texture: tex, Material: mat, Mesh: mesh, Transform: mgl32.Ident4()})
	b.AddToQueue(DrawItem{Mesh: mesh, Transform: mgl32.Ident4()})
	stats := b.Render(mgl32.Ident4(), mgl32.Ident4())

	assert.Equal(t, 2, stats.Draws)
	assert.Zero(t, d.Count(VerbActivateShader))
	// The untextured draw sorts first, then the texture and material are bound and
	// released at the end of the frame.
	assert.Equal(t, []string{VerbBindTexture, VerbBindMaterial, VerbUnbindTexture, VerbUnbindMaterial},
		verbsOf(filter(d.Calls(), VerbBindTexture, VerbUnbindTexture, VerbBindMaterial, VerbUnbindMaterial)))
	assert.Equal(t, 1, d.Count(VerbApplyMaterial))
}

func TestAddToQueueRejectsNilMesh(t *testing.T) {
	b := NewStateBatcher(NewRecordingDriver(nil))
	assert.False(t, b.AddToQueue(DrawItem{Shader: NewShader("s")}))
	assert.Zero(t, b.Len())
	assert.False(t, b.AddParticleEmitter(ParticleBatch{}))
}

func TestRenderDrainsQueues(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	b.AddToQueue(DrawItem{Mesh: NewMesh("m", unitBox, 3, PrimitiveTriangles), Transform: mgl32.Ident4()})
	b.AddLight(LightUpload{})
	b.AddLine(Line{To: mgl32.Vec3{1, 0, 0}})
	b.AddParticleEmitter(ParticleBatch{Vertices: []float32{0, 0, 0}, Colors: []float32{1, 1, 1, 1}, Transform: mgl32.Ident4()})
	require.Equal(t, 1, b.Len())

	first := b.Render(mgl32.Ident4(), mgl32.Ident4())
	assert.Equal(t, RenderStats{Draws: 1, Lights: 1, ParticleBatches: 1, Lines: 1, MeshSwitches: 1, LightSwitches: 1}, first)
	assert.Zero(t, b.Len())

	d.Reset()
	second := b.Render(mgl32.Ident4(), mgl32.Ident4())
	assert.Equal(t, RenderStats{}, second)
	assert.Equal(t, []string{VerbProjection}, d.Verbs())

	var total RenderStats
	total.Add(first)
	total.Add(first)
	assert.Equal(t, 2, total.Draws)
}

func TestClearDropsQueues(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	b.AddToQueue(DrawItem{Mesh: NewMesh("m", unitBox, 3, PrimitiveTriangles)})
	b.Clear()
	assert.Zero(t, b.Len())
	assert.Equal(t, RenderStats{}, b.Render(mgl32.Ident4(), mgl32.Ident4()))
}

func TestRenderKeepsSubmissionOrderWithinState(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	s := NewShader("s")
	mesh := NewMesh("m", unitBox, 3, PrimitiveTriangles)

	for i := 0; i < 5; i++ {
		b.AddToQueue(DrawItem{Shader: s, Mesh: mesh, Transform: mgl32.Translate3D(float32(i), 0, 0)})
	}
	b.Render(mgl32.Ident4(), mgl32.Ident4())

	mv := filter(d.Calls(), VerbModelView)
	require.Len(t, mv, 5)
	for i, c := range mv {
		assert.Equal(t, float32(i), c.Matrix.Col(3).X())
	}
}

func TestRenderUploadsLightsInViewSpace(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	view := mgl32.Translate3D(0, 0, -10)

	slot := b.AddLight(LightUpload{Position: mgl32.Vec3{1, 2, 3}, Direction: mgl32.Vec3{0, -1, 0}})
	assert.Equal(t, 0, slot)
	assert.Equal(t, 1, b.AddLight(LightUpload{Directional: true, Direction: mgl32.Vec3{0, 0, -1}}))

	mesh := NewMesh("m", unitBox, 3, PrimitiveTriangles)
	b.AddToQueue(DrawItem{Mesh: mesh, Transform: mgl32.Ident4(), Lights: []int{0, 1}})
	b.AddToQueue(DrawItem{Mesh: mesh, Transform: mgl32.Ident4(), Lights: []int{0, 1}})
	b.AddToQueue(DrawItem{Mesh: mesh, Transform: mgl32.Ident4(), Lights: []int{1}})
	stats := b.Render(view, mgl32.Ident4())

	lights := filter(d.Calls(), VerbCreateLight)
	require.Len(t, lights, 2)
	assert.Equal(t, 0, lights[0].Index)
	assert.InDeltaSlice(t, []float32{1, 2, -7}, lights[0].Light.Position[:], 1e-5)
	assert.InDeltaSlice(t, []float32{0, -1, 0}, lights[0].Light.Direction[:], 1e-5)

	enables := filter(d.Calls(), VerbEnableLights)
	require.Len(t, enables, 2)
	assert.Equal(t, []int{0, 1}, enables[0].Slots)
	assert.Equal(t, []int{1}, enables[1].Slots)
	assert.Equal(t, 2, stats.LightSwitches)

	// Lights are created before the first draw.
	verbs := d.Verbs()
	assert.Less(t, indexOf(verbs, VerbCreateLight), indexOf(verbs, VerbDrawElements))
}

func TestRenderParticlesAfterMeshes(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	meshShader, sprite := NewShader("mesh"), NewShader("sprite")

	b.AddParticleEmitter(ParticleBatch{Shader: sprite, Vertices: make([]float32, 9), Colors: make([]float32, 12), Transform: mgl32.Ident4()})
	b.AddToQueue(DrawItem{Shader: meshShader, Mesh: NewMesh("m", unitBox, 3, PrimitiveTriangles), Transform: mgl32.Ident4()})
	stats := b.Render(mgl32.Ident4(), mgl32.Ident4())

	verbs := d.Verbs()
	assert.Less(t, indexOf(verbs, VerbDrawElements), indexOf(verbs, VerbDrawParticles))
	assert.Equal(t, VerbDeactivateShader, verbs[len(verbs)-1])
	assert.Equal(t, 2, stats.ShaderSwitches)
	assert.Equal(t, 3, filter(d.Calls(), VerbDrawParticles)[0].Count)
}

func TestAddBox(t *testing.T) {
	d := NewRecordingDriver(nil)
	b := NewStateBatcher(d)
	red := mgl32.Vec4{1, 0, 0, 1}

	b.AddBox(common.NullBox(), red)
	b.AddBox(common.InfiniteBox(), red)
	b.AddBox(unitBox, red)
	stats := b.Render(mgl32.Ident4(), mgl32.Ident4())
	assert.Equal(t, 12, stats.Lines)

	for _, c := range filter(d.Calls(), VerbDrawLine) {
		edge := c.Points[1].Sub(c.Points[0])
		assert.InDelta(t, 2, edge.Len(), 1e-6, "every edge spans one axis of the box")
		assert.Equal(t, red, c.Colors[0])
	}
}

func verbsOf(calls []Call) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Verb
	}
	return out
}

func indexOf(verbs []string, verb string) int {
	for i, v := range verbs {
		if v == verb {
			return i
		}
	}
	return -1
}
