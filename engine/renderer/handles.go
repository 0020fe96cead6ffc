package renderer

import "github.com/Carmen-Shannon/oxy-scene/common"

// Recorder receives resource state changes from the basic handles of this package.
// Drivers that track bind state, like RecordingDriver, implement it.
type Recorder interface {
	// Record notes a state change.
	//
	// Parameters:
	//   - verb: what happened, one of the Verb constants
	//   - id: the handle identity
	Record(verb string, id uint64)
}

func record(d Driver, verb string, id uint64) {
	if r, ok := d.(Recorder); ok {
		r.Record(verb, id)
	}
}

type basicShader struct {
	id   uint64
	name string
}

var _ Shader = &basicShader{}

// NewShader creates a Shader handle with no program attached. Activation is reported to
// drivers implementing Recorder.
//
// Parameters:
//   - name: the shader name
//
// Returns:
//   - Shader: the new handle
func NewShader(name string) Shader {
	return &basicShader{id: NewHandleID(), name: name}
}

func (s *basicShader) ID() uint64 { return s.id }

func (s *basicShader) String() string { return s.name }

func (s *basicShader) Activate(d Driver) { record(d, VerbActivateShader, s.id) }

func (s *basicShader) Deactivate(d Driver) { record(d, VerbDeactivateShader, s.id) }

type basicTexture struct {
	id   uint64
	name string
}

var _ Texture = &basicTexture{}

// NewTexture creates a Texture handle with no image attached. Binding is reported to
// drivers implementing Recorder.
//
// Parameters:
//   - name: the texture name
//
// Returns:
//   - Texture: the new handle
func NewTexture(name string) Texture {
	return &basicTexture{id: NewHandleID(), name: name}
}

func (t *basicTexture) ID() uint64 { return t.id }

func (t *basicTexture) String() string { return t.name }

func (t *basicTexture) Bind(d Driver) { record(d, VerbBindTexture, t.id) }

func (t *basicTexture) Unbind(d Driver) { record(d, VerbUnbindTexture, t.id) }

type basicMesh struct {
	id        uint64
	name      string
	bounds    common.AxisAlignedBox
	count     int
	primitive Primitive
}

var _ Mesh = &basicMesh{}

// NewMesh creates a Mesh handle drawing count indices from offset 0.
//
// Parameters:
//   - name: the mesh name
//   - bounds: the model-space bounding box
//   - count: the number of indices
//   - primitive: how the indices are assembled
//
// Returns:
//   - Mesh: the new handle
func NewMesh(name string, bounds common.AxisAlignedBox, count int, primitive Primitive) Mesh {
	return &basicMesh{id: NewHandleID(), name: name, bounds: bounds, count: count, primitive: primitive}
}

func (m *basicMesh) ID() uint64 { return m.id }

func (m *basicMesh) String() string { return m.name }

func (m *basicMesh) Bounds() common.AxisAlignedBox { return m.bounds }

func (m *basicMesh) Bind(d Driver) { record(d, VerbBindMesh, m.id) }

func (m *basicMesh) Unbind(d Driver) { record(d, VerbUnbindMesh, m.id) }

func (m *basicMesh) Draw(d Driver) {
	d.DrawElements(m.count, 0, m.primitive)
}
