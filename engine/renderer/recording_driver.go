package renderer

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Verbs recorded by RecordingDriver.
const (
	VerbActivateShader   = "activate_shader"
	VerbDeactivateShader = "deactivate_shader"
	VerbBindTexture      = "bind_texture"
	VerbUnbindTexture    = "unbind_texture"
	VerbBindMaterial     = "bind_material"
	VerbUnbindMaterial   = "unbind_material"
	VerbBindMesh         = "bind_mesh"
	VerbUnbindMesh       = "unbind_mesh"

	VerbDrawElements  = "draw_elements"
	VerbModelView     = "model_view"
	VerbProjection    = "projection"
	VerbApplyMaterial = "apply_material"
	VerbCreateLight   = "create_light"
	VerbEnableLights  = "enable_lights"
	VerbDrawParticles = "draw_particles"
	VerbDrawLine      = "draw_line"
)

// Call is one command received by a RecordingDriver. Only the fields relevant to Verb are set.
type Call struct {
	Verb string
	ID   uint64

	Matrix    mgl32.Mat4
	Colors    [4]mgl32.Vec4
	Points    [2]mgl32.Vec3
	Light     LightUpload
	Index     int
	Slots     []int
	Count     int
	Offset    uint32
	Primitive Primitive
}

// RecordingDriver is a headless Driver that keeps every command it receives in order.
// Used for tests, tooling and running the scene core without a graphics API.
// Thread-safe for concurrent access.
type RecordingDriver struct {
	mu     sync.Mutex
	calls  []Call
	logger *slog.Logger
}

var (
	_ Driver   = &RecordingDriver{}
	_ Recorder = &RecordingDriver{}
)

// NewRecordingDriver creates an empty RecordingDriver.
//
// Parameters:
//   - logger: receives every command at debug level, nil disables logging
//
// Returns:
//   - *RecordingDriver: the new driver
func NewRecordingDriver(logger *slog.Logger) *RecordingDriver {
	if logger != nil {
		logger = logger.With("component", "recording_driver")
	}
	return &RecordingDriver{logger: logger}
}

func (r *RecordingDriver) add(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Debug("driver call", "verb", c.Verb, "id", c.ID)
	}
}

// Record implements Recorder.
func (r *RecordingDriver) Record(verb string, id uint64) {
	r.add(Call{Verb: verb, ID: id})
}

func (r *RecordingDriver) DrawElements(count int, offset uint32, primitive Primitive) {
	r.add(Call{Verb: VerbDrawElements, Count: count, Offset: offset, Primitive: primitive})
}

func (r *RecordingDriver) ApplyModelViewTransform(transform mgl32.Mat4) {
	r.add(Call{Verb: VerbModelView, Matrix: transform})
}

func (r *RecordingDriver) ApplyProjectionTransform(transform mgl32.Mat4) {
	r.add(Call{Verb: VerbProjection, Matrix: transform})
}

func (r *RecordingDriver) ApplyMaterial(ambient, diffuse, specular, emission mgl32.Vec4) {
	r.add(Call{Verb: VerbApplyMaterial, Colors: [4]mgl32.Vec4{ambient, diffuse, specular, emission}})
}

func (r *RecordingDriver) CreateLight(index int, light LightUpload) {
	r.add(Call{Verb: VerbCreateLight, Index: index, Light: light})
}

func (r *RecordingDriver) EnableLights(slots []int) {
	r.add(Call{Verb: VerbEnableLights, Slots: slices.Clone(slots)})
}

func (r *RecordingDriver) DrawParticles(vertices, colors []float32) {
	r.add(Call{Verb: VerbDrawParticles, Count: len(vertices) / 3})
}

func (r *RecordingDriver) DrawLine(c1 mgl32.Vec4, p1 mgl32.Vec3, c2 mgl32.Vec4, p2 mgl32.Vec3) {
	r.add(Call{Verb: VerbDrawLine, Colors: [4]mgl32.Vec4{c1, c2}, Points: [2]mgl32.Vec3{p1, p2}})
}

// Calls returns a copy of the recorded commands in order.
func (r *RecordingDriver) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Verbs returns the recorded verbs in order.
func (r *RecordingDriver) Verbs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Verb
	}
	return out
}

// Count returns how many commands with the given verb were recorded.
//
// Parameters:
//   - verb: the verb to count
//
// Returns:
//   - int: the number of matching commands
func (r *RecordingDriver) Count(verb string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Verb == verb {
			n++
		}
	}
	return n
}

// Reset drops every recorded command.
func (r *RecordingDriver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
}
