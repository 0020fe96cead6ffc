package material

import (
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// material is the implementation of the Material interface.
type material struct {
	id       uint64
	name     string
	ambient  mgl32.Vec4
	diffuse  mgl32.Vec4
	specular mgl32.Vec4
	emission mgl32.Vec4
}

// Material is a renderer.Material holding fixed surface colors. Binding it applies the
// colors through Driver.ApplyMaterial.
//
// Colors are set at construction and read-only through this interface, so a material can
// be shared between draws and goroutines.
type Material interface {
	renderer.Material

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Ambient retrieves the ambient RGBA reflectance.
	Ambient() mgl32.Vec4

	// Diffuse retrieves the diffuse RGBA reflectance.
	Diffuse() mgl32.Vec4

	// Specular retrieves the specular RGBA reflectance.
	Specular() mgl32.Vec4

	// Emission retrieves the emitted RGBA color.
	Emission() mgl32.Vec4
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Defaults to a dark grey ambient, white diffuse, black specular and no emission.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		id:       renderer.NewHandleID(),
		ambient:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
		diffuse:  mgl32.Vec4{0.8, 0.8, 0.8, 1},
		specular: mgl32.Vec4{0, 0, 0, 1},
		emission: mgl32.Vec4{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) ID() uint64 {
	return m.id
}

func (m *material) Name() string {
	return m.name
}

func (m *material) String() string {
	return m.name
}

func (m *material) Ambient() mgl32.Vec4 {
	return m.ambient
}

func (m *material) Diffuse() mgl32.Vec4 {
	return m.diffuse
}

func (m *material) Specular() mgl32.Vec4 {
	return m.specular
}

func (m *material) Emission() mgl32.Vec4 {
	return m.emission
}

func (m *material) Bind(d renderer.Driver) {
	if r, ok := d.(renderer.Recorder); ok {
		r.Record(renderer.VerbBindMaterial, m.id)
	}
	d.ApplyMaterial(m.ambient, m.diffuse, m.specular, m.emission)
}

func (m *material) Unbind(d renderer.Driver) {
	if r, ok := d.(renderer.Recorder); ok {
		r.Record(renderer.VerbUnbindMaterial, m.id)
	}
}
