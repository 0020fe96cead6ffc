package renderer

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Primitive selects how DrawElements assembles vertices.
type Primitive int

const (
	// PrimitiveTriangles draws independent triangles.
	PrimitiveTriangles Primitive = iota

	// PrimitiveTriangleStrip draws a strip of connected triangles.
	PrimitiveTriangleStrip

	// PrimitiveLines draws independent line segments.
	PrimitiveLines
)

// String returns the primitive name.
func (p Primitive) String() string {
	switch p {
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveTriangleStrip:
		return "triangle_strip"
	case PrimitiveLines:
		return "lines"
	}
	return "unknown"
}

// Driver is the rendering backend the scene core talks to. It carries no graphics API
// specific encoding; a concrete backend translates these verbs into API calls.
// All transforms are column-major.
type Driver interface {
	// DrawElements draws from the currently bound mesh buffers.
	//
	// Parameters:
	//   - count: number of indices to draw
	//   - offset: index buffer start offset
	//   - primitive: how the indices are assembled
	DrawElements(count int, offset uint32, primitive Primitive)

	// ApplyModelViewTransform sets the model-view transform for the next draws.
	//
	// Parameters:
	//   - transform: View * Model
	ApplyModelViewTransform(transform mgl32.Mat4)

	// ApplyProjectionTransform sets the projection for the next draws.
	//
	// Parameters:
	//   - transform: the projection matrix
	ApplyProjectionTransform(transform mgl32.Mat4)

	// ApplyMaterial sets the surface colors for the next draws.
	//
	// Parameters:
	//   - ambient, diffuse, specular, emission: the material colors
	ApplyMaterial(ambient, diffuse, specular, emission mgl32.Vec4)

	// CreateLight uploads a light into the given slot.
	//
	// Parameters:
	//   - index: the light slot
	//   - light: the light parameters, position and direction in view space
	CreateLight(index int, light LightUpload)

	// EnableLights enables exactly the given light slots for the next draws.
	//
	// Parameters:
	//   - slots: the slot indices, empty disables all lights
	EnableLights(slots []int)

	// DrawParticles draws a batch of point sprites.
	//
	// Parameters:
	//   - vertices: packed xyz positions
	//   - colors: packed rgba colors, one per vertex
	DrawParticles(vertices, colors []float32)

	// DrawLine draws a debug line with a color per end point.
	//
	// Parameters:
	//   - c1, p1: color and position of the first end point
	//   - c2, p2: color and position of the second end point
	DrawLine(c1 mgl32.Vec4, p1 mgl32.Vec3, c2 mgl32.Vec4, p2 mgl32.Vec3)
}

// Handle is an opaque render resource compared by identity only.
type Handle interface {
	// ID returns the unique, non-zero identity of the resource.
	ID() uint64
}

// Shader is a program activated around the draws that use it.
type Shader interface {
	Handle
	Activate(d Driver)
	Deactivate(d Driver)
}

// Texture is bound around the draws that sample it.
type Texture interface {
	Handle
	Bind(d Driver)
	Unbind(d Driver)
}

// Material applies its surface properties through Driver.ApplyMaterial when bound.
type Material interface {
	Handle
	Bind(d Driver)
	Unbind(d Driver)
}

// Mesh owns vertex and index buffers and knows how to draw them.
type Mesh interface {
	Handle
	Bind(d Driver)
	Unbind(d Driver)
	Draw(d Driver)

	// Bounds returns the model-space bounding box.
	Bounds() common.AxisAlignedBox
}

// handleCount generates unique handle identities. Zero is never issued.
var handleCount atomic.Uint64

// NewHandleID returns a fresh non-zero handle identity.
//
// Returns:
//   - uint64: the identity
func NewHandleID() uint64 {
	return handleCount.Add(1)
}

// LightUpload is the per-frame light state uploaded to a driver slot.
type LightUpload struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Directional bool

	Ambient  mgl32.Vec4
	Diffuse  mgl32.Vec4
	Specular mgl32.Vec4

	Constant  float32
	Linear    float32
	Quadratic float32
}

// DrawItem is one queued mesh draw.
type DrawItem struct {
	Shader   Shader
	Texture  Texture
	Material Material
	Mesh     Mesh

	// Transform is the model-to-world transform.
	Transform mgl32.Mat4

	// Lights are the light slots, as returned by StateBatcher.AddLight, affecting this draw.
	Lights []int
}

// ParticleBatch is one queued particle emitter draw.
type ParticleBatch struct {
	Shader  Shader
	Texture Texture

	// Vertices holds packed xyz positions and Colors packed rgba, one per vertex.
	Vertices []float32
	Colors   []float32

	// Transform is the model-to-world transform.
	Transform mgl32.Mat4
}

// Line is one queued world-space debug line.
type Line struct {
	From, To           mgl32.Vec3
	FromColor, ToColor mgl32.Vec4
}
