package scene

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/particle"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// Payload is what a scene node carries besides its transform. The set is closed:
// TransformPayload, RendrablePayload, LightPayload and EmitterPayload.
type Payload interface {
	// LocalBounds returns the model-space box of the payload.
	LocalBounds() common.AxisAlignedBox

	payload()
}

// TransformPayload is a pure grouping node. It has no bounds and is never drawn.
type TransformPayload struct{}

func (TransformPayload) LocalBounds() common.AxisAlignedBox { return common.NullBox() }

func (TransformPayload) payload() {}

// RendrablePayload draws a mesh. Nil shader, texture and material are allowed.
type RendrablePayload struct {
	Mesh     renderer.Mesh
	Texture  renderer.Texture
	Shader   renderer.Shader
	Material renderer.Material

	lights light.AffectingCache
	slots  []int
}

// NewRendrablePayload creates a payload drawing mesh with the given state.
//
// Parameters:
//   - mesh: the mesh, its bounds become the node's local bounds
//   - shader: the shader or nil
//   - texture: the texture or nil
//   - material: the material or nil
//
// Returns:
//   - *RendrablePayload: the payload
func NewRendrablePayload(mesh renderer.Mesh, shader renderer.Shader, texture renderer.Texture, material renderer.Material) *RendrablePayload {
	return &RendrablePayload{Mesh: mesh, Shader: shader, Texture: texture, Material: material}
}

func (p *RendrablePayload) LocalBounds() common.AxisAlignedBox {
	if p.Mesh == nil {
		return common.NullBox()
	}
	return p.Mesh.Bounds()
}

// AffectingLights returns the lights selected for this node in the last render.
func (p *RendrablePayload) AffectingLights() []light.Light {
	return p.lights.Lights()
}

func (p *RendrablePayload) payload() {}

// LightPayload places a light in the scene. The light follows the node's world pose and is
// registered with the scene's light manager while the node is attached to the scene.
type LightPayload struct {
	Light light.Light

	// Direction is the light direction in node space.
	Direction mgl32.Vec3
}

// NewLightPayload creates a payload for l, taking its current direction as the node-space direction.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - *LightPayload: the payload
func NewLightPayload(l light.Light) *LightPayload {
	return &LightPayload{Light: l, Direction: l.Direction()}
}

func (p *LightPayload) LocalBounds() common.AxisAlignedBox { return common.NullBox() }

func (p *LightPayload) payload() {}

// EmitterPayload draws a particle emitter. The emitter is animated once per rendered frame
// while the node is visible.
type EmitterPayload struct {
	Emitter particle.Emitter
	Shader  renderer.Shader
	Texture renderer.Texture
}

// NewEmitterPayload creates a payload drawing e with the given state.
//
// Parameters:
//   - e: the emitter, its bounds become the node's local bounds
//   - shader: the shader or nil
//   - texture: the texture or nil
//
// Returns:
//   - *EmitterPayload: the payload
func NewEmitterPayload(e particle.Emitter, shader renderer.Shader, texture renderer.Texture) *EmitterPayload {
	return &EmitterPayload{Emitter: e, Shader: shader, Texture: texture}
}

func (p *EmitterPayload) LocalBounds() common.AxisAlignedBox {
	if p.Emitter == nil {
		return common.NullBox()
	}
	return p.Emitter.Bounds()
}

func (p *EmitterPayload) payload() {}
