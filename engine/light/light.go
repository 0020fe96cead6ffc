package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to its range.
	LightTypePoint LightType = iota

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with distance and with the angle from the cone axis.
	LightTypeSpot

	// LightTypeDirectional represents a light with no position, only direction.
	// It affects everything in view regardless of distance.
	LightTypeDirectional
)

// String returns the light type name.
func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	case LightTypeDirectional:
		return "directional"
	}
	return "unknown"
}

// minLightLevel is the intensity fraction below which a light no longer contributes.
const minLightLevel = 1.0 / 256.0

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	name      string
	lightType LightType

	position  mgl32.Vec3
	direction mgl32.Vec3

	ambient  mgl32.Vec4
	diffuse  mgl32.Vec4
	specular mgl32.Vec4

	attConst float32
	attLin   float32
	attQuad  float32

	// lightRange is the explicit range, zero derives it from the attenuation.
	lightRange float32

	innerCone float32 // stored as cos(angle in radians)
	outerCone float32 // stored as cos(angle in radians)
	enabled   bool
}

// Light defines a light source carried by a scene node.
//
// The scene mirrors the world pose of the owning node into the light on every update,
// and registers the light with the scene's Manager while the node is attached.
// All light types share this interface; type-specific properties (e.g. cone angles for
// spot lights) are ignored when not applicable.
type Light interface {
	// Name returns the light's registry key.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (point, spot or directional)
	Type() LightType

	// Position returns the world-space position of the light.
	// Meaningless for directional lights.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the normalized direction of the light.
	// For directional lights this is the light direction. For spot lights this
	// is the cone axis. Meaningless for point lights.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Ambient returns the ambient color.
	Ambient() mgl32.Vec4

	// Diffuse returns the diffuse color.
	Diffuse() mgl32.Vec4

	// Specular returns the specular color.
	Specular() mgl32.Vec4

	// Attenuation returns the constant, linear and quadratic attenuation factors.
	//
	// Returns:
	//   - constant, linear, quadratic: the factors of 1 / (c + l·d + q·d²)
	Attenuation() (constant, linear, quadratic float32)

	// Range returns the distance beyond which the light contributes nothing.
	// An explicit range set with SetRange wins; otherwise the range is derived from the
	// attenuation as the distance where the intensity falls to 1/256. Directional lights
	// and lights without distance attenuation have an infinite range.
	//
	// Returns:
	//   - float32: the range, possibly +Inf
	Range() float32

	// InnerCone returns the cosine of the inner cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(inner half-angle)
	InnerCone() float32

	// OuterCone returns the cosine of the outer cone half-angle for spot lights.
	//
	// Returns:
	//   - float32: cos(outer half-angle)
	OuterCone() float32

	// Enabled returns whether this light is considered for rendering.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetType changes the kind of light source.
	//
	// Parameters:
	//   - lightType: the new type
	SetType(lightType LightType)

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - position: the position
	SetPosition(position mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	// A zero vector is ignored.
	//
	// Parameters:
	//   - direction: the direction (will be normalized)
	SetDirection(direction mgl32.Vec3)

	// SetProperties sets the colors and attenuation factors.
	//
	// Parameters:
	//   - ambient, diffuse, specular: the light colors
	//   - constant, linear, quadratic: the attenuation factors
	SetProperties(ambient, diffuse, specular mgl32.Vec4, constant, linear, quadratic float32)

	// SetRange sets an explicit range. Zero or negative values derive the range from the attenuation.
	//
	// Parameters:
	//   - lightRange: the range value
	SetRange(lightRange float32)

	// SetSpotCone sets the inner and outer cone half-angles for spot lights.
	// Angles are specified in degrees and stored internally as cosines.
	//
	// Parameters:
	//   - innerDeg: inner cone half-angle in degrees
	//   - outerDeg: outer cone half-angle in degrees
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied. The default attenuation (1, 0, 0) never falls off,
// so positional lights need either attenuation or an explicit range to be culled.
//
// Parameters:
//   - name: the registry key of the light
//   - lightType: the kind of light to create (point, spot or directional)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(name string, lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		name:      name,
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		ambient:   mgl32.Vec4{0, 0, 0, 1},
		diffuse:   mgl32.Vec4{1, 1, 1, 1},
		specular:  mgl32.Vec4{1, 1, 1, 1},
		attConst:  1,
		innerCone: 0.9063, // cos(25°)
		outerCone: 0.8192, // cos(35°)
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Name() string {
	return l.name
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Ambient() mgl32.Vec4 {
	return l.ambient
}

func (l *lightImpl) Diffuse() mgl32.Vec4 {
	return l.diffuse
}

func (l *lightImpl) Specular() mgl32.Vec4 {
	return l.specular
}

func (l *lightImpl) Attenuation() (constant, linear, quadratic float32) {
	return l.attConst, l.attLin, l.attQuad
}

func (l *lightImpl) Range() float32 {
	if l.lightType == LightTypeDirectional {
		return float32(math.Inf(1))
	}
	if l.lightRange > 0 {
		return l.lightRange
	}
	return attenuationRange(l.attConst, l.attLin, l.attQuad)
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetType(lightType LightType) {
	l.lightType = lightType
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	if direction.Len() == 0 {
		return
	}
	l.direction = direction.Normalize()
}

func (l *lightImpl) SetProperties(ambient, diffuse, specular mgl32.Vec4, constant, linear, quadratic float32) {
	l.ambient, l.diffuse, l.specular = ambient, diffuse, specular
	l.attConst, l.attLin, l.attQuad = constant, linear, quadratic
}

func (l *lightImpl) SetRange(lightRange float32) {
	l.lightRange = max(lightRange, 0)
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// attenuationRange solves c + l·d + q·d² = 1/minLightLevel for the distance d.
func attenuationRange(c, lin, quad float32) float32 {
	target := float64(1 / minLightLevel)
	c64, l64, q64 := float64(c), float64(lin), float64(quad)
	switch {
	case c64 >= target:
		return 0
	case q64 > 0:
		disc := l64*l64 - 4*q64*(c64-target)
		return float32((-l64 + math.Sqrt(disc)) / (2 * q64))
	case l64 > 0:
		return float32((target - c64) / l64)
	}
	return float32(math.Inf(1))
}

// cosDeg returns the cosine of an angle given in degrees.
func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(mgl32.DegToRad(deg))))
}
