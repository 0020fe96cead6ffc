package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
// Lights carried by scene nodes have their position overwritten on every scene update.
//
// Parameters:
//   - position: the position
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(position mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing; a zero vector is ignored.
//
// Parameters:
//   - direction: the direction
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a lightImpl
func WithDirection(direction mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetDirection(direction)
	}
}

// WithColors is an option builder that sets the ambient, diffuse and specular colors.
//
// Parameters:
//   - ambient: the ambient color
//   - diffuse: the diffuse color
//   - specular: the specular color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColors(ambient, diffuse, specular mgl32.Vec4) LightBuilderOption {
	return func(l *lightImpl) {
		l.ambient, l.diffuse, l.specular = ambient, diffuse, specular
	}
}

// WithAttenuation is an option builder that sets the attenuation factors of 1 / (c + l·d + q·d²).
//
// Parameters:
//   - constant: the constant factor
//   - linear: the linear factor
//   - quadratic: the quadratic factor
//
// Returns:
//   - LightBuilderOption: a function that applies the attenuation option to a lightImpl
func WithAttenuation(constant, linear, quadratic float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.attConst, l.attLin, l.attQuad = constant, linear, quadratic
	}
}

// WithRange is an option builder that sets an explicit range for point and spot lights,
// overriding the range derived from the attenuation.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetRange(lightRange)
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone half-angles
// for spot lights. Angles are specified in degrees and converted to cosines internally.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a lightImpl
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetSpotCone(innerDeg, outerDeg)
	}
}

// WithEnabled is an option builder that sets whether the light is considered for rendering.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
