package particle

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// EmitterBuilderOption is a functional option for configuring an Emitter.
type EmitterBuilderOption func(*emitterImpl)

// WithMode sets the emitter mode. Defaults to ModeContinuous.
//
// Parameters:
//   - mode: the mode
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithMode(mode Mode) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.mode = mode
	}
}

// WithGravity sets the per-step acceleration. Defaults to (0, -0.8, 0).
//
// Parameters:
//   - gravity: the acceleration
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithGravity(gravity mgl32.Vec3) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.gravity = gravity
	}
}

// WithSpeedFactor scales spawn velocities. Defaults to 1.
//
// Parameters:
//   - factor: the scale
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithSpeedFactor(factor float32) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.speed = factor
	}
}

// WithSlowdown divides the distance travelled per step. Defaults to 2; non-positive values are ignored.
//
// Parameters:
//   - slowdown: the divisor
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithSlowdown(slowdown float32) EmitterBuilderOption {
	return func(e *emitterImpl) {
		if slowdown > 0 {
			e.slowdown = slowdown
		}
	}
}

// WithBounds confines the particles to a box centered on the origin. Unbounded by default.
//
// Parameters:
//   - width: extent along x
//   - breadth: extent along z
//   - height: extent along y
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithBounds(width, breadth, height float32) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.bounds = boundsBox(width, breadth, height)
	}
}

// WithColors sets the spawn palette. Defaults to white.
//
// Parameters:
//   - colors: the RGB palette
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithColors(colors ...mgl32.Vec3) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.palette = append([]mgl32.Vec3(nil), colors...)
	}
}

// WithRand sets the random source, making the simulation reproducible.
//
// Parameters:
//   - rng: the random source
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithRand(rng *rand.Rand) EmitterBuilderOption {
	return func(e *emitterImpl) {
		e.rng = rng
	}
}

// WithSeed seeds a PCG random source, making the simulation reproducible.
//
// Parameters:
//   - seed: the seed
//
// Returns:
//   - EmitterBuilderOption: option function to apply
func WithSeed(seed uint64) EmitterBuilderOption {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}
