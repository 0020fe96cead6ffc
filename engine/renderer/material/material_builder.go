package material

import "github.com/go-gl/mathgl/mgl32"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColors is an option builder that sets all four surface colors.
//
// Parameters:
//   - ambient, diffuse, specular, emission: the RGBA colors
//
// Returns:
//   - MaterialBuilderOption: a function that applies the colors to a material
func WithColors(ambient, diffuse, specular, emission mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.ambient, m.diffuse, m.specular, m.emission = ambient, diffuse, specular, emission
	}
}

// WithDiffuse is an option builder that sets the diffuse color and derives the ambient
// color as a fifth of it, keeping alpha.
//
// Parameters:
//   - color: the diffuse RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the diffuse option to a material
func WithDiffuse(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.diffuse = color
		m.ambient = mgl32.Vec4{color[0] * 0.2, color[1] * 0.2, color[2] * 0.2, color[3]}
	}
}

// WithSpecular is an option builder that sets the specular color.
//
// Parameters:
//   - color: the specular RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the specular option to a material
func WithSpecular(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.specular = color
	}
}

// WithEmission is an option builder that sets the emitted color.
//
// Parameters:
//   - color: the emitted RGBA color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emission option to a material
func WithEmission(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.emission = color
	}
}
