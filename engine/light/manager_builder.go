package light

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/config"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*managerImpl)

// WithMaxAffectingLights limits how many lights ComputeAffectingLights returns.
//
// Parameters:
//   - n: the limit, 0 or less means unlimited
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithMaxAffectingLights(n int) ManagerBuilderOption {
	return func(m *managerImpl) {
		m.maxAffecting = max(n, 0)
	}
}

// WithLights registers initial lights. Duplicate names are ignored.
//
// Parameters:
//   - lights: the lights to register
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLights(lights ...Light) ManagerBuilderOption {
	return func(m *managerImpl) {
		for _, l := range lights {
			if l == nil {
				continue
			}
			if _, ok := m.byName[l.Name()]; ok {
				continue
			}
			m.byName[l.Name()] = len(m.lights)
			m.lights = append(m.lights, l)
		}
	}
}

// WithLogger sets the logger used for diagnostics.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) ManagerBuilderOption {
	return func(m *managerImpl) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithConfig applies the lights section of a configuration.
//
// Parameters:
//   - cfg: the lights configuration
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithConfig(cfg config.Lights) ManagerBuilderOption {
	return WithMaxAffectingLights(cfg.MaxAffecting)
}
