package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
	"github.com/Carmen-Shannon/oxy-scene/engine/octree"
	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *sceneImpl)

// WithActive sets whether the scene is active for rendering. Scenes are active by default.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.active = active
	}
}

// WithLogger sets the logger used by the scene and the collaborators it creates.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *sceneImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLightWorkers sets the number of worker goroutines refreshing affecting-light lists in
// parallel during Render. 0, the default, refreshes them on the calling goroutine.
//
// Parameters:
//   - n: the number of workers
//   - threshold: the minimum number of visible rendrables before the pool is used
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightWorkers(n, threshold int) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.lightWorkers = max(n, 0)
		s.parallelThreshold = max(threshold, 1)
	}
}

// WithDebugBounds queues the world box of every visible node as debug lines.
//
// Parameters:
//   - color: the line color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDebugBounds(color mgl32.Vec4) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.debugBounds = true
		s.debugColor = color
	}
}

// WithProfiler records every rendered frame into p.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.profiler = p
	}
}

// WithConfig applies the octree and lights sections of a configuration to the collaborators
// NewScene creates. Collaborators passed in the Context are left untouched.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithConfig(cfg config.Config) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.octreeOptions = append(s.octreeOptions, octree.WithConfig(cfg.Octree))
		s.lightOptions = append(s.lightOptions, light.WithConfig(cfg.Lights))
		WithLightWorkers(cfg.Lights.Workers, cfg.Lights.ParallelThreshold)(s)
	}
}
