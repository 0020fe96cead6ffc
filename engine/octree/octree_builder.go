package octree

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/config"
	"github.com/go-gl/mathgl/mgl32"
)

type octreeOptions struct {
	bounds   common.AxisAlignedBox
	maxDepth int
	logger   *slog.Logger
}

// OctreeBuilderOption is a functional option for configuring an Octree.
// Use the With* functions to create options.
type OctreeBuilderOption func(o *octreeOptions)

// WithBounds sets the world extent covered by the root cell. Degenerate extents are ignored.
//
// Parameters:
//   - min: the minimum corner
//   - max: the maximum corner
//
// Returns:
//   - OctreeBuilderOption: option function to apply
func WithBounds(min, max mgl32.Vec3) OctreeBuilderOption {
	return func(o *octreeOptions) {
		box := common.NewBox(min, max)
		size := box.Size()
		if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
			return
		}
		o.bounds = box
	}
}

// WithMaxDepth sets how many times a cell may be subdivided. Negative values are clamped to 0.
//
// Parameters:
//   - depth: the maximum depth
//
// Returns:
//   - OctreeBuilderOption: option function to apply
func WithMaxDepth(depth int) OctreeBuilderOption {
	return func(o *octreeOptions) {
		o.maxDepth = max(depth, 0)
	}
}

// WithLogger sets the logger used for diagnostics.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - OctreeBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) OctreeBuilderOption {
	return func(o *octreeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfig applies the octree section of a configuration.
//
// Parameters:
//   - cfg: the octree configuration
//
// Returns:
//   - OctreeBuilderOption: option function to apply
func WithConfig(cfg config.Octree) OctreeBuilderOption {
	return func(o *octreeOptions) {
		WithBounds(mgl32.Vec3(cfg.Min), mgl32.Vec3(cfg.Max))(o)
		WithMaxDepth(cfg.MaxDepth)(o)
	}
}
