package renderer

import "log/slog"

// StateBatcherBuilderOption is a functional option for configuring a StateBatcher.
type StateBatcherBuilderOption func(*stateBatcher)

// WithLogger sets the logger used for diagnostics.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - StateBatcherBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) StateBatcherBuilderOption {
	return func(b *stateBatcher) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithCapacity preallocates the draw queue.
//
// Parameters:
//   - n: the expected number of draws per frame
//
// Returns:
//   - StateBatcherBuilderOption: option function to apply
func WithCapacity(n int) StateBatcherBuilderOption {
	return func(b *stateBatcher) {
		if n > 0 {
			b.queue = make([]queuedItem, 0, n)
		}
	}
}
