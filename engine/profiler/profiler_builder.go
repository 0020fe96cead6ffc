package profiler

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/config"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick logs a summary. Non-positive values are ignored.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger receiving the summaries.
//
// Parameters:
//   - logger: the logger, nil keeps the default
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMemStats sets whether summaries read runtime memory statistics. Enabled by default.
//
// Parameters:
//   - enabled: true to read memory statistics
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithMemStats(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.readMem = enabled
	}
}

// WithConfig applies the profiler section of a configuration.
//
// Parameters:
//   - cfg: the profiler configuration
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithConfig(cfg config.Profiler) ProfilerBuilderOption {
	return WithInterval(cfg.Interval)
}
