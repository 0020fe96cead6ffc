package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/pkg/errors"
)

// ErrRunning is returned by Run when the frame loop is already running.
var ErrRunning = errors.New("engine: already running")

// engine implements the Engine interface.
// Drives the frame loop over the registered scenes.
type engine struct {
	mu     *sync.Mutex
	logger *slog.Logger

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	frames  atomic.Uint64

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	profiler         *profiler.Profiler
	profilerOptions  []profiler.ProfilerBuilderOption
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the engine.
// It orchestrates the frame loop: tick callback, scene update, scene render and render callback.
type Engine interface {
	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the profiler ticked after each frame.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// SetTickRate sets the frame rate of Run in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// TickRate returns the current frame period.
	//
	// Returns:
	//   - time.Duration: the time between two frames
	TickRate() time.Duration

	// SetTickCallback registers the function called at the start of each frame.
	// Use this for game logic, input processing and animation updates.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after all scenes rendered.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given z-index key, replacing any scene at that key.
	// Scenes are updated and rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	//
	// Returns:
	//   - scene.Scene: the removed scene, or nil if none was registered
	RemoveScene(key int) scene.Scene

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Resize propagates a new viewport size to the camera of every scene.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// Step runs a single frame: the tick callback, then Update and Render of every active
	// scene in ascending key order, then the render callback and the profiler tick.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//
	// Returns:
	//   - []scene.FrameStats: the statistics of each rendered scene, in render order
	Step(deltaTime float32) []scene.FrameStats

	// Frames returns the number of completed frames.
	Frames() uint64

	// Run steps frames at the tick rate until ctx is done or Quit is called.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ctx.Err() on cancellation, nil after Quit, ErrRunning if already running,
	//     or the recovered panic of a frame
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Close quits and closes every registered scene.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:               &sync.Mutex{},
		logger:           slog.Default(),
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		opts := append([]profiler.ProfilerBuilderOption{profiler.WithLogger(e.logger)}, e.profilerOptions...)
		e.profiler = profiler.NewProfiler(opts...)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// SetTickRate sets the frame rate of Run.
// If the engine is running, the change takes effect on the next frame.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickPeriod(fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()

	if !e.running.Load() {
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		select {
		case e.tickRateChannel <- newRate:
		default:
		}
	}
}

func (e *engine) TickRate() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engineTickRate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.scenes[key]
	delete(e.scenes, key)
	return s
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[int]scene.Scene, len(e.scenes))
	for k, s := range e.scenes {
		out[k] = s
	}
	return out
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	for _, s := range e.sortedScenes(false) {
		c := s.Camera()
		c.SetViewport(width, height)
		c.SetCamInternals(c.Fov(), float32(width)/float32(height), c.Near(), c.Far())
	}
}

func (e *engine) Step(deltaTime float32) []scene.FrameStats {
	e.mu.Lock()
	tick, render, profiling := e.tickCallback, e.renderCallback, e.profilingEnabled
	e.mu.Unlock()

	if tick != nil {
		tick(deltaTime)
	}

	active := e.sortedScenes(true)
	stats := make([]scene.FrameStats, 0, len(active))
	for _, s := range active {
		s.Update()
		stats = append(stats, s.Render())
	}

	if render != nil {
		render(deltaTime)
	}

	if profiling && e.profiler != nil {
		e.profiler.Tick()
	}
	e.frames.Add(1)
	return stats
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run(ctx context.Context) (err error) {
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	// Recover from panics inside a frame and report them as the loop's error.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame loop recovered from panic", "panic", r)
			err = errors.Errorf("engine: frame panicked: %v", r)
		}
	}()

	ticker := time.NewTicker(e.TickRate())
	defer ticker.Stop()

	e.logger.Info("frame loop started", "tick_rate", e.TickRate())
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("frame loop cancelled", "frames", e.Frames())
			return ctx.Err()
		case <-e.quitChannel:
			e.logger.Info("frame loop stopped", "frames", e.Frames())
			return nil
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		}
	}
}

// Quit closes the quit channel once to stop Run.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Close() {
	e.Quit()
	for _, s := range e.sortedScenes(false) {
		s.Close()
	}
}

// sortedScenes returns the registered scenes in ascending key order, optionally only the active ones.
func (e *engine) sortedScenes(activeOnly bool) []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		s := e.scenes[k]
		if activeOnly && !s.Active() {
			continue
		}
		out = append(out, s)
	}
	return out
}

// tickPeriod converts a frame rate into a frame period, defaulting to 60Hz.
func tickPeriod(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
