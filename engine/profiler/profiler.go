package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// FrameStats describes one rendered scene frame.
type FrameStats struct {
	// Nodes is the number of nodes attached to the scene.
	Nodes int

	// Updated is the number of nodes whose world pose was recomputed by the last update.
	Updated int

	// Visible is the number of octree entries that survived frustum culling.
	Visible int

	// LightsInFrustum is the number of lights uploaded for the frame.
	LightsInFrustum int

	// LightVersion is the light manager version after the in-frustum search.
	LightVersion uint64

	// Render is what the state batcher issued.
	Render renderer.RenderStats

	UpdateTime time.Duration
	RenderTime time.Duration
}

// Summary aggregates the frames of one reporting interval.
type Summary struct {
	Frames  int
	FPS     float64
	Elapsed time.Duration

	// Per-frame averages of the recorded FrameStats.
	AvgVisible  float64
	AvgDraws    float64
	AvgSwitches float64
	AvgUpdated  float64
	AvgUpdate   time.Duration
	AvgRender   time.Duration

	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate, scene frame statistics and memory statistics.
// Outputs a summary to the log at a configurable interval.
// Thread-safe for concurrent access.
type Profiler struct {
	mu *sync.Mutex

	logger         *slog.Logger
	now            func() time.Time
	updateInterval time.Duration
	readMem        bool

	frameCount int
	lastTime   time.Time

	recorded   int
	visible    int
	draws      int
	switches   int
	updated    int
	updateTime time.Duration
	renderTime time.Duration

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	last    Summary
	hasLast bool
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         slog.Default(),
		now:            time.Now,
		updateInterval: time.Second,
		readMem:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = p.logger.With("component", "profiler")
	p.lastTime = p.now()
	return p
}

// Record adds the statistics of one scene frame to the current interval.
//
// Parameters:
//   - stats: the frame statistics
func (p *Profiler) Record(stats FrameStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := stats.Render
	p.recorded++
	p.visible += stats.Visible
	p.draws += r.Draws
	p.switches += r.ShaderSwitches + r.TextureSwitches + r.MaterialSwitches + r.MeshSwitches
	p.updated += stats.Updated
	p.updateTime += stats.UpdateTime
	p.renderTime += stats.RenderTime
}

// Tick should be called once per frame to track frame timing.
// Logs a summary when the update interval has elapsed.
// The summary includes: FPS, scene frame averages, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	s := Summary{
		Frames:  p.frameCount,
		FPS:     float64(p.frameCount) / elapsed.Seconds(),
		Elapsed: elapsed,
	}
	if p.recorded > 0 {
		n := float64(p.recorded)
		s.AvgVisible = float64(p.visible) / n
		s.AvgDraws = float64(p.draws) / n
		s.AvgSwitches = float64(p.switches) / n
		s.AvgUpdated = float64(p.updated) / n
		s.AvgUpdate = p.updateTime / time.Duration(p.recorded)
		s.AvgRender = p.renderTime / time.Duration(p.recorded)
	}
	if p.readMem {
		p.readMemStats(&s, elapsed)
	}

	p.logger.Info("frame summary",
		"fps", s.FPS,
		"visible", s.AvgVisible,
		"draws", s.AvgDraws,
		"state_switches", s.AvgSwitches,
		"updated", s.AvgUpdated,
		"update_time", s.AvgUpdate,
		"render_time", s.AvgRender,
		"heap_mb", s.HeapMB,
		"alloc_rate_mb", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last, p.hasLast = s, true
	p.frameCount = 0
	p.lastTime = currentTime
	p.recorded, p.visible, p.draws, p.switches, p.updated = 0, 0, 0, 0, 0
	p.updateTime, p.renderTime = 0, 0
	return true
}

// Last returns the most recent logged summary.
//
// Returns:
//   - Summary: the summary
//   - bool: false if no summary was logged yet
func (p *Profiler) Last() (Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasLast
}

// readMemStats fills the memory part of s. Caller must hold the mutex.
func (p *Profiler) readMemStats(s *Summary, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative heap bytes. Sys: bytes obtained from the OS.
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	s.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
