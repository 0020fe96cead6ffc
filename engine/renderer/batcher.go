package renderer

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderStats summarizes one StateBatcher.Render call.
type RenderStats struct {
	Draws           int
	Lights          int
	ParticleBatches int
	Lines           int

	ShaderSwitches   int
	TextureSwitches  int
	MaterialSwitches int
	MeshSwitches     int
	LightSwitches    int
}

// Add accumulates other into s.
func (s *RenderStats) Add(other RenderStats) {
	s.Draws += other.Draws
	s.Lights += other.Lights
	s.ParticleBatches += other.ParticleBatches
	s.Lines += other.Lines
	s.ShaderSwitches += other.ShaderSwitches
	s.TextureSwitches += other.TextureSwitches
	s.MaterialSwitches += other.MaterialSwitches
	s.MeshSwitches += other.MeshSwitches
	s.LightSwitches += other.LightSwitches
}

type queuedItem struct {
	DrawItem
	seq int
}

type stateBatcher struct {
	mu *sync.Mutex

	driver Driver
	logger *slog.Logger

	queue     []queuedItem
	lights    []LightUpload
	particles []ParticleBatch
	lines     []Line
}

// StateBatcher collects the draws of a frame and issues them ordered by render state, so that
// shader, texture, material and mesh switches happen only where the state actually changes.
// Every queue is drained by Render. Thread-safe for concurrent access.
type StateBatcher interface {
	// Driver returns the driver Render issues commands to.
	Driver() Driver

	// AddToQueue queues a mesh draw. Nil shader, texture and material are valid and unbind
	// the current state; a nil mesh is rejected.
	//
	// Parameters:
	//   - item: the draw
	//
	// Returns:
	//   - bool: true if the draw was queued
	AddToQueue(item DrawItem) bool

	// AddLight queues a light upload.
	//
	// Parameters:
	//   - light: the light with world-space position and direction
	//
	// Returns:
	//   - int: the slot the light is uploaded to, in submission order
	AddLight(light LightUpload) int

	// AddParticleEmitter queues a particle batch. Batches without vertices are rejected.
	//
	// Parameters:
	//   - batch: the particle batch
	//
	// Returns:
	//   - bool: true if the batch was queued
	AddParticleEmitter(batch ParticleBatch) bool

	// AddLine queues a world-space debug line.
	//
	// Parameters:
	//   - line: the line
	AddLine(line Line)

	// AddBox queues the twelve edges of a Finite box as debug lines.
	//
	// Parameters:
	//   - box: the world-space box
	//   - color: the line color
	AddBox(box common.AxisAlignedBox, color mgl32.Vec4)

	// Len returns the number of queued mesh draws.
	Len() int

	// Render uploads the lights, issues the sorted draws, the particle batches and the debug
	// lines, deactivates the last shader and clears every queue.
	//
	// Parameters:
	//   - view: the camera view transform
	//   - projection: the camera projection
	//
	// Returns:
	//   - RenderStats: what was issued
	Render(view, projection mgl32.Mat4) RenderStats

	// Clear drops every queued item without rendering.
	Clear()
}

var _ StateBatcher = &stateBatcher{}

// NewStateBatcher creates a StateBatcher issuing commands to driver.
// Panics if driver is nil.
//
// Parameters:
//   - driver: the rendering backend
//   - options: functional options to configure the batcher
//
// Returns:
//   - StateBatcher: the new batcher
func NewStateBatcher(driver Driver, options ...StateBatcherBuilderOption) StateBatcher {
	if driver == nil {
		panic("renderer: NewStateBatcher requires a driver")
	}
	b := &stateBatcher{
		mu:     &sync.Mutex{},
		driver: driver,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(b)
	}
	b.logger = b.logger.With("component", "state_batcher")
	return b
}

func (b *stateBatcher) Driver() Driver {
	return b.driver
}

func (b *stateBatcher) AddToQueue(item DrawItem) bool {
	if item.Mesh == nil {
		b.logger.Debug("rejecting draw without mesh")
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, queuedItem{DrawItem: item, seq: len(b.queue)})
	return true
}

func (b *stateBatcher) AddLight(light LightUpload) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lights = append(b.lights, light)
	return len(b.lights) - 1
}

func (b *stateBatcher) AddParticleEmitter(batch ParticleBatch) bool {
	if len(batch.Vertices) == 0 {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.particles = append(b.particles, batch)
	return true
}

func (b *stateBatcher) AddLine(line Line) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

func (b *stateBatcher) AddBox(box common.AxisAlignedBox, color mgl32.Vec4) {
	if !box.IsFinite() {
		return
	}
	c := box.Corners()
	b.mu.Lock()
	defer b.mu.Unlock()
	// Corner i has bit 2 set for max x, bit 1 for max y and bit 0 for max z.
	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				b.lines = append(b.lines, Line{From: c[i], To: c[i|bit], FromColor: color, ToColor: color})
			}
		}
	}
}

func (b *stateBatcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *stateBatcher) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *stateBatcher) Render(view, projection mgl32.Mat4) RenderStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	defer b.reset()

	var stats RenderStats
	d := b.driver
	d.ApplyProjectionTransform(projection)

	for i, l := range b.lights {
		l.Position = common.TransformPoint(view, l.Position)
		l.Direction = common.TransformDirection(view, l.Direction)
		d.CreateLight(i, l)
	}
	stats.Lights = len(b.lights)

	slices.SortStableFunc(b.queue, compareItems)

	var (
		shader   Shader
		texture  Texture
		material Material
		mesh     Mesh
		lights   []int
		lightsOn bool
	)

	for i := range b.queue {
		item := &b.queue[i].DrawItem

		if shader != item.Shader {
			if shader != nil {
				shader.Deactivate(d)
			}
			if item.Shader != nil {
				item.Shader.Activate(d)
			}
			shader = item.Shader
			stats.ShaderSwitches++
		}
		if texture != item.Texture {
			if texture != nil {
				texture.Unbind(d)
			}
			if item.Texture != nil {
				item.Texture.Bind(d)
			}
			texture = item.Texture
			stats.TextureSwitches++
		}
		if material != item.Material {
			if material != nil {
				material.Unbind(d)
			}
			if item.Material != nil {
				item.Material.Bind(d)
			}
			material = item.Material
			stats.MaterialSwitches++
		}
		if mesh != item.Mesh {
			if mesh != nil {
				mesh.Unbind(d)
			}
			item.Mesh.Bind(d)
			mesh = item.Mesh
			stats.MeshSwitches++
		}
		if !lightsOn || !slices.Equal(lights, item.Lights) {
			d.EnableLights(item.Lights)
			lights, lightsOn = item.Lights, true
			stats.LightSwitches++
		}

		d.ApplyModelViewTransform(view.Mul4(item.Transform))
		item.Mesh.Draw(d)
		stats.Draws++
	}
	if mesh != nil {
		mesh.Unbind(d)
	}

	for _, p := range b.particles {
		if shader != p.Shader {
			if shader != nil {
				shader.Deactivate(d)
			}
			if p.Shader != nil {
				p.Shader.Activate(d)
			}
			shader = p.Shader
			stats.ShaderSwitches++
		}
		if texture != p.Texture {
			if texture != nil {
				texture.Unbind(d)
			}
			if p.Texture != nil {
				p.Texture.Bind(d)
			}
			texture = p.Texture
			stats.TextureSwitches++
		}

		d.ApplyModelViewTransform(view.Mul4(p.Transform))
		d.DrawParticles(p.Vertices, p.Colors)
		stats.ParticleBatches++
	}

	if shader != nil {
		shader.Deactivate(d)
	}
	if texture != nil {
		texture.Unbind(d)
	}
	if material != nil {
		material.Unbind(d)
	}

	if len(b.lines) > 0 {
		d.ApplyModelViewTransform(view)
		for _, l := range b.lines {
			d.DrawLine(l.FromColor, l.From, l.ToColor, l.To)
		}
		stats.Lines = len(b.lines)
	}
	return stats
}

// reset empties every queue keeping the allocated capacity. Caller must hold the mutex.
func (b *stateBatcher) reset() {
	clear(b.queue)
	b.queue = b.queue[:0]
	b.lights = b.lights[:0]
	clear(b.particles)
	b.particles = b.particles[:0]
	b.lines = b.lines[:0]
}

// compareItems orders draws by shader, then texture, then material, then mesh identity.
// Submission order breaks ties.
func compareItems(a, b queuedItem) int {
	if c := compareHandles(a.Shader, b.Shader); c != 0 {
		return c
	}
	if c := compareHandles(a.Texture, b.Texture); c != 0 {
		return c
	}
	if c := compareHandles(a.Material, b.Material); c != 0 {
		return c
	}
	if c := compareHandles(a.Mesh, b.Mesh); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// compareHandles orders nil handles first, then by ID.
func compareHandles(a, b Handle) int {
	aNil, bNil := a == nil, b == nil
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return -1
	case bNil:
		return 1
	}
	return cmp.Compare(a.ID(), b.ID())
}
