package particle

import (
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects what happens to a particle once its life runs out.
type Mode int

const (
	// ModeContinuous respawns dead particles at the origin.
	ModeContinuous Mode = iota

	// ModeExplosion lets particles die; the emitter stops and hides itself once all are dead.
	ModeExplosion
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeContinuous:
		return "continuous"
	case ModeExplosion:
		return "explosion"
	}
	return "unknown"
}

// particle is one simulated point. Its position and color live in the emitter's flat buffers.
type particle struct {
	active   bool
	life     float32
	fade     float32
	velocity mgl32.Vec3
}

type emitterImpl struct {
	mu *sync.Mutex

	mode      Mode
	animating bool
	visible   bool

	particles []particle
	vertices  []float32
	colors    []float32

	gravity  mgl32.Vec3
	speed    float32
	slowdown float32
	bounds   common.AxisAlignedBox
	palette  []mgl32.Vec3
	rng      *rand.Rand
}

// Emitter is a fixed-size pool of point particles simulated in the emitter's local space.
// Every particle starts at the origin with a random velocity and a random palette color,
// falls under gravity, fades out and dies when its life runs out or it leaves the bounds.
//
// The simulation only advances while started, and the particles are only drawn while shown.
// Thread-safe for concurrent access.
type Emitter interface {
	// Mode returns the emitter mode.
	Mode() Mode

	// Start resumes the simulation.
	Start()

	// Stop pauses the simulation.
	Stop()

	// Show sets whether the particles are drawn.
	//
	// Parameters:
	//   - visible: true to draw the particles
	Show(visible bool)

	// Animating reports whether the simulation is running.
	Animating() bool

	// Visible reports whether the particles are drawn.
	Visible() bool

	// Animate advances the simulation by one step.
	//
	// Returns:
	//   - bool: true if the simulation was running and advanced
	Animate() bool

	// Explode respawns every particle at the origin, then starts and shows the emitter.
	Explode()

	// SetGravity sets the acceleration added to every particle velocity each step.
	//
	// Parameters:
	//   - gravity: the acceleration
	SetGravity(gravity mgl32.Vec3)

	// SetSpeedFactor scales the random velocity given to respawned particles.
	//
	// Parameters:
	//   - factor: the scale
	SetSpeedFactor(factor float32)

	// SetBounds confines the particles to a box centered on the origin. Particles leaving it die.
	//
	// Parameters:
	//   - width: extent along x
	//   - breadth: extent along z
	//   - height: extent along y
	SetBounds(width, breadth, height float32)

	// Bounds returns the local-space box confining the particles.
	Bounds() common.AxisAlignedBox

	// SetColors sets the palette respawned particles pick their color from.
	//
	// Parameters:
	//   - colors: the RGB palette, empty means white
	SetColors(colors ...mgl32.Vec3)

	// Len returns the pool size.
	Len() int

	// Alive returns the number of particles still simulated.
	Alive() int

	// Vertices returns the packed xyz positions. The slice is owned by the emitter and
	// rewritten by the next Animate.
	Vertices() []float32

	// Colors returns the packed rgba colors, alpha being the remaining life. The slice is
	// owned by the emitter and rewritten by the next Animate.
	Colors() []float32
}

var _ Emitter = &emitterImpl{}

// NewEmitter creates an emitter holding size particles, all spawned at the origin.
// The emitter starts stopped and hidden.
//
// Parameters:
//   - size: the number of particles
//   - options: functional options to configure the emitter
//
// Returns:
//   - Emitter: the new emitter
func NewEmitter(size int, options ...EmitterBuilderOption) Emitter {
	size = max(size, 0)
	e := &emitterImpl{
		mu:        &sync.Mutex{},
		particles: make([]particle, size),
		vertices:  make([]float32, size*3),
		colors:    make([]float32, size*4),
		gravity:   mgl32.Vec3{0, -0.8, 0},
		speed:     1,
		slowdown:  2,
		bounds:    common.InfiniteBox(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for i := range e.particles {
		e.respawn(i)
	}
	return e
}

func (e *emitterImpl) Mode() Mode {
	return e.mode
}

func (e *emitterImpl) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.animating = true
}

func (e *emitterImpl) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.animating = false
}

func (e *emitterImpl) Show(visible bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = visible
}

func (e *emitterImpl) Animating() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.animating
}

func (e *emitterImpl) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

func (e *emitterImpl) Animate() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.animating {
		return false
	}

	step := e.slowdown * 1000
	alive := 0
	for i := range e.particles {
		p := &e.particles[i]
		if !p.active {
			continue
		}

		pos := e.vertices[i*3 : i*3+3 : i*3+3]
		pos[0] += p.velocity[0] / step
		pos[1] += p.velocity[1] / step
		pos[2] += p.velocity[2] / step
		if !e.bounds.Contains(mgl32.Vec3{pos[0], pos[1], pos[2]}) {
			p.life = 0
		}

		p.velocity = p.velocity.Add(e.gravity)
		p.life -= p.fade
		e.colors[i*4+3] = p.life

		if p.life < 0 {
			if e.mode == ModeExplosion {
				p.active = false
				e.colors[i*4+3] = 0
				continue
			}
			e.respawn(i)
		}
		alive++
	}

	if e.mode == ModeExplosion && alive == 0 {
		e.animating = false
		e.visible = false
	}
	return true
}

func (e *emitterImpl) Explode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.particles {
		e.respawn(i)
	}
	e.animating = true
	e.visible = true
}

func (e *emitterImpl) SetGravity(gravity mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gravity = gravity
}

func (e *emitterImpl) SetSpeedFactor(factor float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = factor
}

func (e *emitterImpl) SetBounds(width, breadth, height float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bounds = boundsBox(width, breadth, height)
}

func (e *emitterImpl) Bounds() common.AxisAlignedBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bounds
}

func (e *emitterImpl) SetColors(colors ...mgl32.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.palette = append(e.palette[:0], colors...)
}

func (e *emitterImpl) Len() int {
	return len(e.particles)
}

func (e *emitterImpl) Alive() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, p := range e.particles {
		if p.active {
			n++
		}
	}
	return n
}

func (e *emitterImpl) Vertices() []float32 {
	return e.vertices
}

func (e *emitterImpl) Colors() []float32 {
	return e.colors
}

// respawn resets particle i at the origin with full life. Caller must hold the mutex
// or own e exclusively.
func (e *emitterImpl) respawn(i int) {
	p := &e.particles[i]
	p.active = true
	p.life = 1
	p.fade = float32(e.rng.IntN(100))/1000 + 0.003
	p.velocity = mgl32.Vec3{e.randomSpeed(), e.randomSpeed(), e.randomSpeed()}

	clear(e.vertices[i*3 : i*3+3])

	color := mgl32.Vec3{1, 1, 1}
	if len(e.palette) > 0 {
		color = e.palette[e.rng.IntN(len(e.palette))]
	}
	copy(e.colors[i*4:i*4+4], []float32{color[0], color[1], color[2], p.life})
}

// randomSpeed returns a whole-number speed in [-26, 23] scaled by the speed factor.
func (e *emitterImpl) randomSpeed() float32 {
	return float32(e.rng.IntN(50)-26) * e.speed
}

func boundsBox(width, breadth, height float32) common.AxisAlignedBox {
	half := mgl32.Vec3{width / 2, height / 2, breadth / 2}
	return common.NewBox(half.Mul(-1), half)
}
