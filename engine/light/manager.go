package light

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Culler classifies spheres against a view volume. camera.Camera and *common.Frustum satisfy it.
type Culler interface {
	ContainsSphere(center mgl32.Vec3, radius float32) common.Containment
}

// candidate is the value snapshot used to detect changes of the in-frustum light set.
type candidate struct {
	light     Light
	lightType LightType
	reach     float32
	position  mgl32.Vec3
}

type managerImpl struct {
	mu *sync.RWMutex

	lights []Light
	byName map[string]int

	candidates []candidate
	inFrustum  []Light
	version    uint64

	maxAffecting int
	logger       *slog.Logger
}

// Manager is the registry of the lights of a scene. Each frame it narrows the registry to
// the lights that can influence the view, and answers which of those affect a given object.
//
// The version counter advances only when the in-frustum set actually changes, so consumers
// keep their affecting-light lists (see AffectingCache) until it moves.
// Thread-safe for concurrent access; queries may run in parallel.
type Manager interface {
	// AddLight registers a light under its name. Duplicate names are ignored.
	//
	// Parameters:
	//   - l: the light to register
	//
	// Returns:
	//   - bool: true if the light was registered
	AddLight(l Light) bool

	// RemoveLight unregisters the light with the given name. A removed light that was in
	// the frustum leaves the in-frustum list immediately and advances the version.
	//
	// Parameters:
	//   - name: the light name
	//
	// Returns:
	//   - bool: true if a light was removed
	RemoveLight(name string) bool

	// Light returns the registered light with the given name, or nil.
	//
	// Parameters:
	//   - name: the light name
	//
	// Returns:
	//   - Light: the light or nil
	Light(name string) Light

	// Lights returns the registered lights in registration order.
	Lights() []Light

	// Len returns the number of registered lights.
	Len() int

	// FindLightsInFrustum rebuilds the candidate list: enabled directional lights always,
	// enabled positional lights whose range sphere is not Outside the culler. The public
	// in-frustum list is rebuilt and the version advanced only if the candidates differ
	// from the previous call.
	//
	// Parameters:
	//   - culler: the view volume
	//
	// Returns:
	//   - bool: true if the in-frustum set changed
	FindLightsInFrustum(culler Culler) bool

	// InFrustum returns a copy of the current in-frustum lights.
	InFrustum() []Light

	// Version returns the in-frustum set version.
	Version() uint64

	// ComputeAffectingLights appends to out the in-frustum lights affecting a sphere, ordered
	// by ascending squared distance with directional lights counting as distance 0. Ties keep
	// the in-frustum order. The result is truncated to the configured maximum, if any.
	//
	// Parameters:
	//   - out: the slice to append to, may be nil
	//   - position: the sphere center
	//   - radius: the sphere radius
	//
	// Returns:
	//   - []Light: out with the affecting lights appended
	ComputeAffectingLights(out []Light, position mgl32.Vec3, radius float32) []Light

	// MaxAffectingLights returns the truncation limit, 0 if unlimited.
	MaxAffectingLights() int
}

var _ Manager = &managerImpl{}

// NewManager creates an empty light manager.
//
// Parameters:
//   - options: functional options to configure the manager
//
// Returns:
//   - Manager: the new manager
func NewManager(options ...ManagerBuilderOption) Manager {
	m := &managerImpl{
		mu:     &sync.RWMutex{},
		byName: make(map[string]int),
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = m.logger.With("component", "light_manager")
	return m
}

func (m *managerImpl) AddLight(l Light) bool {
	if l == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[l.Name()]; ok {
		m.logger.Debug("ignoring light with duplicate name", "name", l.Name())
		return false
	}
	m.byName[l.Name()] = len(m.lights)
	m.lights = append(m.lights, l)
	return true
}

func (m *managerImpl) RemoveLight(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.byName[name]
	if !ok {
		return false
	}
	removed := m.lights[idx]
	m.lights = slices.Delete(m.lights, idx, idx+1)
	delete(m.byName, name)
	for i := idx; i < len(m.lights); i++ {
		m.byName[m.lights[i].Name()] = i
	}

	if i := slices.Index(m.inFrustum, removed); i >= 0 {
		m.inFrustum = slices.Delete(m.inFrustum, i, i+1)
		m.candidates = slices.DeleteFunc(m.candidates, func(c candidate) bool { return c.light == removed })
		m.version++
	}
	return true
}

func (m *managerImpl) Light(name string) Light {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if idx, ok := m.byName[name]; ok {
		return m.lights[idx]
	}
	return nil
}

func (m *managerImpl) Lights() []Light {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.lights)
}

func (m *managerImpl) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lights)
}

func (m *managerImpl) FindLightsInFrustum(culler Culler) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]candidate, 0, len(m.lights))
	for _, l := range m.lights {
		if !l.Enabled() {
			continue
		}
		c := candidate{light: l, lightType: l.Type(), reach: l.Range(), position: l.Position()}
		if c.lightType != LightTypeDirectional && culler != nil &&
			culler.ContainsSphere(c.position, c.reach) == common.Outside {
			continue
		}
		next = append(next, c)
	}

	if slices.Equal(next, m.candidates) {
		return false
	}

	m.candidates = next
	m.inFrustum = m.inFrustum[:0]
	for _, c := range next {
		m.inFrustum = append(m.inFrustum, c.light)
	}
	m.version++
	return true
}

func (m *managerImpl) InFrustum() []Light {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.inFrustum)
}

func (m *managerImpl) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

func (m *managerImpl) ComputeAffectingLights(out []Light, position mgl32.Vec3, radius float32) []Light {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.computeAffecting(out, position, radius)
}

func (m *managerImpl) MaxAffectingLights() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxAffecting
}

type affecting struct {
	light  Light
	distSq float32
}

// computeAffecting filters and sorts the in-frustum list. Caller must hold the read lock.
func (m *managerImpl) computeAffecting(out []Light, position mgl32.Vec3, radius float32) []Light {
	hits := make([]affecting, 0, len(m.candidates))
	for _, c := range m.candidates {
		if c.lightType == LightTypeDirectional {
			hits = append(hits, affecting{light: c.light})
			continue
		}
		distSq := common.DistanceSquared(c.position, position)
		limit := c.reach + radius
		if limit*limit < distSq {
			continue
		}
		hits = append(hits, affecting{light: c.light, distSq: distSq})
	}

	slices.SortStableFunc(hits, func(a, b affecting) int {
		return cmp.Compare(a.distSq, b.distSq)
	})
	if m.maxAffecting > 0 && len(hits) > m.maxAffecting {
		hits = hits[:m.maxAffecting]
	}

	for _, h := range hits {
		out = append(out, h.light)
	}
	return out
}
