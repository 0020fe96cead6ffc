package light

import "github.com/go-gl/mathgl/mgl32"

// AffectingCache holds the affecting-light list of a single consumer. The list is recomputed
// only when the manager's version advances or the consumer's bounding sphere changes.
// The zero value is ready to use. Not safe for concurrent use; each consumer owns its cache.
type AffectingCache struct {
	valid    bool
	version  uint64
	position mgl32.Vec3
	radius   float32
	lights   []Light
}

// Stale reports whether Refresh would recompute the list.
//
// Parameters:
//   - m: the light manager
//   - position: the consumer's bounding sphere center
//   - radius: the consumer's bounding sphere radius
//
// Returns:
//   - bool: true if the cached list is out of date
func (c *AffectingCache) Stale(m Manager, position mgl32.Vec3, radius float32) bool {
	return !c.valid || c.version != m.Version() || c.position != position || c.radius != radius
}

// Refresh recomputes the list if it is stale and returns it.
// The returned slice is owned by the cache and valid until the next Refresh.
//
// Parameters:
//   - m: the light manager
//   - position: the consumer's bounding sphere center
//   - radius: the consumer's bounding sphere radius
//
// Returns:
//   - []Light: the affecting lights
func (c *AffectingCache) Refresh(m Manager, position mgl32.Vec3, radius float32) []Light {
	if !c.Stale(m, position, radius) {
		return c.lights
	}
	c.version = m.Version()
	c.lights = m.ComputeAffectingLights(c.lights[:0], position, radius)
	c.position, c.radius, c.valid = position, radius, true
	return c.lights
}

// Lights returns the last computed list without checking staleness.
func (c *AffectingCache) Lights() []Light {
	return c.lights
}

// Invalidate forces the next Refresh to recompute.
func (c *AffectingCache) Invalidate() {
	c.valid = false
}
