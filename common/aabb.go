// package common contains common value types and math helpers that are used throughout this engine. They are not
// interface-wrapped structs, just plain structs that express commonly used data-types.
package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Extent describes which of the three states an AxisAlignedBox is in.
type Extent int

const (
	// ExtentNull is an empty box. It is the identity element for Merge.
	ExtentNull Extent = iota

	// ExtentFinite is a regular box bounded by its min and max corners.
	ExtentFinite

	// ExtentInfinite is a box covering all of space. It absorbs everything it is merged with.
	ExtentInfinite
)

// String returns the extent name.
func (e Extent) String() string {
	switch e {
	case ExtentNull:
		return "null"
	case ExtentFinite:
		return "finite"
	case ExtentInfinite:
		return "infinite"
	}
	return "unknown"
}

// AxisAlignedBox is a bounding volume value type. The zero value is a Null box.
// For Finite boxes the cached bounding-sphere radius always matches the corners.
type AxisAlignedBox struct {
	extent Extent
	min    mgl32.Vec3
	max    mgl32.Vec3
	radius float32
}

// NullBox returns an empty box.
//
// Returns:
//   - AxisAlignedBox: a Null box
func NullBox() AxisAlignedBox {
	return AxisAlignedBox{}
}

// InfiniteBox returns a box that covers all of space.
//
// Returns:
//   - AxisAlignedBox: an Infinite box
func InfiniteBox() AxisAlignedBox {
	return AxisAlignedBox{extent: ExtentInfinite, radius: float32(math.Inf(1))}
}

// NewBox creates a Finite box from two corners. The corners are reordered per axis,
// so callers may pass them in any order.
//
// Parameters:
//   - a: first corner
//   - b: opposite corner
//
// Returns:
//   - AxisAlignedBox: the Finite box spanning both corners
func NewBox(a, b mgl32.Vec3) AxisAlignedBox {
	var lo, hi mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = min(a[i], b[i])
		hi[i] = max(a[i], b[i])
	}
	return finiteBox(lo, hi)
}

// BoxFromPoints returns the smallest box containing all points, or a Null box when
// no points are given.
//
// Parameters:
//   - points: the points to enclose
//
// Returns:
//   - AxisAlignedBox: the enclosing box
func BoxFromPoints(points ...mgl32.Vec3) AxisAlignedBox {
	b := NullBox()
	for _, p := range points {
		b = b.MergePoint(p)
	}
	return b
}

// finiteBox builds a Finite box from already ordered corners and caches its radius.
func finiteBox(lo, hi mgl32.Vec3) AxisAlignedBox {
	return AxisAlignedBox{
		extent: ExtentFinite,
		min:    lo,
		max:    hi,
		radius: hi.Sub(lo).Len() * 0.5,
	}
}

// Extent returns the box state.
func (b AxisAlignedBox) Extent() Extent { return b.extent }

// IsNull reports whether the box is empty.
func (b AxisAlignedBox) IsNull() bool { return b.extent == ExtentNull }

// IsFinite reports whether the box has regular bounds.
func (b AxisAlignedBox) IsFinite() bool { return b.extent == ExtentFinite }

// IsInfinite reports whether the box covers all of space.
func (b AxisAlignedBox) IsInfinite() bool { return b.extent == ExtentInfinite }

// Min returns the minimum corner. Only meaningful for Finite boxes.
func (b AxisAlignedBox) Min() mgl32.Vec3 { return b.min }

// Max returns the maximum corner. Only meaningful for Finite boxes.
func (b AxisAlignedBox) Max() mgl32.Vec3 { return b.max }

// Center returns the box center. Null and Infinite boxes report the origin.
func (b AxisAlignedBox) Center() mgl32.Vec3 {
	if b.extent != ExtentFinite {
		return mgl32.Vec3{}
	}
	return b.min.Add(b.max).Mul(0.5)
}

// Size returns the box dimensions. Null boxes have zero size, Infinite boxes report +Inf on every axis.
func (b AxisAlignedBox) Size() mgl32.Vec3 {
	switch b.extent {
	case ExtentFinite:
		return b.max.Sub(b.min)
	case ExtentInfinite:
		inf := float32(math.Inf(1))
		return mgl32.Vec3{inf, inf, inf}
	}
	return mgl32.Vec3{}
}

// HalfSize returns half of Size.
func (b AxisAlignedBox) HalfSize() mgl32.Vec3 {
	return b.Size().Mul(0.5)
}

// Radius returns the radius of the bounding sphere centered at Center.
func (b AxisAlignedBox) Radius() float32 { return b.radius }

// Corners returns the eight corners of a Finite box. The result is undefined for other extents.
//
// Returns:
//   - [8]mgl32.Vec3: the corners, min corner first and max corner last
func (b AxisAlignedBox) Corners() [8]mgl32.Vec3 {
	lo, hi := b.min, b.max
	return [8]mgl32.Vec3{
		{lo[0], lo[1], lo[2]},
		{lo[0], lo[1], hi[2]},
		{lo[0], hi[1], lo[2]},
		{lo[0], hi[1], hi[2]},
		{hi[0], lo[1], lo[2]},
		{hi[0], lo[1], hi[2]},
		{hi[0], hi[1], lo[2]},
		{hi[0], hi[1], hi[2]},
	}
}

// Merge returns the smallest box containing both b and other.
// Null is the identity element and Infinite is absorbing.
//
// Parameters:
//   - other: the box to merge with
//
// Returns:
//   - AxisAlignedBox: the merged box
func (b AxisAlignedBox) Merge(other AxisAlignedBox) AxisAlignedBox {
	switch {
	case b.extent == ExtentInfinite || other.extent == ExtentInfinite:
		return InfiniteBox()
	case other.extent == ExtentNull:
		return b
	case b.extent == ExtentNull:
		return other
	}
	var lo, hi mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = min(b.min[i], other.min[i])
		hi[i] = max(b.max[i], other.max[i])
	}
	return finiteBox(lo, hi)
}

// MergePoint returns the smallest box containing b and the point p.
func (b AxisAlignedBox) MergePoint(p mgl32.Vec3) AxisAlignedBox {
	switch b.extent {
	case ExtentInfinite:
		return b
	case ExtentNull:
		return finiteBox(p, p)
	}
	var lo, hi mgl32.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = min(b.min[i], p[i])
		hi[i] = max(b.max[i], p[i])
	}
	return finiteBox(lo, hi)
}

// Translate returns the box moved by v. Null and Infinite boxes are returned unchanged.
func (b AxisAlignedBox) Translate(v mgl32.Vec3) AxisAlignedBox {
	if b.extent != ExtentFinite {
		return b
	}
	return finiteBox(b.min.Add(v), b.max.Add(v))
}

// Transform returns the axis aligned box enclosing all eight corners of b after
// applying m. Null and Infinite boxes are returned unchanged.
//
// Parameters:
//   - m: the affine transform to apply
//
// Returns:
//   - AxisAlignedBox: the enclosing box of the transformed corners
func (b AxisAlignedBox) Transform(m mgl32.Mat4) AxisAlignedBox {
	if b.extent != ExtentFinite {
		return b
	}
	out := NullBox()
	for _, c := range b.Corners() {
		out = out.MergePoint(TransformPoint(m, c))
	}
	return out
}

// Expand returns the box grown by margin on every side. Null and Infinite boxes are returned unchanged.
func (b AxisAlignedBox) Expand(margin mgl32.Vec3) AxisAlignedBox {
	if b.extent != ExtentFinite {
		return b
	}
	return NewBox(b.min.Sub(margin), b.max.Add(margin))
}

// Contains reports whether the point p lies inside the box, borders included.
func (b AxisAlignedBox) Contains(p mgl32.Vec3) bool {
	switch b.extent {
	case ExtentInfinite:
		return true
	case ExtentNull:
		return false
	}
	for i := 0; i < 3; i++ {
		if p[i] < b.min[i] || p[i] > b.max[i] {
			return false
		}
	}
	return true
}

// ContainsBox reports whether other lies completely inside b.
// A Null box is contained by every non-Null box.
func (b AxisAlignedBox) ContainsBox(other AxisAlignedBox) bool {
	switch {
	case b.extent == ExtentNull:
		return false
	case b.extent == ExtentInfinite:
		return true
	case other.extent == ExtentNull:
		return true
	case other.extent == ExtentInfinite:
		return false
	}
	return b.Contains(other.min) && b.Contains(other.max)
}

// Intersects reports whether the two boxes overlap, borders included.
func (b AxisAlignedBox) Intersects(other AxisAlignedBox) bool {
	if b.extent == ExtentNull || other.extent == ExtentNull {
		return false
	}
	if b.extent == ExtentInfinite || other.extent == ExtentInfinite {
		return true
	}
	for i := 0; i < 3; i++ {
		if b.max[i] < other.min[i] || other.max[i] < b.min[i] {
			return false
		}
	}
	return true
}
