package octree

import (
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CellID indexes a cell in the octree arena. The root cell is always RootCell.
type CellID int32

const (
	// NoCell marks a key that is not filed in any cell.
	NoCell CellID = -1

	// RootCell is the index of the root cell.
	RootCell CellID = 0
)

// Culler classifies volumes against a view volume. *common.Frustum and camera.Camera satisfy it.
type Culler interface {
	ContainsSphere(center mgl32.Vec3, radius float32) common.Containment
	ContainsBox(box common.AxisAlignedBox) common.Containment
}

// CellInfo is a read-only snapshot of a single cell.
type CellInfo struct {
	ID     CellID
	Parent CellID
	Depth  int

	// Bounds is the nominal cell box, Loose the box used for culling (twice the nominal extent).
	Bounds common.AxisAlignedBox
	Loose  common.AxisAlignedBox

	// Count is the number of entries held by the cell and all its descendants.
	Count int

	// Held is the number of entries held directly by the cell.
	Held int
}

// Octree is a loose octree indexing keys by their world bounding box.
// Each cell culls against twice its nominal extent, so an entry only moves when its
// center leaves the nominal cell box or it grows as large as the cell.
// Not safe for concurrent use; the scene drives it from a single goroutine.
type Octree[K comparable] interface {
	// Add files key with the given box and returns the cell it was filed in.
	// Null boxes are not filed and return NoCell. Infinite boxes and boxes that do not fit the
	// world extent are parked in the root cell.
	//
	// Parameters:
	//   - key: the key to file
	//   - box: the key's world bounding box
	//
	// Returns:
	//   - CellID: the cell now holding key, or NoCell
	Add(key K, box common.AxisAlignedBox) CellID

	// Update refreshes the box of key, currently filed in cell, and re-files it when it no longer
	// satisfies the loose containment test of that cell. A Null box removes key from the index.
	//
	// Parameters:
	//   - key: the key to update
	//   - box: the key's new world bounding box
	//   - cell: the key's current cell, or NoCell if it is not filed
	//
	// Returns:
	//   - CellID: the cell now holding key, or NoCell
	Update(key K, box common.AxisAlignedBox, cell CellID) CellID

	// Remove unlinks key from cell and decrements the counts of cell and its ancestors.
	//
	// Parameters:
	//   - key: the key to remove
	//   - cell: the key's current cell
	//
	// Returns:
	//   - bool: true if key was held by cell
	Remove(key K, cell CellID) bool

	// WalkAndCull visits every key whose cell and box are not Outside the culler.
	// Cells with no entries are skipped, and once a cell tests Inside its whole subtree is
	// visited without further tests.
	//
	// Parameters:
	//   - culler: the view volume to cull against
	//   - visit: called once per surviving key
	WalkAndCull(culler Culler, visit func(key K))

	// Held returns the keys held directly by cell.
	Held(cell CellID) []K

	// Cells returns a snapshot of every allocated cell.
	Cells() []CellInfo

	// Len returns the number of filed keys.
	Len() int

	// Bounds returns the world extent of the root cell.
	Bounds() common.AxisAlignedBox

	// MaxDepth returns the maximum subdivision depth.
	MaxDepth() int

	// Clear drops every entry and every cell below the root.
	Clear()
}

type entry[K comparable] struct {
	key K
	box common.AxisAlignedBox
}

type cell[K comparable] struct {
	box      common.AxisAlignedBox
	halfSize mgl32.Vec3
	parent   CellID
	depth    int
	children [8]CellID
	entries  []entry[K]
	count    int
}

type octreeImpl[K comparable] struct {
	cells    []cell[K]
	maxDepth int
	logger   *slog.Logger
}

var _ Octree[int] = &octreeImpl[int]{}

// NewOctree creates an empty octree. Defaults to a [-1000, 1000]³ world and a maximum depth of 8.
//
// Parameters:
//   - options: functional options to configure the octree
//
// Returns:
//   - Octree[K]: the new octree
func NewOctree[K comparable](options ...OctreeBuilderOption) Octree[K] {
	opts := &octreeOptions{
		bounds:   common.NewBox(mgl32.Vec3{-1000, -1000, -1000}, mgl32.Vec3{1000, 1000, 1000}),
		maxDepth: 8,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(opts)
	}

	o := &octreeImpl[K]{
		maxDepth: opts.maxDepth,
		logger:   opts.logger.With("component", "octree"),
	}
	o.reset(opts.bounds)
	return o
}

func (o *octreeImpl[K]) reset(bounds common.AxisAlignedBox) {
	o.cells = o.cells[:0]
	o.cells = append(o.cells, newCell[K](bounds, NoCell, 0))
}

func newCell[K comparable](box common.AxisAlignedBox, parent CellID, depth int) cell[K] {
	c := cell[K]{
		box:      box,
		halfSize: box.HalfSize(),
		parent:   parent,
		depth:    depth,
	}
	for i := range c.children {
		c.children[i] = NoCell
	}
	return c
}

func (o *octreeImpl[K]) Add(key K, box common.AxisAlignedBox) CellID {
	if box.IsNull() {
		return NoCell
	}
	if box.IsInfinite() || !o.fits(box, RootCell) {
		return o.park(key, box, RootCell)
	}
	return o.descend(key, box)
}

func (o *octreeImpl[K]) Update(key K, box common.AxisAlignedBox, cur CellID) CellID {
	if !o.valid(cur) {
		cur = NoCell
	}

	if box.IsNull() {
		if cur != NoCell {
			o.Remove(key, cur)
		}
		return NoCell
	}
	if cur == NoCell {
		return o.Add(key, box)
	}

	idx := o.find(key, cur)
	if idx < 0 {
		o.logger.Debug("update of key not held by its cell, re-filing", "cell", cur)
		return o.Add(key, box)
	}

	var stay bool
	if cur == RootCell {
		stay = o.parksAtRoot(box)
	} else {
		stay = o.fits(box, cur)
	}
	if stay {
		o.cells[cur].entries[idx].box = box
		return cur
	}

	o.unlink(cur, idx)
	return o.Add(key, box)
}

func (o *octreeImpl[K]) Remove(key K, cur CellID) bool {
	if !o.valid(cur) {
		return false
	}
	idx := o.find(key, cur)
	if idx < 0 {
		return false
	}
	o.unlink(cur, idx)
	return true
}

func (o *octreeImpl[K]) WalkAndCull(culler Culler, visit func(key K)) {
	if culler == nil || visit == nil {
		return
	}
	o.walk(RootCell, culler, visit, false)
}

func (o *octreeImpl[K]) walk(id CellID, culler Culler, visit func(key K), fullyVisible bool) {
	c := &o.cells[id]
	if c.count == 0 {
		return
	}

	result := common.Inside
	if !fullyVisible {
		loose := o.loose(id)
		result = culler.ContainsSphere(loose.Center(), loose.Radius())
		if result == common.Intersect {
			result = culler.ContainsBox(loose)
		}
	}

	// Root entries may lie outside the world extent, so they are always tested individually.
	if id == RootCell && !fullyVisible {
		for _, e := range c.entries {
			if visible(culler, e.box) {
				visit(e.key)
			}
		}
	} else if result != common.Outside {
		for _, e := range c.entries {
			if result == common.Inside || visible(culler, e.box) {
				visit(e.key)
			}
		}
	}

	if result == common.Outside {
		return
	}
	for _, child := range c.children {
		if child != NoCell {
			o.walk(child, culler, visit, result == common.Inside)
		}
	}
}

func visible(culler Culler, box common.AxisAlignedBox) bool {
	switch box.Extent() {
	case common.ExtentNull:
		return false
	case common.ExtentInfinite:
		return true
	}
	switch culler.ContainsSphere(box.Center(), box.Radius()) {
	case common.Outside:
		return false
	case common.Inside:
		return true
	}
	return culler.ContainsBox(box) != common.Outside
}

func (o *octreeImpl[K]) Held(id CellID) []K {
	if !o.valid(id) {
		return nil
	}
	keys := make([]K, 0, len(o.cells[id].entries))
	for _, e := range o.cells[id].entries {
		keys = append(keys, e.key)
	}
	return keys
}

func (o *octreeImpl[K]) Cells() []CellInfo {
	infos := make([]CellInfo, 0, len(o.cells))
	for i := range o.cells {
		c := &o.cells[i]
		infos = append(infos, CellInfo{
			ID:     CellID(i),
			Parent: c.parent,
			Depth:  c.depth,
			Bounds: c.box,
			Loose:  o.loose(CellID(i)),
			Count:  c.count,
			Held:   len(c.entries),
		})
	}
	return infos
}

func (o *octreeImpl[K]) Len() int {
	return o.cells[RootCell].count
}

func (o *octreeImpl[K]) Bounds() common.AxisAlignedBox {
	return o.cells[RootCell].box
}

func (o *octreeImpl[K]) MaxDepth() int {
	return o.maxDepth
}

func (o *octreeImpl[K]) Clear() {
	o.reset(o.cells[RootCell].box)
}

// descend walks down from the root while the box is at most half the cell size, creating
// missing child cells on the way, and files key in the cell where it stops.
func (o *octreeImpl[K]) descend(key K, box common.AxisAlignedBox) CellID {
	id := RootCell
	for o.cells[id].depth < o.maxDepth && o.smallEnough(box, id) {
		octant := o.octant(box, id)
		child := o.cells[id].children[octant]
		if child == NoCell {
			child = o.split(id, octant)
		}
		id = child
	}
	return o.park(key, box, id)
}

func (o *octreeImpl[K]) park(key K, box common.AxisAlignedBox, id CellID) CellID {
	o.cells[id].entries = append(o.cells[id].entries, entry[K]{key: key, box: box})
	for cur := id; cur != NoCell; cur = o.cells[cur].parent {
		o.cells[cur].count++
	}
	return id
}

func (o *octreeImpl[K]) unlink(id CellID, idx int) {
	o.cells[id].entries = slices.Delete(o.cells[id].entries, idx, idx+1)
	for cur := id; cur != NoCell; cur = o.cells[cur].parent {
		o.cells[cur].count--
	}
}

func (o *octreeImpl[K]) find(key K, id CellID) int {
	return slices.IndexFunc(o.cells[id].entries, func(e entry[K]) bool { return e.key == key })
}

func (o *octreeImpl[K]) valid(id CellID) bool {
	return id >= 0 && int(id) < len(o.cells)
}

// split creates the child cell of parent in the given octant. Its bounds run from the parent
// corner to the parent center on each axis.
func (o *octreeImpl[K]) split(parent CellID, octant int) CellID {
	p := o.cells[parent]
	lo, hi, center := p.box.Min(), p.box.Max(), p.box.Center()

	var cmin, cmax mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		if octant&(1<<axis) == 0 {
			cmin[axis], cmax[axis] = lo[axis], center[axis]
		} else {
			cmin[axis], cmax[axis] = center[axis], hi[axis]
		}
	}

	id := CellID(len(o.cells))
	o.cells = append(o.cells, newCell[K](common.NewBox(cmin, cmax), parent, p.depth+1))
	o.cells[parent].children[octant] = id
	return id
}

// octant picks the child slot by comparing the box center to the cell center per axis.
// Bit 0 selects +x, bit 1 +y and bit 2 +z.
func (o *octreeImpl[K]) octant(box common.AxisAlignedBox, id CellID) int {
	center := o.cells[id].box.Center()
	bc := box.Center()
	octant := 0
	for axis := 0; axis < 3; axis++ {
		if bc[axis] > center[axis] {
			octant |= 1 << axis
		}
	}
	return octant
}

// smallEnough reports whether box would fit a child of the cell twice over.
func (o *octreeImpl[K]) smallEnough(box common.AxisAlignedBox, id CellID) bool {
	if !box.IsFinite() {
		return false
	}
	size := box.Size()
	half := o.cells[id].halfSize
	return size[0] <= half[0] && size[1] <= half[1] && size[2] <= half[2]
}

// parksAtRoot reports whether Add would file box in the root cell.
func (o *octreeImpl[K]) parksAtRoot(box common.AxisAlignedBox) bool {
	return !o.fits(box, RootCell) || o.maxDepth == 0 || !o.smallEnough(box, RootCell)
}

// fits is the loose containment test: the box center lies inside the nominal cell box and
// the box is strictly smaller than the cell on every axis.
func (o *octreeImpl[K]) fits(box common.AxisAlignedBox, id CellID) bool {
	if !box.IsFinite() {
		return false
	}
	cb := o.cells[id].box
	if !cb.Contains(box.Center()) {
		return false
	}
	size, cellSize := box.Size(), cb.Size()
	return size[0] < cellSize[0] && size[1] < cellSize[1] && size[2] < cellSize[2]
}

func (o *octreeImpl[K]) loose(id CellID) common.AxisAlignedBox {
	c := &o.cells[id]
	return c.box.Expand(c.halfSize)
}
