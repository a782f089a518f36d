// Package quadtree implements a point region quadtree used as the per-tick
// neighbor index of the swarm.
//
// Nodes live in a flat arena owned by the tree and refer to their children by
// index, so Clear can hand the whole arena back for the next build without
// freeing anything.
package quadtree

import (
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-glyph-swarm/pkg/geometry"
)

// MaxDepth bounds subdivision. A node at this depth keeps accepting points
// past its capacity, which only happens when many points share a location.
const MaxDepth = 24

var (
	ErrInvalidCapacity = errors.New("quadtree: capacity must be >= 1")
	ErrInvalidBoundary = errors.New("quadtree: boundary must have finite, non-negative extents")
)

// Rect is an axis-aligned region given by its center and half extents.
type Rect struct {
	CenterX, CenterY      float64
	HalfWidth, HalfHeight float64
}

// RectFromBounds covers [-margin, width+margin] x [-margin, height+margin].
func RectFromBounds(width, height, margin float64) Rect {
	return Rect{
		CenterX:    width / 2,
		CenterY:    height / 2,
		HalfWidth:  width/2 + margin,
		HalfHeight: height/2 + margin,
	}
}

// Contains reports whether p lies inside r, borders included.
func (r Rect) Contains(p geometry.Vector2D) bool {
	return p.X >= r.CenterX-r.HalfWidth &&
		p.X <= r.CenterX+r.HalfWidth &&
		p.Y >= r.CenterY-r.HalfHeight &&
		p.Y <= r.CenterY+r.HalfHeight
}

// Intersects reports whether r and o overlap. Touching edges count.
func (r Rect) Intersects(o Rect) bool {
	return !(o.CenterX-o.HalfWidth > r.CenterX+r.HalfWidth ||
		o.CenterX+o.HalfWidth < r.CenterX-r.HalfWidth ||
		o.CenterY-o.HalfHeight > r.CenterY+r.HalfHeight ||
		o.CenterY+o.HalfHeight < r.CenterY-r.HalfHeight)
}

func (r Rect) valid() bool {
	for _, f := range []float64{r.CenterX, r.CenterY, r.HalfWidth, r.HalfHeight} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return r.HalfWidth >= 0 && r.HalfHeight >= 0
}

// Point is an indexed position. Index is a handle into the caller's own
// collection, the tree never interprets it.
type Point struct {
	Pos   geometry.Vector2D
	Index int
}

type node struct {
	region Rect
	points []Point
	// child is the arena index of the NE child; the other three follow it
	// in NW, SE, SW order. -1 while the node is a leaf.
	child int
	depth int
}

// QuadTree is not safe for concurrent mutation. Once built, any number of
// goroutines may query it as long as nobody inserts.
type QuadTree struct {
	capacity int
	nodes    []node
	size     int
}

// New returns an empty tree covering boundary.
func New(boundary Rect, capacity int) (*QuadTree, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	if !boundary.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidBoundary, boundary)
	}
	qt := &QuadTree{capacity: capacity}
	qt.alloc(boundary, 0)
	return qt, nil
}

// alloc appends a node to the arena, recycling the point buffer of a slot
// left over from a previous build.
func (qt *QuadTree) alloc(region Rect, depth int) int {
	i := len(qt.nodes)
	if i < cap(qt.nodes) {
		qt.nodes = qt.nodes[:i+1]
		n := &qt.nodes[i]
		n.region = region
		n.points = n.points[:0]
		n.child = -1
		n.depth = depth
		return i
	}
	qt.nodes = append(qt.nodes, node{
		region: region,
		points: make([]Point, 0, qt.capacity),
		child:  -1,
		depth:  depth,
	})
	return i
}

// Boundary returns the root region.
func (qt *QuadTree) Boundary() Rect {
	return qt.nodes[0].region
}

// Capacity returns the per-node point capacity.
func (qt *QuadTree) Capacity() int {
	return qt.capacity
}

// Len returns the number of stored points.
func (qt *QuadTree) Len() int {
	return qt.size
}

// Depth returns the depth of the deepest node, 0 for an undivided root.
func (qt *QuadTree) Depth() int {
	d := 0
	for i := range qt.nodes {
		if qt.nodes[i].depth > d {
			d = qt.nodes[i].depth
		}
	}
	return d
}

// Clear empties the tree, keeping the root region and all allocated memory.
func (qt *QuadTree) Clear() {
	qt.Reset(qt.nodes[0].region)
}

// Reset empties the tree and moves the root to boundary. An invalid boundary
// keeps the previous one.
func (qt *QuadTree) Reset(boundary Rect) {
	if !boundary.valid() {
		boundary = qt.nodes[0].region
	}
	qt.nodes = qt.nodes[:0]
	qt.size = 0
	qt.alloc(boundary, 0)
}

// Insert stores p. It returns false, leaving the tree untouched, when p is
// outside the root region.
func (qt *QuadTree) Insert(p Point) bool {
	if !qt.insert(0, p) {
		return false
	}
	qt.size++
	return true
}

func (qt *QuadTree) insert(i int, p Point) bool {
	if !qt.nodes[i].region.Contains(p.Pos) {
		return false
	}
	n := &qt.nodes[i]
	if len(n.points) < qt.capacity || n.depth >= MaxDepth {
		n.points = append(n.points, p)
		return true
	}
	if n.child < 0 {
		qt.subdivide(i)
	}
	// subdivide may grow the arena, so re-read the child index
	first := qt.nodes[i].child
	for c := first; c < first+4; c++ {
		if qt.insert(c, p) {
			return true
		}
	}
	return false
}

func (qt *QuadTree) subdivide(i int) {
	r := qt.nodes[i].region
	depth := qt.nodes[i].depth + 1
	hw, hh := r.HalfWidth/2, r.HalfHeight/2

	// screen coordinates: north is -y
	ne := qt.alloc(Rect{r.CenterX + hw, r.CenterY - hh, hw, hh}, depth)
	qt.alloc(Rect{r.CenterX - hw, r.CenterY - hh, hw, hh}, depth) // NW
	qt.alloc(Rect{r.CenterX + hw, r.CenterY + hh, hw, hh}, depth) // SE
	qt.alloc(Rect{r.CenterX - hw, r.CenterY + hh, hw, hh}, depth) // SW
	qt.nodes[i].child = ne
}

// QueryRadius appends to dst every point whose squared distance to center is
// in (0, radius²] and returns the extended slice. A point sitting exactly on
// center is never reported.
func (qt *QuadTree) QueryRadius(center geometry.Vector2D, radius float64, dst []Point) []Point {
	if !(radius >= 0) || math.IsInf(radius, 0) {
		return dst
	}
	box := Rect{center.X, center.Y, radius, radius}
	return qt.queryRadius(0, center, radius*radius, box, dst)
}

func (qt *QuadTree) queryRadius(i int, center geometry.Vector2D, rSq float64, box Rect, dst []Point) []Point {
	n := &qt.nodes[i]
	if !n.region.Intersects(box) {
		return dst
	}
	for _, p := range n.points {
		dx := p.Pos.X - center.X
		dy := p.Pos.Y - center.Y
		dSq := dx*dx + dy*dy
		if dSq <= rSq && dSq > 0 {
			dst = append(dst, p)
		}
	}
	if n.child >= 0 {
		first := n.child
		for c := first; c < first+4; c++ {
			dst = qt.queryRadius(c, center, rSq, box, dst)
		}
	}
	return dst
}

// QueryRect appends to dst every point inside r.
func (qt *QuadTree) QueryRect(r Rect, dst []Point) []Point {
	return qt.queryRect(0, r, dst)
}

func (qt *QuadTree) queryRect(i int, r Rect, dst []Point) []Point {
	n := &qt.nodes[i]
	if !n.region.Intersects(r) {
		return dst
	}
	for _, p := range n.points {
		if r.Contains(p.Pos) {
			dst = append(dst, p)
		}
	}
	if n.child >= 0 {
		first := n.child
		for c := first; c < first+4; c++ {
			dst = qt.queryRect(c, r, dst)
		}
	}
	return dst
}

// Walk calls fn with the region and point count of every node, parents
// before children. It is meant for debug overlays.
func (qt *QuadTree) Walk(fn func(region Rect, points int)) {
	qt.walk(0, fn)
}

func (qt *QuadTree) walk(i int, fn func(Rect, int)) {
	n := &qt.nodes[i]
	fn(n.region, len(n.points))
	if n.child >= 0 {
		for c := n.child; c < n.child+4; c++ {
			qt.walk(c, fn)
		}
	}
}
