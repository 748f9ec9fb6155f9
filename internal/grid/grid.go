// Package grid provides the dense row-major grids every generation stage
// reads and writes, plus the shared index math and neighbor ordering.
package grid

import "golang.org/x/exp/constraints"

// Number constrains grid element types to ordinary numerics.
type Number interface {
	constraints.Integer | constraints.Float
}

// Grid stores a W×H field of values in row-major order.
type Grid[T Number] struct {
	W, H int
	data []T
}

// New allocates a zeroed grid with the given dimensions.
func New[T Number](w, h int) *Grid[T] {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &Grid[T]{W: w, H: h, data: make([]T, w*h)}
}

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid[T]) Index(x, y int) int { return y*g.W + x }

// At returns the value at (x, y). Caller must ensure the coordinate is in bounds.
func (g *Grid[T]) At(x, y int) T { return g.data[y*g.W+x] }

// Set writes the value at (x, y). Caller must ensure the coordinate is in bounds.
func (g *Grid[T]) Set(x, y int, v T) { g.data[y*g.W+x] = v }

// Add accumulates into the value at (x, y).
func (g *Grid[T]) Add(x, y int, v T) { g.data[y*g.W+x] += v }

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid[T]) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *Grid[T]) Cells() []T { return g.data }

// Len returns the total cell count.
func (g *Grid[T]) Len() int { return g.W * g.H }

// Fill sets every cell to v.
func (g *Grid[T]) Fill(v T) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Clone returns a deep copy of the grid.
func (g *Grid[T]) Clone() *Grid[T] {
	c := &Grid[T]{W: g.W, H: g.H, data: make([]T, len(g.data))}
	copy(c.data, g.data)
	return c
}

// CopyFrom overwrites this grid's cells with src's. Dimensions must match.
func (g *Grid[T]) CopyFrom(src *Grid[T]) {
	copy(g.data, src.data)
}

// Offset is a relative cell step.
type Offset struct {
	DX, DY int
}

// Neighbors8 enumerates the eight neighbors in a fixed clockwise order
// starting north: N, NE, E, SE, S, SW, W, NW. Every algorithm that breaks
// ties between equal neighbors does so by this order, never by map
// iteration, so runs with the same seed stay reproducible.
var Neighbors8 = [8]Offset{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Neighbors4 enumerates the four cardinal neighbors in N, E, S, W order.
var Neighbors4 = [4]Offset{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
}

// DiagScale holds the distance weight per Neighbors8 entry: 1 for cardinal
// steps, 1/√2 for diagonal steps.
var DiagScale = [8]float64{
	1, 0.7071067811865476, 1, 0.7071067811865476,
	1, 0.7071067811865476, 1, 0.7071067811865476,
}
