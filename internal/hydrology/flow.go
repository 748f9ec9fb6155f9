// Package hydrology derives drainage structure from the eroded heightmap:
// per-cell flow accumulation, depression filling for lakes, and river
// centerline extraction.
package hydrology

import (
	"sort"

	"github.com/talgya/terragen/internal/grid"
)

// FlowField holds the routing result: per-cell accumulated upstream area
// and the steepest-descent downstream cell each cell drains to.
type FlowField struct {
	// Accum is the total upstream contributing area per cell, in cells.
	// Every cell contributes one unit of its own, so Accum >= 1 everywhere.
	Accum *grid.Grid[int32]

	// Downstream holds the linear index of the cell each cell routes to,
	// or -1 for pits and drainage outlets.
	Downstream []int32
}

// Accumulate routes one unit of rainfall per cell down the steepest-descent
// neighbor and sums contributing areas. Cells are processed strictly in
// descending elevation order (ties broken by linear index) so every cell's
// accumulation is final before it is passed downstream. Among equally low
// neighbors the first in the fixed Neighbors8 enumeration wins.
func Accumulate(elev *grid.Grid[float64]) *FlowField {
	n := elev.Len()
	cells := elev.Cells()

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if cells[a] != cells[b] {
			return cells[a] > cells[b]
		}
		return a < b
	})

	ff := &FlowField{
		Accum:      grid.New[int32](elev.W, elev.H),
		Downstream: make([]int32, n),
	}
	accum := ff.Accum.Cells()
	for i := range accum {
		accum[i] = 1
	}

	for _, idx := range order {
		x := idx % elev.W
		y := idx / elev.W
		h := cells[idx]

		best := -1
		bestDrop := 0.0
		for i, nb := range grid.Neighbors8 {
			nx, ny := x+nb.DX, y+nb.DY
			if !elev.InBounds(nx, ny) {
				continue
			}
			drop := (h - elev.At(nx, ny)) * grid.DiagScale[i]
			if drop > bestDrop {
				bestDrop = drop
				best = ff.Accum.Index(nx, ny)
			}
		}

		ff.Downstream[idx] = int32(best)
		if best >= 0 {
			accum[best] += accum[idx]
		}
	}

	return ff
}
