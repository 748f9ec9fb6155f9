package hydrology

import (
	"container/heap"
	"sort"

	"github.com/talgya/terragen/internal/grid"
)

// Lake is one detected depression: the cells underwater once the basin
// fills to its spill level, the level itself, and the rim cell it drains
// over.
type Lake struct {
	Cells       []int   // Linear cell indices, ascending
	FilledLevel float64 // Elevation the basin fills to before spilling
	PourPoint   int     // Linear index of the rim cell the overflow crosses
}

// FillResult holds the priority-flood output.
type FillResult struct {
	// Filled is the minimum elevation each cell must be raised to in order
	// to drain to the map boundary. Equal to raw elevation outside basins.
	Filled *grid.Grid[float64]

	// LakeID maps each cell to the lake covering it, or -1.
	LakeID *grid.Grid[int32]

	Lakes []Lake
}

// IsLake reports whether the cell at linear index idx sits inside a lake.
func (fr *FillResult) IsLake(idx int) bool {
	return fr.LakeID.Cells()[idx] >= 0
}

type floodCell struct {
	idx   int
	level float64
}

// floodQueue orders cells by filled level ascending, ties by cell index so
// identical inputs always flood in the same order.
type floodQueue []floodCell

func (q floodQueue) Len() int { return len(q) }
func (q floodQueue) Less(i, j int) bool {
	if q[i].level != q[j].level {
		return q[i].level < q[j].level
	}
	return q[i].idx < q[j].idx
}
func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *floodQueue) Push(x any)   { *q = append(*q, x.(floodCell)) }
func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	*q = old[:n-1]
	return c
}

// FillDepressions runs a priority-flood over the heightmap. Boundary cells
// are the known drainage outlets; the flood propagates inward, assigning
// each cell the lowest level it can drain out at. Cells whose filled level
// exceeds their raw elevation by more than minDepth become lake cells;
// shallower pockets are treated as noise and ignored.
func FillDepressions(elev *grid.Grid[float64], minDepth float64) *FillResult {
	w, h := elev.W, elev.H
	n := elev.Len()
	raw := elev.Cells()

	fr := &FillResult{
		Filled: grid.New[float64](w, h),
		LakeID: grid.New[int32](w, h),
	}
	filled := fr.Filled.Cells()
	visited := make([]bool, n)

	q := make(floodQueue, 0, 2*(w+h))
	seed := func(x, y int) {
		idx := y*w + x
		if visited[idx] {
			return
		}
		visited[idx] = true
		filled[idx] = raw[idx]
		q = append(q, floodCell{idx: idx, level: raw[idx]})
	}
	for x := 0; x < w; x++ {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := 1; y < h-1; y++ {
		seed(0, y)
		seed(w-1, y)
	}
	heap.Init(&q)

	for q.Len() > 0 {
		c := heap.Pop(&q).(floodCell)
		x := c.idx % w
		y := c.idx / w
		for _, nb := range grid.Neighbors8 {
			nx, ny := x+nb.DX, y+nb.DY
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			visited[nidx] = true
			level := raw[nidx]
			if c.level > level {
				level = c.level
			}
			filled[nidx] = level
			heap.Push(&q, floodCell{idx: nidx, level: level})
		}
	}

	fr.collectLakes(elev, minDepth)
	return fr
}

// collectLakes groups flooded cells into connected lakes and locates each
// lake's pour point.
func (fr *FillResult) collectLakes(elev *grid.Grid[float64], minDepth float64) {
	w, h := elev.W, elev.H
	raw := elev.Cells()
	filled := fr.Filled.Cells()
	ids := fr.LakeID.Cells()
	for i := range ids {
		ids[i] = -1
	}

	isLakeCell := func(idx int) bool {
		return filled[idx]-raw[idx] > minDepth
	}

	var stack []int
	for start := 0; start < len(raw); start++ {
		if ids[start] >= 0 || !isLakeCell(start) {
			continue
		}

		id := int32(len(fr.Lakes))
		lake := Lake{PourPoint: -1}
		stack = append(stack[:0], start)
		ids[start] = id

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			lake.Cells = append(lake.Cells, idx)
			if filled[idx] > lake.FilledLevel {
				lake.FilledLevel = filled[idx]
			}

			x := idx % w
			y := idx / w
			for _, nb := range grid.Neighbors8 {
				nx, ny := x+nb.DX, y+nb.DY
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nidx := ny*w + nx
				if ids[nidx] < 0 && isLakeCell(nidx) {
					ids[nidx] = id
					stack = append(stack, nidx)
				}
			}
		}

		// Pour point: the rim cell outside the lake whose elevation sits
		// closest to the filled level. Scan in ascending cell order so the
		// choice is stable between runs.
		sort.Ints(lake.Cells)
		bestDiff := -1.0
		for _, idx := range lake.Cells {
			x := idx % w
			y := idx / w
			for _, nb := range grid.Neighbors8 {
				nx, ny := x+nb.DX, y+nb.DY
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nidx := ny*w + nx
				if isLakeCell(nidx) {
					continue
				}
				diff := abs64(raw[nidx] - lake.FilledLevel)
				if bestDiff < 0 || diff < bestDiff {
					bestDiff = diff
					lake.PourPoint = nidx
				}
			}
		}

		fr.Lakes = append(fr.Lakes, lake)
	}
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
