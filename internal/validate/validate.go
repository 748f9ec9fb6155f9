// Package validate scores a generated map for playability and, as the
// last resort, performs terrain surgery so the pipeline can always hand
// back a usable result.
package validate

import (
	"fmt"
	"math"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/water"
)

// Report is the one-shot quality aggregate for a single validation
// attempt. It is recomputed per attempt and never persisted.
type Report struct {
	FlatFraction      float64 // Share of land cells below the slope threshold
	WaterFraction     float64 // Share of all cells tagged as water
	LargestFlatRegion int     // Cell count of the biggest contiguous flat area
	WaterAdjacentFlat int     // Flat cells within reach of water
	ElevationRange    float64 // Max minus min elevation
}

// Rules holds the acceptance thresholds.
type Rules struct {
	SlopeThreshold     float64 // A cell is flat below this slope
	WaterAdjacencyDist float64 // Cells within this distance of water count as water-adjacent

	MinFlatFraction      float64
	MinWaterFraction     float64
	MaxWaterFraction     float64
	MinFlatRegion        int
	MinWaterAdjacentFlat int
	MinElevationRange    float64
}

// DefaultRules returns thresholds for a playable 256×256 city map.
func DefaultRules() Rules {
	return Rules{
		SlopeThreshold:     0.015,
		WaterAdjacencyDist: 6,

		MinFlatFraction:      0.30,
		MinWaterFraction:     0.10,
		MaxWaterFraction:     0.40,
		MinFlatRegion:        3000,
		MinWaterAdjacentFlat: 150,
		MinElevationRange:    0.25,
	}
}

// Assess computes the quality report for the current grids.
func Assess(elev *grid.Grid[float64], bodies *water.BodyMap, waterDist *grid.Grid[float64], rules Rules) Report {
	w, h := elev.W, elev.H
	n := elev.Len()

	flat := make([]bool, n)
	flatCount := 0
	waterCount := 0
	waterAdjFlat := 0
	minE, maxE := math.Inf(1), math.Inf(-1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			e := elev.At(x, y)
			if e < minE {
				minE = e
			}
			if e > maxE {
				maxE = e
			}
			if bodies.IsWater(x, y) {
				waterCount++
				continue
			}
			if grid.Slope(elev, x, y) < rules.SlopeThreshold {
				flat[idx] = true
				flatCount++
				if waterDist.At(x, y) <= rules.WaterAdjacencyDist {
					waterAdjFlat++
				}
			}
		}
	}

	return Report{
		FlatFraction:      float64(flatCount) / float64(n),
		WaterFraction:     float64(waterCount) / float64(n),
		LargestFlatRegion: largestRegion(flat, w, h),
		WaterAdjacentFlat: waterAdjFlat,
		ElevationRange:    maxE - minE,
	}
}

// largestRegion flood-fills the flat mask (4-connected) and returns the
// biggest component's cell count.
func largestRegion(flat []bool, w, h int) int {
	visited := make([]bool, len(flat))
	var stack []int
	best := 0

	for start := range flat {
		if !flat[start] || visited[start] {
			continue
		}
		size := 0
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			x := idx % w
			y := idx / w
			for _, nb := range grid.Neighbors4 {
				nx, ny := x+nb.DX, y+nb.DY
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				nidx := ny*w + nx
				if flat[nidx] && !visited[nidx] {
					visited[nidx] = true
					stack = append(stack, nidx)
				}
			}
		}
		if size > best {
			best = size
		}
	}
	return best
}

// Failures lists every acceptance rule the report misses; an empty slice
// means the map is playable.
func (r Report) Failures(rules Rules) []string {
	var fails []string
	if r.FlatFraction < rules.MinFlatFraction {
		fails = append(fails, fmt.Sprintf("flat fraction %.3f below %.3f", r.FlatFraction, rules.MinFlatFraction))
	}
	if r.WaterFraction < rules.MinWaterFraction || r.WaterFraction > rules.MaxWaterFraction {
		fails = append(fails, fmt.Sprintf("water fraction %.3f outside [%.2f, %.2f]", r.WaterFraction, rules.MinWaterFraction, rules.MaxWaterFraction))
	}
	if r.LargestFlatRegion < rules.MinFlatRegion {
		fails = append(fails, fmt.Sprintf("largest flat region %d below %d cells", r.LargestFlatRegion, rules.MinFlatRegion))
	}
	if r.WaterAdjacentFlat < rules.MinWaterAdjacentFlat {
		fails = append(fails, fmt.Sprintf("water-adjacent flat cells %d below %d", r.WaterAdjacentFlat, rules.MinWaterAdjacentFlat))
	}
	if r.ElevationRange < rules.MinElevationRange {
		fails = append(fails, fmt.Sprintf("elevation range %.3f below %.3f", r.ElevationRange, rules.MinElevationRange))
	}
	return fails
}

// Passes reports whether the map meets every acceptance rule.
func (r Report) Passes(rules Rules) bool {
	return len(r.Failures(rules)) == 0
}

// Surgery blends a circular region of the elevation grid toward a target
// elevation. The blend weight falls off smoothly from full strength at the
// center to zero at the rim, so the flattened area joins the surrounding
// terrain without a cliff. Deterministic: same inputs, same result.
func Surgery(elev *grid.Grid[float64], cx, cy, radius int, target float64) {
	r := float64(radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			x, y := cx+dx, cy+dy
			if !elev.InBounds(x, y) {
				continue
			}
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > r {
				continue
			}
			t := 1 - d/r
			// Smoothstep keeps the rim seamless.
			wgt := t * t * (3 - 2*t)
			elev.Set(x, y, elev.At(x, y)*(1-wgt)+target*wgt)
		}
	}
}
