package noise

import (
	"sort"

	"github.com/talgya/terragen/internal/grid"
)

// Bands specifies the target share of cells per elevation band. Shares are
// fractions of the total cell count; whatever remains above hills becomes
// mountains.
type Bands struct {
	Water float64 // Cells remapped below SeaLevel
	Flat  float64 // Buildable band just above sea level
	Hill  float64 // Rolling band between flats and mountains

	SeaLevel float64 // Elevation of the water/flat boundary
	FlatTop  float64 // Elevation of the flat/hill boundary
	HillTop  float64 // Elevation of the hill/mountain boundary
}

// DefaultBands targets a map that is roughly a quarter water, half
// buildable flats, and the rest hills and peaks.
func DefaultBands() Bands {
	return Bands{
		Water:    0.22,
		Flat:     0.48,
		Hill:     0.20,
		SeaLevel: 0.30,
		FlatTop:  0.55,
		HillTop:  0.78,
	}
}

// ShapeHeights remaps the raw noise field so each elevation band holds its
// target share of cells. The remap is a histogram equalization followed by
// an inverse-CDF lookup into the piecewise band curve, so it is exact in
// band sizes and strictly order preserving: raw(a) < raw(b) implies
// shaped(a) <= shaped(b). Output is clamped to [0, 1] and never NaN.
func ShapeHeights(elev *grid.Grid[float64], b Bands) {
	cells := elev.Cells()
	n := len(cells)
	if n == 0 {
		return
	}

	// Rank cells by raw value, ties broken by index so reruns agree.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, bb := order[i], order[j]
		if cells[a] != cells[bb] {
			return cells[a] < cells[bb]
		}
		return a < bb
	})

	denom := float64(n - 1)
	if denom == 0 {
		denom = 1
	}
	for rank, idx := range order {
		q := float64(rank) / denom
		cells[idx] = bandElevation(q, b)
	}
}

// bandElevation maps a quantile in [0,1] onto the piecewise elevation curve
// defined by the band boundaries.
func bandElevation(q float64, b Bands) float64 {
	waterEnd := b.Water
	flatEnd := b.Water + b.Flat
	hillEnd := b.Water + b.Flat + b.Hill

	switch {
	case q < waterEnd:
		return lerpSegment(q, 0, waterEnd, 0, b.SeaLevel)
	case q < flatEnd:
		return lerpSegment(q, waterEnd, flatEnd, b.SeaLevel, b.FlatTop)
	case q < hillEnd:
		return lerpSegment(q, flatEnd, hillEnd, b.FlatTop, b.HillTop)
	default:
		return lerpSegment(q, hillEnd, 1, b.HillTop, 1)
	}
}

func lerpSegment(q, q0, q1, e0, e1 float64) float64 {
	span := q1 - q0
	if span <= 0 {
		return clamp01(e0)
	}
	t := (q - q0) / span
	return clamp01(e0 + (e1-e0)*t)
}
