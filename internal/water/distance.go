package water

import "github.com/talgya/terragen/internal/grid"

// maxDistance caps the distance field; cells farther than this from any
// water read as fully dry everywhere the field is consumed.
const maxDistance = 1e9

// DistanceField computes per-cell distance to the nearest water cell using
// a two-pass chamfer transform (1 for cardinal steps, √2 for diagonal).
// The result feeds moisture decay, soil typing, and flood risk.
func DistanceField(b *BodyMap) *grid.Grid[float64] {
	w, h := b.Types.W, b.Types.H
	dist := grid.New[float64](w, h)
	d := dist.Cells()
	types := b.Types.Cells()

	for i := range d {
		if types[i] != uint8(None) {
			d[i] = 0
		} else {
			d[i] = maxDistance
		}
	}

	const diag = 1.4142135623730951

	// Forward pass: top-left to bottom-right.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if x > 0 && d[idx-1]+1 < d[idx] {
				d[idx] = d[idx-1] + 1
			}
			if y > 0 {
				if d[idx-w]+1 < d[idx] {
					d[idx] = d[idx-w] + 1
				}
				if x > 0 && d[idx-w-1]+diag < d[idx] {
					d[idx] = d[idx-w-1] + diag
				}
				if x < w-1 && d[idx-w+1]+diag < d[idx] {
					d[idx] = d[idx-w+1] + diag
				}
			}
		}
	}

	// Backward pass: bottom-right to top-left.
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			idx := y*w + x
			if x < w-1 && d[idx+1]+1 < d[idx] {
				d[idx] = d[idx+1] + 1
			}
			if y < h-1 {
				if d[idx+w]+1 < d[idx] {
					d[idx] = d[idx+w] + 1
				}
				if x < w-1 && d[idx+w+1]+diag < d[idx] {
					d[idx] = d[idx+w+1] + diag
				}
				if x > 0 && d[idx+w-1]+diag < d[idx] {
					d[idx] = d[idx+w-1] + diag
				}
			}
		}
	}

	return dist
}
