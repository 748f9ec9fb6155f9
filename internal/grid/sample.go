package grid

import "math"

// Bilinear samples a float grid at a continuous position by interpolating
// the four surrounding cells. Positions outside the grid are clamped to
// the border cell.
func Bilinear(g *Grid[float64], x, y float64) float64 {
	x = clampf(x, 0, float64(g.W-1))
	y = clampf(y, 0, float64(g.H-1))

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := min(x0+1, g.W-1)
	y1 := min(y0+1, g.H-1)
	u := x - float64(x0)
	v := y - float64(y0)

	h00 := g.At(x0, y0)
	h10 := g.At(x1, y0)
	h01 := g.At(x0, y1)
	h11 := g.At(x1, y1)

	hx0 := h00*(1-u) + h10*u
	hx1 := h01*(1-u) + h11*u
	return hx0*(1-v) + hx1*v
}

// Gradient returns the bilinearly interpolated slope of a float grid at a
// continuous position. The returned (gx, gy) points uphill.
func Gradient(g *Grid[float64], x, y float64) (gx, gy float64) {
	x = clampf(x, 0, float64(g.W-1)-1e-9)
	y = clampf(y, 0, float64(g.H-1)-1e-9)

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := min(x0+1, g.W-1)
	y1 := min(y0+1, g.H-1)
	u := x - float64(x0)
	v := y - float64(y0)

	h00 := g.At(x0, y0)
	h10 := g.At(x1, y0)
	h01 := g.At(x0, y1)
	h11 := g.At(x1, y1)

	gx = (h10-h00)*(1-v) + (h11-h01)*v
	gy = (h01-h00)*(1-u) + (h11-h10)*u
	return gx, gy
}

// Slope returns the local slope magnitude at an integer cell, measured
// against the steepest of the eight neighbors with diagonal correction.
func Slope(g *Grid[float64], x, y int) float64 {
	h := g.At(x, y)
	steepest := 0.0
	for i, n := range Neighbors8 {
		nx, ny := x+n.DX, y+n.DY
		if !g.InBounds(nx, ny) {
			continue
		}
		d := math.Abs(h-g.At(nx, ny)) * DiagScale[i]
		if d > steepest {
			steepest = d
		}
	}
	return steepest
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
