package terrain

import "github.com/talgya/terragen/internal/grid"

// quantScale maps elevation [0,1] onto the full uint16 range. Round-trip
// error is bounded by half a quantization step (~7.6e-6).
const quantScale = 65535.0

// Quantize encodes the elevation grid as 16-bit values for persistence.
func Quantize(elev *grid.Grid[float64]) []uint16 {
	cells := elev.Cells()
	out := make([]uint16, len(cells))
	for i, v := range cells {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		out[i] = uint16(v*quantScale + 0.5)
	}
	return out
}

// Dequantize rebuilds an elevation grid from its 16-bit encoding.
func Dequantize(q []uint16, w, h int) *grid.Grid[float64] {
	elev := grid.New[float64](w, h)
	cells := elev.Cells()
	for i := range cells {
		cells[i] = float64(q[i]) / quantScale
	}
	return elev
}
