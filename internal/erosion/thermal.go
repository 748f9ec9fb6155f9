package erosion

import (
	"github.com/talgya/terragen/internal/grid"
)

// ThermalConfig holds slope-relaxation parameters.
type ThermalConfig struct {
	TalusThreshold float64 // Height difference per unit distance that triggers transfer
	TransferRate   float64 // Fraction of the excess moved per iteration
	Iterations     int     // Full-grid passes
}

// DefaultThermalConfig returns a configuration that rounds the sharp
// ridgelines and pits hydraulic erosion leaves behind.
func DefaultThermalConfig() ThermalConfig {
	return ThermalConfig{
		TalusThreshold: 0.012,
		TransferRate:   0.25,
		Iterations:     30,
	}
}

// SubtleThermal only touches very steep slopes.
func SubtleThermal() ThermalConfig {
	return ThermalConfig{
		TalusThreshold: 0.02,
		TransferRate:   0.1,
		Iterations:     12,
	}
}

// Relax runs the configured number of relaxation passes over the grid.
// Each pass accumulates transfers into a delta buffer and applies them
// after the full sweep, so results do not depend on cell visit order.
// Material flows from each cell to every neighbor whose drop exceeds the
// talus threshold, split proportionally to how far past the threshold each
// drop is. Diagonal differences are scaled by 1/√2 to approximate true
// slope distance.
func Relax(elev *grid.Grid[float64], cfg ThermalConfig) {
	if cfg.Iterations <= 0 {
		return
	}

	deltas := make([]float64, elev.Len())
	drops := [8]float64{}

	for iter := 0; iter < cfg.Iterations; iter++ {
		for i := range deltas {
			deltas[i] = 0
		}

		for y := 0; y < elev.H; y++ {
			for x := 0; x < elev.W; x++ {
				h := elev.At(x, y)

				totalExcess := 0.0
				maxDrop := 0.0
				for i, n := range grid.Neighbors8 {
					drops[i] = 0
					nx, ny := x+n.DX, y+n.DY
					if !elev.InBounds(nx, ny) {
						continue
					}
					d := (h - elev.At(nx, ny)) * grid.DiagScale[i]
					if d <= cfg.TalusThreshold {
						continue
					}
					drops[i] = d - cfg.TalusThreshold
					totalExcess += drops[i]
					if d > maxDrop {
						maxDrop = d
					}
				}
				if totalExcess <= 0 {
					continue
				}

				// Move a fraction of the steepest excess, split across the
				// over-threshold neighbors by their share of the total.
				transfer := (maxDrop - cfg.TalusThreshold) * cfg.TransferRate
				for i, n := range grid.Neighbors8 {
					if drops[i] <= 0 {
						continue
					}
					amt := transfer * drops[i] / totalExcess
					deltas[elev.Index(x, y)] -= amt
					deltas[elev.Index(x+n.DX, y+n.DY)] += amt
				}
			}
		}

		cells := elev.Cells()
		for i, d := range deltas {
			v := cells[i] + d
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			cells[i] = v
		}
	}
}
