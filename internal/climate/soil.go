package climate

import (
	"github.com/talgya/terragen/internal/grid"
)

// Soil tags a cell's soil class, derived from elevation, slope, and water
// distance. The city simulation reads it for drainage and foundation cost.
type Soil uint8

const (
	SoilLoam Soil = iota
	SoilSilt
	SoilClay
	SoilSand
	SoilPeat
	SoilRocky
)

// SoilName returns a human-readable name for a soil class.
func SoilName(s Soil) string {
	switch s {
	case SoilLoam:
		return "loam"
	case SoilSilt:
		return "silt"
	case SoilClay:
		return "clay"
	case SoilSand:
		return "sand"
	case SoilPeat:
		return "peat"
	case SoilRocky:
		return "rocky"
	default:
		return "unknown"
	}
}

// Drainage returns how quickly a soil sheds water in [0,1]; low values
// hold water and raise flood risk.
func (s Soil) Drainage() float64 {
	switch s {
	case SoilSand:
		return 0.9
	case SoilRocky:
		return 0.75
	case SoilLoam:
		return 0.6
	case SoilSilt:
		return 0.4
	case SoilClay:
		return 0.2
	case SoilPeat:
		return 0.1
	default:
		return 0.5
	}
}

const (
	soilRockySlope = 0.045 // Slope beyond which bedrock dominates
	soilShoreDist  = 3.0   // Cells from water counted as shoreline
	soilValleyDist = 12.0  // Cells from water counted as valley floor
	soilHighElev   = 0.7
	soilLowElev    = 0.42
)

// ClassifySoils derives the soil grid. Water cells keep the zero value;
// consumers gate on the water map first.
func ClassifySoils(elev, waterDist *grid.Grid[float64], moisture *grid.Grid[float64]) *grid.Grid[uint8] {
	soils := grid.New[uint8](elev.W, elev.H)
	ClassifySoilsRegion(soils, elev, waterDist, moisture, 0, 0, elev.W-1, elev.H-1)
	return soils
}

// ClassifySoilsRegion recomputes soil for the inclusive cell rectangle
// [x0,x1]×[y0,y1]. Terrain edits use this for scoped recompute instead of
// re-deriving the whole grid.
func ClassifySoilsRegion(soils *grid.Grid[uint8], elev, waterDist, moisture *grid.Grid[float64], x0, y0, x1, y1 int) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			soils.Set(x, y, uint8(soilAt(elev, waterDist, moisture, x, y)))
		}
	}
}

func soilAt(elev, waterDist, moisture *grid.Grid[float64], x, y int) Soil {
	e := elev.At(x, y)
	slope := grid.Slope(elev, x, y)
	dist := waterDist.At(x, y)
	m := moisture.At(x, y)

	switch {
	case slope > soilRockySlope || e > soilHighElev:
		return SoilRocky
	case dist < soilShoreDist && m > 0.65 && e < soilLowElev:
		return SoilPeat
	case dist < soilShoreDist:
		return SoilSand
	case dist < soilValleyDist && e < soilLowElev:
		return SoilSilt
	case m < 0.25:
		return SoilSand
	case m > 0.6:
		return SoilClay
	default:
		return SoilLoam
	}
}
