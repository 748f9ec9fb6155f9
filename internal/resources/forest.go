package resources

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/water"
)

// biomeTreeDensity is the base canopy density per biome.
func biomeTreeDensity(b climate.Biome) float64 {
	switch b {
	case climate.BiomeRainforest:
		return 1.0
	case climate.BiomeTemperateForest:
		return 0.85
	case climate.BiomeTaiga:
		return 0.7
	case climate.BiomeWetland:
		return 0.45
	case climate.BiomeSavanna:
		return 0.3
	case climate.BiomeShrubland:
		return 0.25
	case climate.BiomeGrassland:
		return 0.15
	case climate.BiomeTundra, climate.BiomeAlpine:
		return 0.05
	default:
		return 0
	}
}

const (
	forestPatchFreq  = 0.045 // Mid-frequency patchiness
	forestSlopeAtten = 14.0  // Slope that roughly halves density
	oldGrowthEdge    = 0.2   // Fraction of the map counted as edge margin
	oldGrowthBonus   = 0.25
)

// forestDensity computes the continuous tree-cover scalar per cell: biome
// base density shaped by patchy noise, moisture, and slope, with a bonus
// for dense stands far from the map edge (old growth).
func forestDensity(
	elev *grid.Grid[float64],
	bodies *water.BodyMap,
	clim *climate.Data,
	biomes *climate.BiomeGrid,
	seed int64,
) *grid.Grid[float64] {
	patch := opensimplex.NewNormalized(seed + 53)
	out := grid.New[float64](elev.W, elev.H)

	marginX := float64(elev.W) * oldGrowthEdge
	marginY := float64(elev.H) * oldGrowthEdge

	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			if bodies.IsWater(x, y) {
				continue
			}
			base := biomeTreeDensity(biomes.At(x, y))
			if base == 0 {
				continue
			}

			p := patch.Eval2(float64(x)*forestPatchFreq, float64(y)*forestPatchFreq)
			moist := 0.4 + 0.6*clim.Moisture.At(x, y)
			slopeFactor := math.Max(0, 1-grid.Slope(elev, x, y)*forestSlopeAtten)

			d := base * p * moist * slopeFactor

			// Old growth: dense cover deep in the map interior thickens.
			edgeDist := math.Min(
				math.Min(float64(x), float64(elev.W-1-x)),
				math.Min(float64(y), float64(elev.H-1-y)),
			)
			if d > 0.5 && edgeDist > marginX && edgeDist > marginY {
				d += oldGrowthBonus * (d - 0.5)
			}

			if d > 1 {
				d = 1
			}
			out.Set(x, y, d)
		}
	}
	return out
}
