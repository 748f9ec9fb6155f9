package climate

import (
	"github.com/aquilax/go-perlin"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/water"
)

// Biome tags a land cell's dominant ecosystem.
type Biome uint8

const (
	BiomeTundra Biome = iota
	BiomeTaiga
	BiomeGrassland
	BiomeShrubland
	BiomeTemperateForest
	BiomeRainforest
	BiomeSavanna
	BiomeDesert
	BiomeAlpine
	BiomeWetland
	BiomeWater // Placeholder tag for water cells
)

// BiomeName returns a human-readable name for a biome.
func BiomeName(b Biome) string {
	switch b {
	case BiomeTundra:
		return "tundra"
	case BiomeTaiga:
		return "taiga"
	case BiomeGrassland:
		return "grassland"
	case BiomeShrubland:
		return "shrubland"
	case BiomeTemperateForest:
		return "temperate forest"
	case BiomeRainforest:
		return "rainforest"
	case BiomeSavanna:
		return "savanna"
	case BiomeDesert:
		return "desert"
	case BiomeAlpine:
		return "alpine"
	case BiomeWetland:
		return "wetland"
	case BiomeWater:
		return "water"
	default:
		return "unknown"
	}
}

// whittakerTable partitions (temperature bucket, moisture bucket) into
// biomes. Rows are temperature cold→hot, columns moisture dry→wet.
var whittakerTable = [4][4]Biome{
	{BiomeTundra, BiomeTundra, BiomeTaiga, BiomeTaiga},
	{BiomeShrubland, BiomeGrassland, BiomeTaiga, BiomeTemperateForest},
	{BiomeGrassland, BiomeGrassland, BiomeTemperateForest, BiomeTemperateForest},
	{BiomeDesert, BiomeSavanna, BiomeRainforest, BiomeRainforest},
}

// Override thresholds applied before the table lookup.
const (
	alpineElevation  = 0.82
	alpineMaxTemp    = 4.0
	forceColdTemp    = -8.0
	wetlandElevation = 0.36
	wetlandMoisture  = 0.78
)

// BiomeGrid holds the primary classification plus an optional secondary
// biome and blend factor at boundaries, for consumers that want soft
// transitions instead of hard tile edges.
type BiomeGrid struct {
	Primary   *grid.Grid[uint8]
	Secondary *grid.Grid[uint8]
	Blend     *grid.Grid[float64] // 0 = pure primary, 0.5 = even mix
}

// At returns the primary biome of a cell.
func (bg *BiomeGrid) At(x, y int) Biome {
	return Biome(bg.Primary.At(x, y))
}

// ClassifyBiomes assigns a biome per cell from the climate fields and
// elevation. Boundary blending perturbs the inputs with a small per-cell
// noise value and records a secondary biome where the perturbed
// classification disagrees with the primary one.
func ClassifyBiomes(elev *grid.Grid[float64], clim *Data, bodies *water.BodyMap, seed int64) *BiomeGrid {
	bg := &BiomeGrid{
		Primary:   grid.New[uint8](elev.W, elev.H),
		Secondary: grid.New[uint8](elev.W, elev.H),
		Blend:     grid.New[float64](elev.W, elev.H),
	}

	// Jitter noise for edge blending; high frequency relative to climate
	// gradients so blend bands stay narrow.
	jitter := perlin.NewPerlin(2, 2, 3, seed+17)

	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			if bodies.IsWater(x, y) {
				bg.Primary.Set(x, y, uint8(BiomeWater))
				bg.Secondary.Set(x, y, uint8(BiomeWater))
				continue
			}

			e := elev.At(x, y)
			t := clim.Temperature.At(x, y)
			m := clim.Moisture.At(x, y)

			primary := classifyOne(e, t, m)
			bg.Primary.Set(x, y, uint8(primary))

			// Perturb inputs and reclassify; a disagreement marks a
			// boundary cell.
			j := jitter.Noise2D(float64(x)*0.15, float64(y)*0.15)
			alt := classifyOne(e+j*0.03, t+j*1.5, m+j*0.06)
			if alt != primary {
				bg.Secondary.Set(x, y, uint8(alt))
				bg.Blend.Set(x, y, 0.25+absf(j)*0.5)
			} else {
				bg.Secondary.Set(x, y, uint8(primary))
			}
		}
	}

	return bg
}

// classifyOne applies the override rules, then the partition table.
func classifyOne(elev, temp, moisture float64) Biome {
	// Hard overrides first: cold heights are alpine regardless of
	// moisture, and saturated lowland is wetland regardless of bucket.
	if temp < forceColdTemp || (elev > alpineElevation && temp < alpineMaxTemp) {
		if elev > alpineElevation {
			return BiomeAlpine
		}
		return BiomeTundra
	}
	if elev < wetlandElevation && moisture > wetlandMoisture {
		return BiomeWetland
	}

	ti := tempBucket(temp)
	mi := moistureBucket(moisture)
	return whittakerTable[ti][mi]
}

func tempBucket(t float64) int {
	switch {
	case t < 0:
		return 0
	case t < 8:
		return 1
	case t < 18:
		return 2
	default:
		return 3
	}
}

func moistureBucket(m float64) int {
	switch {
	case m < 0.25:
		return 0
	case m < 0.5:
		return 1
	case m < 0.75:
		return 2
	default:
		return 3
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
