package resources

import (
	"math"
	"math/rand"
	"sort"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
	"github.com/talgya/terragen/internal/water"
)

// Config holds placement parameters.
type Config struct {
	OreClusters   int     // Target ore cluster count
	OreMinSpacing float64 // Minimum distance between cluster centers, cells
	OreMinElev    float64 // Clusters only above this elevation
	OreBaseRadius float64 // Mean cluster radius, cells
	OreRichness   float64 // Deposit amount at a cluster center

	FertileThreshold float64 // Composite score cutoff
	FertileAmount    float64 // Deposit amount at threshold score 1.0

	OilPercentile float64 // Top percentile of the oil field that qualifies
	OilMinElev    float64 // Medium-low band the field is restricted to
	OilMaxElev    float64
	OilAmount     float64
}

// DefaultConfig returns placement parameters for a 256×256 map.
func DefaultConfig() Config {
	return Config{
		OreClusters:   9,
		OreMinSpacing: 28,
		OreMinElev:    0.5,
		OreBaseRadius: 5,
		OreRichness:   900,

		FertileThreshold: 0.62,
		FertileAmount:    400,

		OilPercentile: 0.985,
		OilMinElev:    0.32,
		OilMaxElev:    0.55,
		OilAmount:     1500,
	}
}

// Place runs all deposit passes and the forest field. Order matters:
// fertile before oil, because oil is excluded wherever fertile land
// already claimed the cell.
func Place(
	elev *grid.Grid[float64],
	bodies *water.BodyMap,
	waterDist *grid.Grid[float64],
	ff *hydrology.FlowField,
	clim *climate.Data,
	biomes *climate.BiomeGrid,
	seed int64,
	cfg Config,
) (*Map, *grid.Grid[float64]) {
	m := NewMap(elev.W, elev.H)
	rng := rand.New(rand.NewSource(seed + 300))

	placeOre(m, elev, bodies, rng, seed, cfg)
	placeFertile(m, elev, bodies, waterDist, ff, clim, cfg)
	placeOil(m, elev, bodies, seed, cfg)
	forest := forestDensity(elev, bodies, clim, biomes, seed)

	return m, forest
}

// placeOre rejection-samples cluster centers with a minimum pairwise
// spacing, then grows each into an irregular disk whose rim radius is
// perturbed per-angle by high-frequency noise. Richness falls off linearly
// from center to rim.
func placeOre(m *Map, elev *grid.Grid[float64], bodies *water.BodyMap, rng *rand.Rand, seed int64, cfg Config) {
	rim := perlin.NewPerlin(2, 2, 3, seed+31)

	type center struct{ x, y float64 }
	var centers []center

	maxAttempts := cfg.OreClusters * 40
	for attempt := 0; attempt < maxAttempts && len(centers) < cfg.OreClusters; attempt++ {
		x := rng.Float64() * float64(elev.W-1)
		y := rng.Float64() * float64(elev.H-1)

		cx, cy := int(x), int(y)
		if elev.At(cx, cy) < cfg.OreMinElev || bodies.IsWater(cx, cy) {
			continue
		}
		ok := true
		for _, c := range centers {
			dx, dy := x-c.x, y-c.y
			if math.Sqrt(dx*dx+dy*dy) < cfg.OreMinSpacing {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		centers = append(centers, center{x, y})

		kind := pickOreKind(rng)
		growCluster(m, elev, bodies, rim, x, y, kind, cfg)
	}
}

// growCluster fills the irregular disk around a center. For each candidate
// cell the rim radius in its direction is the base radius perturbed by
// noise sampled per angle.
func growCluster(m *Map, elev *grid.Grid[float64], bodies *water.BodyMap, rim *perlin.Perlin, cx, cy float64, kind Kind, cfg Config) {
	maxR := cfg.OreBaseRadius * 1.6
	lo := int(math.Ceil(maxR))

	for dy := -lo; dy <= lo; dy++ {
		for dx := -lo; dx <= lo; dx++ {
			x := int(cx) + dx
			y := int(cy) + dy
			if !elev.InBounds(x, y) || bodies.IsWater(x, y) {
				continue
			}
			dist := math.Sqrt(float64(dx*dx + dy*dy))
			angle := math.Atan2(float64(dy), float64(dx))
			radius := cfg.OreBaseRadius * (1 + 0.5*rim.Noise2D(cx*0.13+math.Cos(angle)*2, cy*0.13+math.Sin(angle)*2))
			if radius < 1 {
				radius = 1
			}
			if dist > radius {
				continue
			}

			idx := y*m.W + x
			if _, taken := m.Deposits[idx]; taken {
				continue
			}
			richness := cfg.OreRichness * (1 - dist/radius)
			if richness <= 0 {
				continue
			}
			m.Deposits[idx] = Deposit{Kind: kind, Amount: richness, MaxAmount: richness}
		}
	}
}

// placeFertile thresholds a composite score: low but dry elevation, water
// proximity, moisture, and upstream flow (floodplains are fertile).
func placeFertile(
	m *Map,
	elev *grid.Grid[float64],
	bodies *water.BodyMap,
	waterDist *grid.Grid[float64],
	ff *hydrology.FlowField,
	clim *climate.Data,
	cfg Config,
) {
	accum := ff.Accum.Cells()
	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			if bodies.IsWater(x, y) {
				continue
			}
			idx := y*elev.W + x
			if _, taken := m.Deposits[idx]; taken {
				continue
			}

			e := elev.At(x, y)
			score := 0.0
			// Low-but-not-submerged band peaks a little above sea level.
			if e < 0.5 {
				score += 0.3 * (1 - math.Abs(e-0.36)/0.14)
			}
			score += 0.25 * math.Exp(-waterDist.At(x, y)/10)
			score += 0.3 * clim.Moisture.At(x, y)
			score += 0.15 * math.Min(1, math.Log1p(float64(accum[idx]))/8)

			if score < cfg.FertileThreshold {
				continue
			}
			amount := cfg.FertileAmount * score
			m.Deposits[idx] = Deposit{Kind: KindFertile, Amount: amount, MaxAmount: amount}
		}
	}
}

// placeOil thresholds a very-low-frequency field to a narrow top
// percentile inside a medium-low elevation band. Cells already holding a
// fertile deposit are skipped, so the two never conflict.
func placeOil(m *Map, elev *grid.Grid[float64], bodies *water.BodyMap, seed int64, cfg Config) {
	field := opensimplex.NewNormalized(seed + 47)

	// Sample the field everywhere once so the cutoff is an exact
	// percentile of this map, not a guessed constant.
	values := make([]float64, elev.Len())
	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			values[y*elev.W+x] = field.Eval2(float64(x)*0.012, float64(y)*0.012)
		}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	cut := sorted[int(float64(len(sorted)-1)*cfg.OilPercentile)]

	for y := 0; y < elev.H; y++ {
		for x := 0; x < elev.W; x++ {
			idx := y*elev.W + x
			if values[idx] < cut || bodies.IsWater(x, y) {
				continue
			}
			e := elev.At(x, y)
			if e < cfg.OilMinElev || e > cfg.OilMaxElev {
				continue
			}
			if _, taken := m.Deposits[idx]; taken {
				continue
			}
			m.Deposits[idx] = Deposit{Kind: KindOil, Amount: cfg.OilAmount, MaxAmount: cfg.OilAmount}
		}
	}
}
