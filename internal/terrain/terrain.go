// Package terrain orchestrates the full generation pipeline: noise,
// shaping, erosion, hydrology, classification, resources, and validation.
// Generate is the single entry point external callers use.
package terrain

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/erosion"
	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
	"github.com/talgya/terragen/internal/noise"
	"github.com/talgya/terragen/internal/resources"
	"github.com/talgya/terragen/internal/validate"
	"github.com/talgya/terragen/internal/water"
)

// Params bundles every stage's configuration. Zero-value fields are not
// meaningful; start from DefaultParams.
type Params struct {
	Width, Height int

	Preset    climate.Preset
	Field     noise.FieldConfig
	Bands     noise.Bands
	Hydraulic erosion.HydraulicConfig
	Thermal   erosion.ThermalConfig
	River     hydrology.RiverConfig
	Resource  resources.Config
	Rules     validate.Rules

	LakeMinDepth float64 // Priority-flood minimum lake depth
	MaxAttempts  int     // Seed retries before terrain surgery
}

// DefaultParams returns the standard 256×256 temperate configuration.
func DefaultParams() Params {
	return Params{
		Width:  256,
		Height: 256,

		Preset:    climate.TemperatePreset(),
		Field:     noise.DefaultFieldConfig(),
		Bands:     noise.DefaultBands(),
		Hydraulic: erosion.DefaultHydraulicConfig(),
		Thermal:   erosion.DefaultThermalConfig(),
		River:     hydrology.DefaultRiverConfig(),
		Resource:  resources.DefaultConfig(),
		Rules:     validate.DefaultRules(),

		LakeMinDepth: 0.004,
		MaxAttempts:  5,
	}
}

// Result is the finished grid set handed to rendering and simulation.
// After handoff only ApplyEdit mutates it, and only within a bounded
// region.
type Result struct {
	ID     uuid.UUID
	Seed   int64 // Seed the accepted attempt actually used
	W, H   int
	Preset climate.Preset

	SeaLevel  float64
	Elevation *grid.Grid[float64]
	Flow      *hydrology.FlowField
	Lakes     *hydrology.FillResult
	Rivers    []hydrology.River
	Water     *water.BodyMap
	WaterDist *grid.Grid[float64]
	Climate   *climate.Data
	Biomes    *climate.BiomeGrid
	Soils     *grid.Grid[uint8]
	FloodRisk *grid.Grid[float64]
	Faults    FaultLineSet
	Seismic   *grid.Grid[float64]
	Deposits  *resources.Map
	Forest    *grid.Grid[float64]

	Report         validate.Report
	SurgeryApplied bool

	// Modified is set once a manual edit lands; from then on regeneration
	// from the seed alone cannot reproduce this map and the stored grid
	// is authoritative.
	Modified bool
}

// Generate runs the deterministic pipeline. Failed validation retries with
// an incremented seed up to MaxAttempts; if every attempt fails, terrain
// surgery flattens a central region of the last attempt so the contract
// holds: Generate always returns a playable result, never an error.
func Generate(seed int64, p Params) *Result {
	start := time.Now()

	var res *Result
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		attemptSeed := seed + int64(attempt)
		elev := buildElevation(attemptSeed, p)
		res = derive(attemptSeed, p, elev)

		if res.Report.Passes(p.Rules) {
			logResult(res, attempt, time.Since(start))
			return res
		}
		slog.Info("map rejected, retrying with next seed",
			"seed", attemptSeed,
			"attempt", attempt+1,
			"failures", res.Report.Failures(p.Rules),
		)
	}

	// Last resort: flatten a central region toward the middle of the
	// buildable band and rebuild the derived grids. Deterministic, and
	// guaranteed to produce usable flat land.
	slog.Warn("all attempts rejected, applying terrain surgery", "seed", res.Seed)
	radius := min(p.Width, p.Height) / 3
	target := (p.Bands.SeaLevel + p.Bands.FlatTop) / 2
	validate.Surgery(res.Elevation, p.Width/2, p.Height/2, radius, target)

	res = derive(res.Seed, p, res.Elevation)
	res.SurgeryApplied = true
	logResult(res, p.MaxAttempts, time.Since(start))
	return res
}

// buildElevation runs stages 1–4: noise synthesis, distribution shaping,
// hydraulic carving, thermal relaxation.
func buildElevation(seed int64, p Params) *grid.Grid[float64] {
	elev := grid.New[float64](p.Width, p.Height)
	fillNoise(elev, seed, p.Field)
	noise.ShapeHeights(elev, p.Bands)

	rng := rand.New(rand.NewSource(seed + 100))
	erosion.NewHydraulic(p.Hydraulic).Erode(elev, rng)
	erosion.Relax(elev, p.Thermal)
	return elev
}

// derive runs stages 5–10 over a settled elevation grid and assembles the
// result. Also used to rebuild everything after terrain surgery.
func derive(seed int64, p Params, elev *grid.Grid[float64]) *Result {
	seaLevel := p.Bands.SeaLevel

	flow := hydrology.Accumulate(elev)
	lakes := hydrology.FillDepressions(elev, p.LakeMinDepth)
	rivers := hydrology.ExtractRivers(elev, flow, lakes, seaLevel, p.River)

	bodies := water.Classify(elev, lakes, rivers, seaLevel)
	waterDist := water.DistanceField(bodies)

	clim := climate.Compute(elev, waterDist, p.Preset)
	biomes := climate.ClassifyBiomes(elev, clim, bodies, seed)
	soils := climate.ClassifySoils(elev, waterDist, clim.Moisture)

	deposits, forest := resources.Place(elev, bodies, waterDist, flow, clim, biomes, seed, p.Resource)

	faults := generateFaults(seed, p.Width, p.Height)
	seismic := seismicRisk(faults, p.Width, p.Height)
	floodRisk := deriveFloodRisk(elev, bodies, waterDist, flow, soils, seaLevel)

	report := validate.Assess(elev, bodies, waterDist, p.Rules)

	return &Result{
		ID:     uuid.NewSHA1(uuid.NameSpaceOID, seedBytes(seed)),
		Seed:   seed,
		W:      p.Width,
		H:      p.Height,
		Preset: p.Preset,

		SeaLevel:  seaLevel,
		Elevation: elev,
		Flow:      flow,
		Lakes:     lakes,
		Rivers:    rivers,
		Water:     bodies,
		WaterDist: waterDist,
		Climate:   clim,
		Biomes:    biomes,
		Soils:     soils,
		FloodRisk: floodRisk,
		Faults:    faults,
		Seismic:   seismic,
		Deposits:  deposits,
		Forest:    forest,

		Report: report,
	}
}

// fillNoise samples the fractal field for every cell. Sampling is a pure
// function per cell, so rows are striped across workers.
func fillNoise(elev *grid.Grid[float64], seed int64, cfg noise.FieldConfig) {
	field := noise.NewField(seed, cfg)
	parallelRows(elev.H, func(y int) {
		for x := 0; x < elev.W; x++ {
			elev.Set(x, y, field.Sample(float64(x), float64(y)))
		}
	})
}

func logResult(res *Result, attempts int, elapsed time.Duration) {
	slog.Info("terrain generated",
		"seed", res.Seed,
		"cells", humanize.Comma(int64(res.W*res.H)),
		"attempts", attempts+1,
		"surgery", res.SurgeryApplied,
		"water_fraction", res.Report.WaterFraction,
		"flat_fraction", res.Report.FlatFraction,
		"rivers", len(res.Rivers),
		"lakes", len(res.Lakes.Lakes),
		"deposits", humanize.Comma(int64(len(res.Deposits.Deposits))),
		"elapsed", elapsed,
	)
}

func seedBytes(seed int64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(seed >> (8 * i))
	}
	return b
}
