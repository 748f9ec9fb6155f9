// Package erosion carves the shaped elevation field: a particle-based
// hydraulic pass cuts drainage channels, then a thermal relaxation pass
// settles slopes past the angle of repose.
package erosion

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/terragen/internal/grid"
)

// HydraulicConfig holds droplet simulation parameters.
type HydraulicConfig struct {
	Inertia          float64 // Direction blend in [0,1]; higher follows momentum over gradient
	CapacityFactor   float64 // Scales sediment carrying capacity
	MinSlope         float64 // Floor on the slope term so flats still transport a little
	DepositionRate   float64 // Fraction of excess sediment dropped per step
	ErosionRate      float64 // Fraction of the capacity deficit picked up per step
	EvaporationRate  float64 // Water fraction lost per step
	Gravity          float64 // Speed gain per unit of descent
	InitialWater     float64 // Water volume at spawn
	InitialSpeed     float64 // Speed at spawn
	MaxLifetime      int     // Step cap per droplet
	BrushRadius      int     // Radius of the circular erosion/deposition brush
	ParticlesPerCell float64 // Droplet count as a multiple of the grid cell count
}

// DefaultHydraulicConfig returns a balanced carving configuration.
func DefaultHydraulicConfig() HydraulicConfig {
	return HydraulicConfig{
		Inertia:          0.05,
		CapacityFactor:   4.0,
		MinSlope:         0.01,
		DepositionRate:   0.3,
		ErosionRate:      0.3,
		EvaporationRate:  0.02,
		Gravity:          4.0,
		InitialWater:     1.0,
		InitialSpeed:     1.0,
		MaxLifetime:      48,
		BrushRadius:      3,
		ParticlesPerCell: 2.0,
	}
}

// GentleHydraulic keeps most of the shaped terrain intact; useful for maps
// that should stay buildable with only light valley definition.
func GentleHydraulic() HydraulicConfig {
	cfg := DefaultHydraulicConfig()
	cfg.ErosionRate = 0.15
	cfg.ParticlesPerCell = 1.0
	return cfg
}

// Hydraulic runs droplet erosion against a shared heightmap. The brush
// offsets and weights are computed once at construction; the per-step loop
// does not allocate.
type Hydraulic struct {
	cfg          HydraulicConfig
	brushOffsets []grid.Offset
	brushWeights []float64
}

// NewHydraulic precomputes the circular falloff brush for the configured
// radius. Weights fall off linearly from center to rim and sum to one.
func NewHydraulic(cfg HydraulicConfig) *Hydraulic {
	h := &Hydraulic{cfg: cfg}

	r := cfg.BrushRadius
	if r < 1 {
		r = 1
	}
	total := 0.0
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d > float64(r) {
				continue
			}
			w := 1 - d/float64(r)
			if w <= 0 {
				continue
			}
			h.brushOffsets = append(h.brushOffsets, grid.Offset{DX: dx, DY: dy})
			h.brushWeights = append(h.brushWeights, w)
			total += w
		}
	}
	for i := range h.brushWeights {
		h.brushWeights[i] /= total
	}
	return h
}

// Erode runs the full droplet population against the elevation grid. The
// droplet count scales with grid size so larger maps get equivalent
// carving density. All randomness comes from the supplied rng.
func (h *Hydraulic) Erode(elev *grid.Grid[float64], rng *rand.Rand) {
	count := int(h.cfg.ParticlesPerCell * float64(elev.Len()))
	for i := 0; i < count; i++ {
		pos := mgl64.Vec2{
			rng.Float64() * float64(elev.W-1),
			rng.Float64() * float64(elev.H-1),
		}
		h.simulate(elev, pos, rng)
	}
}

// ErodeOne runs a single droplet from an explicit spawn position.
func (h *Hydraulic) ErodeOne(elev *grid.Grid[float64], x, y float64, rng *rand.Rand) {
	h.simulate(elev, mgl64.Vec2{x, y}, rng)
}

func (h *Hydraulic) simulate(elev *grid.Grid[float64], pos mgl64.Vec2, rng *rand.Rand) {
	cfg := h.cfg

	dir := mgl64.Vec2{}
	speed := cfg.InitialSpeed
	water := cfg.InitialWater
	sediment := 0.0

	for step := 0; step < cfg.MaxLifetime; step++ {
		oldPos := pos
		oldHeight := grid.Bilinear(elev, pos[0], pos[1])
		gx, gy := grid.Gradient(elev, pos[0], pos[1])

		// Blend the downhill gradient with the previous direction. A flat
		// neighborhood yields a near-zero blend; substitute a random unit
		// direction instead of letting a degenerate vector propagate.
		dir = dir.Mul(cfg.Inertia).Sub(mgl64.Vec2{gx, gy}.Mul(1 - cfg.Inertia))
		if dir.Len() < 1e-10 {
			angle := rng.Float64() * 2 * math.Pi
			dir = mgl64.Vec2{math.Cos(angle), math.Sin(angle)}
		}
		dir = dir.Normalize()
		pos = pos.Add(dir)

		if pos[0] < 0 || pos[0] > float64(elev.W-1) || pos[1] < 0 || pos[1] > float64(elev.H-1) {
			// Left the grid: drop whatever the droplet still carries where
			// it last stood, then die.
			h.applyBrush(elev, oldPos, sediment)
			return
		}

		newHeight := grid.Bilinear(elev, pos[0], pos[1])
		delta := newHeight - oldHeight

		capacity := math.Max(-delta, cfg.MinSlope) * speed * water * cfg.CapacityFactor

		if sediment > capacity || delta > 0 {
			// Deposit: fill the uphill step, or shed the excess over capacity.
			var amount float64
			if delta > 0 {
				amount = math.Min(delta, sediment)
			} else {
				amount = (sediment - capacity) * cfg.DepositionRate
			}
			sediment -= amount
			h.applyBrush(elev, oldPos, amount)
		} else {
			// Erode up to the capacity deficit, never more than the local
			// drop so the droplet cannot dig below its destination.
			amount := math.Min((capacity-sediment)*cfg.ErosionRate, -delta)
			sediment += amount
			h.applyBrush(elev, oldPos, -amount)
		}

		// Energy update: descending trades height for speed.
		speedSq := speed*speed - delta*cfg.Gravity
		if speedSq < 0 {
			speedSq = 0
		}
		speed = math.Sqrt(speedSq)

		water *= 1 - cfg.EvaporationRate
		if water < 1e-6 {
			break
		}
	}

	// Lifetime or water exhausted: leave remaining sediment behind.
	h.applyBrush(elev, pos, sediment)
}

// applyBrush spreads a signed height change around a continuous position
// using the precomputed falloff kernel. Offsets that land outside the grid
// are skipped. Elevations are clamped to [0, 1] as they change.
func (h *Hydraulic) applyBrush(elev *grid.Grid[float64], pos mgl64.Vec2, amount float64) {
	if amount == 0 {
		return
	}
	cx := int(math.Round(pos[0]))
	cy := int(math.Round(pos[1]))
	for i, off := range h.brushOffsets {
		x, y := cx+off.DX, cy+off.DY
		if !elev.InBounds(x, y) {
			continue
		}
		v := elev.At(x, y) + amount*h.brushWeights[i]
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		elev.Set(x, y, v)
	}
}
