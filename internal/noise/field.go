// Package noise provides the seeded coherent-noise sampler and the
// height-distribution shaper that produce the raw elevation field.
package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// FieldConfig holds fractal noise parameters.
type FieldConfig struct {
	Frequency   float64 // Base sampling frequency
	Octaves     int     // Number of layered octaves
	Lacunarity  float64 // Frequency multiplier per octave
	Persistence float64 // Amplitude multiplier per octave
	WarpAmp     float64 // Domain warp displacement, 0 disables warping
	WarpPasses  int     // Recursive warp passes, clamped to [0, 2]
}

// DefaultFieldConfig returns parameters tuned for gently rolling city-scale
// terrain: broad landforms with restrained fine detail.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		Frequency:   0.008,
		Octaves:     6,
		Lacunarity:  2.0,
		Persistence: 0.45,
		WarpAmp:     18.0,
		WarpPasses:  2,
	}
}

// Field is a deterministic multi-octave noise sampler with optional domain
// warping. The same seed and coordinates always produce the same value.
type Field struct {
	cfg     FieldConfig
	simplex opensimplex.Noise
	warpX   *perlin.Perlin
	warpY   *perlin.Perlin
}

// NewField creates a sampler for the given seed. The two auxiliary warp
// fields get their own derived seeds so they decorrelate from the primary.
func NewField(seed int64, cfg FieldConfig) *Field {
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	if cfg.WarpPasses < 0 {
		cfg.WarpPasses = 0
	}
	if cfg.WarpPasses > 2 {
		cfg.WarpPasses = 2
	}
	return &Field{
		cfg:     cfg,
		simplex: opensimplex.NewNormalized(seed),
		warpX:   perlin.NewPerlin(2, 2, 3, seed+1),
		warpY:   perlin.NewPerlin(2, 2, 3, seed+2),
	}
}

// Sample returns the fractal noise value at (x, y), normalized to [0, 1].
func (f *Field) Sample(x, y float64) float64 {
	// Warp the input coordinates before the primary sample. Each pass
	// displaces by auxiliary noise read at the already-warped position,
	// which bends the lattice enough to kill axis-aligned artifacts.
	if f.cfg.WarpAmp > 0 {
		const warpFreq = 0.004
		for pass := 0; pass < f.cfg.WarpPasses; pass++ {
			wx := f.warpX.Noise2D(x*warpFreq, y*warpFreq)
			wy := f.warpY.Noise2D(x*warpFreq, y*warpFreq)
			x += wx * f.cfg.WarpAmp
			y += wy * f.cfg.WarpAmp
		}
	}

	total := 0.0
	amplitude := 1.0
	frequency := f.cfg.Frequency
	ampSum := 0.0

	for i := 0; i < f.cfg.Octaves; i++ {
		total += f.simplex.Eval2(x*frequency, y*frequency) * amplitude
		ampSum += amplitude
		amplitude *= f.cfg.Persistence
		frequency *= f.cfg.Lacunarity
	}

	v := total / ampSum
	// Guard the arithmetic edge: ampSum is never zero with Octaves >= 1,
	// but clamp keeps downstream stages strictly inside [0, 1].
	if math.IsNaN(v) {
		return 0.5
	}
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
