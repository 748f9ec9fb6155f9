package hydrology

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/terragen/internal/grid"
)

// RiverConfig holds river extraction parameters.
type RiverConfig struct {
	MinAccum      int32   // Accumulation threshold for river eligibility
	WidthBase     float64 // Width at the threshold accumulation, in cells
	WidthScale    float64 // Logarithmic width growth with accumulation
	MaxWidth      float64 // Saturation cap on width
	MeanderAmp    float64 // Lateral meander amplitude, in cells
	MeanderFreq   float64 // Meander oscillations per traced step
	SlopeDamping  float64 // How strongly local slope suppresses meander
	DeltaChannels int     // Distributary channels fanned at a river mouth
	DeltaLength   int     // Steps each distributary marches into open water
	DeltaDeposit  float64 // Initial sediment raise per distributary step
	MaxLength     int     // Hard cap on traced centerline length
}

// DefaultRiverConfig returns parameters for visible but restrained rivers
// on a city-scale map.
func DefaultRiverConfig() RiverConfig {
	return RiverConfig{
		MinAccum:      220,
		WidthBase:     1.0,
		WidthScale:    0.55,
		MaxWidth:      5.0,
		MeanderAmp:    1.2,
		MeanderFreq:   0.35,
		SlopeDamping:  18.0,
		DeltaChannels: 3,
		DeltaLength:   6,
		DeltaDeposit:  0.004,
		MaxLength:     4096,
	}
}

// RiverPoint is one traced centerline sample.
type RiverPoint struct {
	X, Y  int        // Grid cell the sample belongs to
	Pos   mgl64.Vec2 // Continuous position including meander offset
	Width float64    // Channel width in cells
	Dir   mgl64.Vec2 // Unit flow direction
}

// River is a traced channel from headwater to mouth or confluence.
type River struct {
	Points   []RiverPoint
	HasDelta bool // True when the mouth fanned into distributaries
}

// ExtractRivers thresholds the flow field, traces each headwater
// downstream, and shapes widths, meanders, and mouth deltas. Delta
// formation deposits a small amount of sediment into the elevation grid
// where distributaries enter standing water.
func ExtractRivers(elev *grid.Grid[float64], ff *FlowField, fill *FillResult, seaLevel float64, cfg RiverConfig) []River {
	w := elev.W
	accum := ff.Accum.Cells()
	raw := elev.Cells()

	eligible := func(idx int) bool { return accum[idx] >= cfg.MinAccum }
	standingWater := func(idx int) bool {
		return raw[idx] < seaLevel || fill.IsLake(idx)
	}

	// Headwaters: river-eligible cells with no strictly higher eligible
	// neighbor feeding them. Collected in ascending index order.
	var heads []int
	for idx := range raw {
		if !eligible(idx) || standingWater(idx) {
			continue
		}
		x := idx % w
		y := idx / w
		isHead := true
		for _, nb := range grid.Neighbors8 {
			nx, ny := x+nb.DX, y+nb.DY
			if !elev.InBounds(nx, ny) {
				continue
			}
			nidx := elev.Index(nx, ny)
			if eligible(nidx) && raw[nidx] > raw[idx] {
				isHead = false
				break
			}
		}
		if isHead {
			heads = append(heads, idx)
		}
	}
	sort.Ints(heads)

	claimed := make([]bool, len(raw))
	var rivers []River

	for _, head := range heads {
		r := traceRiver(elev, ff, fill, claimed, head, seaLevel, cfg, eligible, standingWater)
		if len(r.Points) > 1 {
			rivers = append(rivers, r)
		}
	}
	return rivers
}

// traceRiver follows steepest descent from a headwater until the channel
// leaves the eligible set, joins an already-traced river, or reaches
// standing water. Joining an existing channel ends the trace at the
// confluence; the downstream cells already belong to the other river.
func traceRiver(
	elev *grid.Grid[float64],
	ff *FlowField,
	fill *FillResult,
	claimed []bool,
	head int,
	seaLevel float64,
	cfg RiverConfig,
	eligible func(int) bool,
	standingWater func(int) bool,
) River {
	w := elev.W
	accum := ff.Accum.Cells()

	var r River
	idx := head
	for step := 0; step < cfg.MaxLength; step++ {
		x := idx % w
		y := idx / w

		next := int(ff.Downstream[idx])
		dir := mgl64.Vec2{0, 1}
		if next >= 0 {
			dir = mgl64.Vec2{
				float64(next%w - x),
				float64(next/w - y),
			}
			if l := dir.Len(); l > 1e-9 {
				dir = dir.Mul(1 / l)
			}
		}

		// Meander: lateral sinusoidal offset, damped toward zero on steep
		// ground. Rivers wander on plains and run straight down cliffs.
		slope := grid.Slope(elev, x, y)
		amp := cfg.MeanderAmp * math.Max(0, 1-slope*cfg.SlopeDamping)
		lateral := mgl64.Vec2{-dir[1], dir[0]}.Mul(amp * math.Sin(float64(step)*cfg.MeanderFreq*2*math.Pi))

		r.Points = append(r.Points, RiverPoint{
			X:     x,
			Y:     y,
			Pos:   mgl64.Vec2{float64(x), float64(y)}.Add(lateral),
			Width: channelWidth(accum[idx], cfg),
			Dir:   dir,
		})

		if standingWater(idx) {
			formDelta(elev, &r, seaLevel, cfg)
			break
		}
		if claimed[idx] {
			break // Confluence with an already-traced river.
		}
		claimed[idx] = true

		if next < 0 || !eligible(next) {
			break
		}
		idx = next
	}
	return r
}

// channelWidth grows logarithmically with accumulation and saturates at
// the configured cap: headwaters stay narrow, confluences widen.
func channelWidth(accum int32, cfg RiverConfig) float64 {
	excess := float64(accum - cfg.MinAccum)
	if excess < 0 {
		excess = 0
	}
	w := cfg.WidthBase + cfg.WidthScale*math.Log1p(excess)
	if w > cfg.MaxWidth {
		w = cfg.MaxWidth
	}
	return w
}

// formDelta fans the final river segment into diverging distributary
// channels and deposits decaying sediment along each, building the shallow
// fan real rivers leave where they enter standing water.
func formDelta(elev *grid.Grid[float64], r *River, seaLevel float64, cfg RiverConfig) {
	if cfg.DeltaChannels <= 0 || len(r.Points) == 0 {
		return
	}
	mouth := r.Points[len(r.Points)-1]
	baseAngle := math.Atan2(mouth.Dir[1], mouth.Dir[0])

	const spread = math.Pi / 5
	for c := 0; c < cfg.DeltaChannels; c++ {
		frac := 0.5
		if cfg.DeltaChannels > 1 {
			frac = float64(c) / float64(cfg.DeltaChannels-1)
		}
		angle := baseAngle + (frac-0.5)*2*spread
		step := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}

		pos := mouth.Pos
		deposit := cfg.DeltaDeposit
		for i := 0; i < cfg.DeltaLength; i++ {
			pos = pos.Add(step)
			x := int(math.Round(pos[0]))
			y := int(math.Round(pos[1]))
			if !elev.InBounds(x, y) {
				break
			}
			// Build up the bed without breaching the surface.
			v := elev.At(x, y) + deposit
			if v > seaLevel-1e-4 {
				v = seaLevel - 1e-4
			}
			if v > elev.At(x, y) {
				elev.Set(x, y, v)
			}
			deposit *= 0.65

			r.Points = append(r.Points, RiverPoint{
				X: x, Y: y,
				Pos:   pos,
				Width: mouth.Width * (1 - float64(i)/float64(cfg.DeltaLength)),
				Dir:   step,
			})
		}
	}
	r.HasDelta = true
}
