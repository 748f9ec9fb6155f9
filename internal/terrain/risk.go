package terrain

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
	"github.com/talgya/terragen/internal/water"
)

// FaultLine is one seismic line segment. Faults are independent of the
// elevation field; they exist only to derive the seismic risk grid.
type FaultLine struct {
	A, B     mgl64.Vec2
	Activity float64 // [0,1], scales the risk the fault radiates
}

// FaultLineSet holds the map's fault lines in generation order.
type FaultLineSet []FaultLine

// generateFaults places 1–4 fault segments from the seed. Segments cross
// a good stretch of the map so the risk field has structure rather than
// isolated dots.
func generateFaults(seed int64, w, h int) FaultLineSet {
	rng := rand.New(rand.NewSource(seed + 500))
	count := 1 + rng.Intn(4)

	faults := make(FaultLineSet, 0, count)
	for i := 0; i < count; i++ {
		a := mgl64.Vec2{rng.Float64() * float64(w), rng.Float64() * float64(h)}
		angle := rng.Float64() * 2 * math.Pi
		length := (0.3 + rng.Float64()*0.5) * float64(min(w, h))
		b := a.Add(mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(length))
		faults = append(faults, FaultLine{
			A:        a,
			B:        b,
			Activity: 0.2 + rng.Float64()*0.8,
		})
	}
	return faults
}

// seismicRisk derives per-cell risk from distance to the nearest fault,
// scaled by that fault's activity.
func seismicRisk(faults FaultLineSet, w, h int) *grid.Grid[float64] {
	out := grid.New[float64](w, h)
	const falloff = 18.0 // Cells over which fault risk decays to 1/e

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := mgl64.Vec2{float64(x), float64(y)}
			risk := 0.0
			for _, f := range faults {
				d := pointSegmentDist(p, f.A, f.B)
				r := f.Activity * math.Exp(-d/falloff)
				if r > risk {
					risk = r
				}
			}
			out.Set(x, y, risk)
		}
	}
	return out
}

func pointSegmentDist(p, a, b mgl64.Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-12 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Mul(t))).Len()
}

// Flood risk weights. Water cells are maximally at risk by definition;
// land risk decays with distance, drops with height above sea level, and
// rises with upstream catchment and poor soil drainage.
const (
	floodProximityW = 0.45
	floodElevW      = 0.20
	floodAccumW     = 0.20
	floodDrainageW  = 0.15
	floodDecay      = 8.0
)

// deriveFloodRisk computes the per-cell flood risk scalar in [0,1].
func deriveFloodRisk(
	elev *grid.Grid[float64],
	bodies *water.BodyMap,
	waterDist *grid.Grid[float64],
	flow *hydrology.FlowField,
	soils *grid.Grid[uint8],
	seaLevel float64,
) *grid.Grid[float64] {
	out := grid.New[float64](elev.W, elev.H)
	floodRiskRegion(out, elev, bodies, waterDist, flow, soils, seaLevel, 0, 0, elev.W-1, elev.H-1)
	return out
}

// floodRiskRegion recomputes flood risk for the inclusive cell rectangle
// [x0,x1]×[y0,y1]; terrain edits recompute only the touched window.
func floodRiskRegion(
	out *grid.Grid[float64],
	elev *grid.Grid[float64],
	bodies *water.BodyMap,
	waterDist *grid.Grid[float64],
	flow *hydrology.FlowField,
	soils *grid.Grid[uint8],
	seaLevel float64,
	x0, y0, x1, y1 int,
) {
	accum := flow.Accum.Cells()
	accumNorm := math.Log1p(float64(elev.Len()))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if bodies.IsWater(x, y) {
				out.Set(x, y, 1)
				continue
			}
			idx := y*elev.W + x

			proximity := math.Exp(-waterDist.At(x, y) / floodDecay)

			headroom := elev.At(x, y) - seaLevel
			lowland := math.Max(0, 1-headroom/0.25)

			catchment := math.Log1p(float64(accum[idx])) / accumNorm

			drainage := climate.Soil(soils.At(x, y)).Drainage()

			risk := floodProximityW*proximity +
				floodElevW*lowland +
				floodAccumW*catchment +
				floodDrainageW*(1-drainage)

			// Steep cells shed water; flat cells pond.
			slope := grid.Slope(elev, x, y)
			risk *= math.Max(0.4, 1-slope*10)

			if risk > 1 {
				risk = 1
			}
			out.Set(x, y, risk)
		}
	}
}
