package climate

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/terragen/internal/grid"
)

// Atmospheric constants. Lapse rate is the standard environmental value.
const (
	lapseRatePerKm = 6.5 // °C lost per km of altitude

	moistureDecay     = 24.0 // Cells over which water proximity decays to 1/e
	proximityStrength = 0.35 // Moisture added directly at the waterline
	elevationPenalty  = 0.25 // Moisture lost at peak elevation

	rainShadowSteps    = 30   // Upwind ray-march length in cells
	rainShadowMinRise  = 0.04 // Upwind rise that starts casting a shadow
	rainShadowStrength = 2.2  // Attenuation per unit of blocking rise
)

// Data holds the derived climate fields. Both are pure functions of
// elevation, water distance, and the preset; they are recomputed rather
// than mutated.
type Data struct {
	Temperature *grid.Grid[float64] // °C per cell
	Moisture    *grid.Grid[float64] // [0,1] per cell
}

// Compute derives temperature and moisture for every cell. Cells are
// independent, so rows are distributed across workers.
func Compute(elev, waterDist *grid.Grid[float64], preset Preset) *Data {
	d := &Data{
		Temperature: grid.New[float64](elev.W, elev.H),
		Moisture:    grid.New[float64](elev.W, elev.H),
	}

	workers := runtime.GOMAXPROCS(0)
	var eg errgroup.Group
	for wkr := 0; wkr < workers; wkr++ {
		wkr := wkr
		eg.Go(func() error {
			for y := wkr; y < elev.H; y += workers {
				for x := 0; x < elev.W; x++ {
					d.Temperature.Set(x, y, temperatureAt(elev, preset, x, y))
					d.Moisture.Set(x, y, moistureAt(elev, waterDist, preset, x, y))
				}
			}
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = eg.Wait()

	return d
}

// temperatureAt applies the lapse rate to the preset base temperature.
func temperatureAt(elev *grid.Grid[float64], preset Preset, x, y int) float64 {
	altitudeKm := elev.At(x, y) * preset.MaxElevationM / 1000
	return preset.BaseTemperature - altitudeKm*lapseRatePerKm
}

// moistureAt combines the preset base with water proximity, subtracts the
// upwind rain shadow and an elevation penalty, and clamps to [0,1].
func moistureAt(elev, waterDist *grid.Grid[float64], preset Preset, x, y int) float64 {
	m := preset.BaseMoisture

	m += proximityStrength * math.Exp(-waterDist.At(x, y)/moistureDecay)
	m -= rainShadow(elev, preset, x, y)
	m -= elev.At(x, y) * elevationPenalty

	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// rainShadow marches upwind from the cell. Any sufficiently higher upwind
// cell attenuates moisture in proportion to how much higher it is and how
// close it sits; distant ridges matter less than a nearby wall.
func rainShadow(elev *grid.Grid[float64], preset Preset, x, y int) float64 {
	h := elev.At(x, y)
	shadow := 0.0

	fx, fy := float64(x), float64(y)
	for step := 1; step <= rainShadowSteps; step++ {
		fx -= preset.Wind[0]
		fy -= preset.Wind[1]
		ux, uy := int(math.Round(fx)), int(math.Round(fy))
		if !elev.InBounds(ux, uy) {
			break
		}
		rise := elev.At(ux, uy) - h - rainShadowMinRise
		if rise <= 0 {
			continue
		}
		shadow += rise * rainShadowStrength / float64(step)
	}

	if shadow > 0.6 {
		shadow = 0.6
	}
	return shadow
}
