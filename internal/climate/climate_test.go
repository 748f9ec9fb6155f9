package climate

import (
	"testing"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
	"github.com/talgya/terragen/internal/water"
)

func flatGrid(w, h int, v float64) *grid.Grid[float64] {
	g := grid.New[float64](w, h)
	g.Fill(v)
	return g
}

func TestTemperatureLapseRate(t *testing.T) {
	// Elevation rises eastward; temperature must fall monotonically with it.
	elev := grid.New[float64](32, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 32; x++ {
			elev.Set(x, y, float64(x)/31)
		}
	}
	dist := flatGrid(32, 4, 50)

	d := Compute(elev, dist, TemperatePreset())

	if got := d.Temperature.At(0, 0); got != 14 {
		t.Errorf("sea-level temperature = %v, want preset base 14", got)
	}
	for y := 0; y < 4; y++ {
		for x := 1; x < 32; x++ {
			if d.Temperature.At(x, y) >= d.Temperature.At(x-1, y) {
				t.Fatalf("temperature did not fall with elevation at (%d,%d)", x, y)
			}
		}
	}
	// Peak: 1800 m at 6.5 °C/km below the 14 °C base.
	peak := d.Temperature.At(31, 0)
	want := 14.0 - 1.8*6.5
	if diff := peak - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("peak temperature = %v, want %v", peak, want)
	}
}

func TestMoistureBoundsAndProximity(t *testing.T) {
	elev := flatGrid(16, 16, 0.4)
	dist := grid.New[float64](16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			dist.Set(x, y, float64(x)*8) // Water on the west edge.
		}
	}

	d := Compute(elev, dist, TemperatePreset())

	for y := 0; y < 16; y++ {
		prev := 2.0
		for x := 0; x < 16; x++ {
			m := d.Moisture.At(x, y)
			if m < 0 || m > 1 {
				t.Fatalf("moisture out of range at (%d,%d): %v", x, y, m)
			}
			if m > prev {
				t.Fatalf("moisture rose away from water at (%d,%d)", x, y)
			}
			prev = m
		}
	}
}

func TestRainShadowDriesLeeSide(t *testing.T) {
	// A north-south ridge with wind from the west: cells just east of the
	// ridge sit in its shadow and read drier than the exposed west side.
	elev := flatGrid(64, 8, 0.2)
	for y := 0; y < 8; y++ {
		elev.Set(32, y, 0.9)
		elev.Set(31, y, 0.7)
		elev.Set(33, y, 0.7)
	}
	dist := flatGrid(64, 8, 200) // Far from water everywhere.

	d := Compute(elev, dist, TemperatePreset())

	windward := d.Moisture.At(20, 4)
	lee := d.Moisture.At(36, 4)
	if lee >= windward {
		t.Errorf("lee side moisture %v not drier than windward %v", lee, windward)
	}
}

func TestClassifyOneOverrides(t *testing.T) {
	cases := []struct {
		name             string
		elev, temp, mstr float64
		want             Biome
	}{
		{"alpine peak", 0.9, 2, 0.5, BiomeAlpine},
		{"deep cold lowland", 0.3, -12, 0.5, BiomeTundra},
		{"saturated lowland", 0.2, 14, 0.85, BiomeWetland},
		{"hot dry", 0.4, 25, 0.1, BiomeDesert},
		{"hot wet", 0.4, 25, 0.9, BiomeRainforest},
		{"mild mid", 0.4, 12, 0.4, BiomeGrassland},
		{"mild wet", 0.4, 12, 0.6, BiomeTemperateForest},
		{"cold dry", 0.4, -3, 0.1, BiomeTundra},
		{"warm peak", 0.9, 10, 0.5, whittakerTable[2][2]},
	}
	for _, tc := range cases {
		if got := classifyOne(tc.elev, tc.temp, tc.mstr); got != tc.want {
			t.Errorf("%s: classified %s, want %s", tc.name, BiomeName(got), BiomeName(tc.want))
		}
	}
}

func TestClassifyBiomesTagsWater(t *testing.T) {
	elev := grid.New[float64](12, 12)
	elev.Fill(0.5)
	for x := 0; x < 12; x++ {
		elev.Set(x, 0, 0.1)
	}
	fill := hydrology.FillDepressions(elev, 0.004)
	bodies := water.Classify(elev, fill, nil, 0.3)
	dist := water.DistanceField(bodies)

	d := Compute(elev, dist, TemperatePreset())
	bg := ClassifyBiomes(elev, d, bodies, 42)

	for x := 0; x < 12; x++ {
		if bg.At(x, 0) != BiomeWater {
			t.Errorf("water cell (%d,0) tagged %s", x, BiomeName(bg.At(x, 0)))
		}
	}
	for y := 1; y < 12; y++ {
		for x := 0; x < 12; x++ {
			if bg.At(x, y) == BiomeWater {
				t.Errorf("land cell (%d,%d) tagged water", x, y)
			}
			// Blend only set where a secondary biome disagrees.
			if bg.Secondary.At(x, y) == bg.Primary.At(x, y) && bg.Blend.At(x, y) != 0 {
				t.Errorf("blend %v at (%d,%d) with no secondary biome",
					bg.Blend.At(x, y), x, y)
			}
		}
	}
}

func TestClassifyBiomesDeterministic(t *testing.T) {
	elev := grid.New[float64](16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			elev.Set(x, y, float64(x+y)/30)
		}
	}
	fill := hydrology.FillDepressions(elev, 0.004)
	bodies := water.Classify(elev, fill, nil, 0.05)
	dist := water.DistanceField(bodies)
	d := Compute(elev, dist, ColdPreset())

	a := ClassifyBiomes(elev, d, bodies, 7)
	b := ClassifyBiomes(elev, d, bodies, 7)
	for i := range a.Primary.Cells() {
		if a.Primary.Cells()[i] != b.Primary.Cells()[i] ||
			a.Secondary.Cells()[i] != b.Secondary.Cells()[i] ||
			a.Blend.Cells()[i] != b.Blend.Cells()[i] {
			t.Fatalf("biome classification diverged at cell %d", i)
		}
	}
}

func TestSoilClasses(t *testing.T) {
	// One row spanning shoreline to dry upland; slope stays near zero so
	// distance and moisture drive the classes.
	elev := flatGrid(40, 3, 0.38)
	dist := grid.New[float64](40, 3)
	moisture := grid.New[float64](40, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 40; x++ {
			dist.Set(x, y, float64(x))
			moisture.Set(x, y, 0.4)
		}
	}
	moisture.Set(1, 1, 0.8) // Wet shoreline pocket

	soils := ClassifySoils(elev, dist, moisture)

	if got := Soil(soils.At(1, 1)); got != SoilPeat {
		t.Errorf("wet shoreline soil = %s, want peat", SoilName(got))
	}
	if got := Soil(soils.At(2, 1)); got != SoilSand {
		t.Errorf("shoreline soil = %s, want sand", SoilName(got))
	}
	if got := Soil(soils.At(8, 1)); got != SoilSilt {
		t.Errorf("valley soil = %s, want silt", SoilName(got))
	}
	if got := Soil(soils.At(30, 1)); got != SoilLoam {
		t.Errorf("upland soil = %s, want loam", SoilName(got))
	}

	// Steep or high ground reads rocky regardless of the rest.
	steep := grid.New[float64](8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			steep.Set(x, y, float64(x)*0.1)
		}
	}
	far := flatGrid(8, 8, 100)
	rocky := ClassifySoils(steep, far, flatGrid(8, 8, 0.4))
	if got := Soil(rocky.At(4, 4)); got != SoilRocky {
		t.Errorf("steep soil = %s, want rocky", SoilName(got))
	}
}

func TestSoilDrainageOrdering(t *testing.T) {
	// Sand sheds fastest, peat holds most; flood risk depends on the order.
	ordered := []Soil{SoilSand, SoilRocky, SoilLoam, SoilSilt, SoilClay, SoilPeat}
	for i := 1; i < len(ordered); i++ {
		hi, lo := ordered[i-1], ordered[i]
		if hi.Drainage() <= lo.Drainage() {
			t.Errorf("%s drainage %v not above %s drainage %v",
				SoilName(hi), hi.Drainage(), SoilName(lo), lo.Drainage())
		}
	}
}

func TestClassifySoilsRegionScoped(t *testing.T) {
	elev := flatGrid(20, 20, 0.38)
	dist := flatGrid(20, 20, 30)
	moisture := flatGrid(20, 20, 0.4)

	soils := ClassifySoils(elev, dist, moisture)
	before := soils.Clone()

	// Raise a patch high enough to flip it rocky, then recompute only
	// that patch.
	for y := 8; y <= 11; y++ {
		for x := 8; x <= 11; x++ {
			elev.Set(x, y, 0.9)
		}
	}
	ClassifySoilsRegion(soils, elev, dist, moisture, 8, 8, 11, 11)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			inside := x >= 8 && x <= 11 && y >= 8 && y <= 11
			if inside {
				if got := Soil(soils.At(x, y)); got != SoilRocky {
					t.Errorf("edited cell (%d,%d) soil = %s, want rocky", x, y, SoilName(got))
				}
			} else if soils.At(x, y) != before.At(x, y) {
				t.Errorf("cell (%d,%d) outside the region changed", x, y)
			}
		}
	}
}
