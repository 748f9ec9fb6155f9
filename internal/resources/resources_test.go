package resources

import (
	"math/rand"
	"testing"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
	"github.com/talgya/terragen/internal/noise"
	"github.com/talgya/terragen/internal/water"
)

// placementFixture derives the full input chain for Place on a small but
// varied map.
type placementFixture struct {
	elev      *grid.Grid[float64]
	bodies    *water.BodyMap
	waterDist *grid.Grid[float64]
	flow      *hydrology.FlowField
	clim      *climate.Data
	biomes    *climate.BiomeGrid
}

func newFixture(t *testing.T, seed int64) *placementFixture {
	t.Helper()
	const w, h = 96, 96
	elev := grid.New[float64](w, h)
	f := noise.NewField(seed, noise.DefaultFieldConfig())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			elev.Set(x, y, f.Sample(float64(x), float64(y)))
		}
	}
	noise.ShapeHeights(elev, noise.DefaultBands())

	flow := hydrology.Accumulate(elev)
	fill := hydrology.FillDepressions(elev, 0.004)
	bodies := water.Classify(elev, fill, nil, noise.DefaultBands().SeaLevel)
	waterDist := water.DistanceField(bodies)
	clim := climate.Compute(elev, waterDist, climate.TemperatePreset())
	biomes := climate.ClassifyBiomes(elev, clim, bodies, seed)

	return &placementFixture{
		elev: elev, bodies: bodies, waterDist: waterDist,
		flow: flow, clim: clim, biomes: biomes,
	}
}

func (fx *placementFixture) place(seed int64) (*Map, *grid.Grid[float64]) {
	return Place(fx.elev, fx.bodies, fx.waterDist, fx.flow, fx.clim, fx.biomes, seed, DefaultConfig())
}

func TestPlaceNeverOnWater(t *testing.T) {
	fx := newFixture(t, 11)
	m, forest := fx.place(11)

	for _, idx := range m.SortedCells() {
		x, y := idx%m.W, idx/m.W
		if fx.bodies.IsWater(x, y) {
			d := m.Deposits[idx]
			t.Errorf("%s deposit on water cell (%d,%d)", KindName(d.Kind), x, y)
		}
	}
	for y := 0; y < fx.elev.H; y++ {
		for x := 0; x < fx.elev.W; x++ {
			if fx.bodies.IsWater(x, y) && forest.At(x, y) != 0 {
				t.Errorf("forest density %v on water cell (%d,%d)", forest.At(x, y), x, y)
			}
		}
	}
}

func TestPlaceDepositInvariants(t *testing.T) {
	fx := newFixture(t, 23)
	m, _ := fx.place(23)

	if len(m.Deposits) == 0 {
		t.Fatal("no deposits placed at all")
	}

	cfg := DefaultConfig()
	for _, idx := range m.SortedCells() {
		d := m.Deposits[idx]
		x, y := idx%m.W, idx/m.W

		if d.Amount <= 0 || d.Amount != d.MaxAmount {
			t.Errorf("%s at (%d,%d) has amount %v / max %v", KindName(d.Kind), x, y, d.Amount, d.MaxAmount)
		}
		switch d.Kind {
		case KindOil:
			e := fx.elev.At(x, y)
			if e < cfg.OilMinElev || e > cfg.OilMaxElev {
				t.Errorf("oil at (%d,%d) outside elevation band: %v", x, y, e)
			}
		case KindIron, KindCopper, KindCoal, KindGold:
			if d.Amount > cfg.OreRichness {
				t.Errorf("ore at (%d,%d) richer than the cluster center cap: %v", x, y, d.Amount)
			}
		}
	}
}

func TestPlaceDeterministic(t *testing.T) {
	fx := newFixture(t, 31)
	m1, f1 := fx.place(31)
	m2, f2 := fx.place(31)

	c1, c2 := m1.SortedCells(), m2.SortedCells()
	if len(c1) != len(c2) {
		t.Fatalf("deposit counts differ: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i] != c2[i] || m1.Deposits[c1[i]] != m2.Deposits[c2[i]] {
			t.Fatalf("deposit %d differs between identical runs", i)
		}
	}
	for i := range f1.Cells() {
		if f1.Cells()[i] != f2.Cells()[i] {
			t.Fatalf("forest density diverged at cell %d", i)
		}
	}
}

func TestHiddenUntilSurveyed(t *testing.T) {
	m := NewMap(32, 32)
	m.Deposits[m.W*10+10] = Deposit{Kind: KindIron, Amount: 100, MaxAmount: 100}
	m.Deposits[m.W*10+12] = Deposit{Kind: KindFertile, Amount: 50, MaxAmount: 50}
	m.Deposits[m.W*30+30] = Deposit{Kind: KindCoal, Amount: 80, MaxAmount: 80}

	if m.Discovered(10, 10) {
		t.Error("iron visible before any survey")
	}
	if !m.Discovered(12, 10) {
		t.Error("fertile land not surface-observable")
	}

	m.Survey(10, 10, 4)

	if !m.Discovered(10, 10) {
		t.Error("iron still hidden after survey over it")
	}
	if m.Discovered(30, 30) {
		t.Error("coal outside the survey radius revealed")
	}
}

func TestSurveyRoundTripsThroughBits(t *testing.T) {
	m := NewMap(16, 16)
	m.Deposits[5*16+5] = Deposit{Kind: KindGold, Amount: 10, MaxAmount: 10}
	m.Survey(5, 5, 2)

	restored := NewMap(16, 16)
	restored.Deposits[5*16+5] = Deposit{Kind: KindGold, Amount: 10, MaxAmount: 10}
	restored.SetDiscoveredBits(m.DiscoveredBits())

	if !restored.Discovered(5, 5) {
		t.Error("discovery lost through the bitmask round trip")
	}
	if restored.Discovered(15, 15) {
		t.Error("phantom discovery after round trip")
	}
}

func TestExtractDrainsDeposit(t *testing.T) {
	m := NewMap(8, 8)
	m.Deposits[0] = Deposit{Kind: KindCoal, Amount: 100, MaxAmount: 100}

	if got := m.Extract(0, 0, 30); got != 30 {
		t.Errorf("first extraction took %v, want 30", got)
	}
	if got := m.Extract(0, 0, 200); got != 70 {
		t.Errorf("overdraw took %v, want the remaining 70", got)
	}
	if got := m.Extract(0, 0, 10); got != 0 {
		t.Errorf("exhausted deposit yielded %v", got)
	}

	// The record survives exhaustion.
	d, ok := m.At(0, 0)
	if !ok || d.Amount != 0 || d.MaxAmount != 100 {
		t.Errorf("exhausted deposit record = %+v, ok=%v", d, ok)
	}
	if got := m.Extract(5, 5, 10); got != 0 {
		t.Errorf("empty cell yielded %v", got)
	}
}

func TestPickOreKindCoversTable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	counts := map[Kind]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[pickOreKind(rng)]++
	}

	// Iron is the most common kind; gold the rarest. Loose sanity bands
	// around the table weights.
	if f := float64(counts[KindIron]) / n; f < 0.36 || f > 0.48 {
		t.Errorf("iron frequency %v outside [0.36, 0.48]", f)
	}
	if f := float64(counts[KindGold]) / n; f < 0.04 || f > 0.11 {
		t.Errorf("gold frequency %v outside [0.04, 0.11]", f)
	}
	if counts[KindOil] != 0 || counts[KindFertile] != 0 {
		t.Error("ore table produced a non-ore kind")
	}
}

func TestForestDensityRange(t *testing.T) {
	fx := newFixture(t, 41)
	_, forest := fx.place(41)

	any := false
	for i, d := range forest.Cells() {
		if d < 0 || d > 1 {
			t.Fatalf("forest density out of range at cell %d: %v", i, d)
		}
		if d > 0 {
			any = true
		}
	}
	if !any {
		t.Error("forest density zero everywhere")
	}
}
