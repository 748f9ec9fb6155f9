package water

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
)

func TestClassifyOceanBelowSeaLevel(t *testing.T) {
	g := grid.New[float64](16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			g.Set(x, y, float64(x)/15) // 0 on the west edge up to 1 east
		}
	}
	fill := hydrology.FillDepressions(g, 0.004)

	b := Classify(g, fill, nil, 0.3)

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			want := None
			if g.At(x, y) < 0.3 {
				want = Ocean
			}
			if got := b.TypeAt(x, y); got != want {
				t.Fatalf("(%d,%d) classified %v, want %v", x, y, got, want)
			}
			if b.IsWater(x, y) != (want != None) {
				t.Fatalf("(%d,%d) IsWater disagrees with type %v", x, y, want)
			}
		}
	}
}

func TestClassifyRiverNeverOverwritesOcean(t *testing.T) {
	g := grid.New[float64](12, 12)
	g.Fill(0.6)
	for x := 0; x < 12; x++ {
		g.Set(x, 0, 0.1) // Ocean strip along the north edge.
	}
	fill := hydrology.FillDepressions(g, 0.004)

	// Hand-built river running into the ocean strip.
	var r hydrology.River
	for y := 6; y >= 0; y-- {
		r.Points = append(r.Points, hydrology.RiverPoint{
			X: 5, Y: y,
			Pos:   mgl64.Vec2{5, float64(y)},
			Width: 3,
			Dir:   mgl64.Vec2{0, -1},
		})
	}

	b := Classify(g, fill, []hydrology.River{r}, 0.3)

	for x := 0; x < 12; x++ {
		if got := b.TypeAt(x, 0); got != Ocean {
			t.Errorf("ocean cell (%d,0) reclassified to %v", x, got)
		}
	}
	if got := b.TypeAt(5, 4); got != River {
		t.Errorf("centerline cell (5,4) classified %v, want river", got)
	}
	// Width 3 stamps one cell either side of the centerline.
	if got := b.TypeAt(4, 4); got != River {
		t.Errorf("buffer cell (4,4) classified %v, want river", got)
	}
	if got := b.TypeAt(3, 4); got != None {
		t.Errorf("cell (3,4) beyond the buffer classified %v, want none", got)
	}
	if dir := b.FlowDir[b.Types.Index(5, 4)]; dir != (mgl64.Vec2{0, -1}) {
		t.Errorf("river cell flow direction = %v", dir)
	}
	if w := b.Width.At(5, 4); w != 3 {
		t.Errorf("river cell width = %v, want 3", w)
	}
}

func TestDistanceFieldChamfer(t *testing.T) {
	g := grid.New[float64](11, 11)
	g.Fill(0.6)
	g.Set(5, 5, 0.1) // Single ocean cell in the middle.
	fill := hydrology.FillDepressions(g, 0.004)

	b := Classify(g, fill, nil, 0.3)
	dist := DistanceField(b)

	if d := dist.At(5, 5); d != 0 {
		t.Errorf("water cell distance = %v, want 0", d)
	}
	if d := dist.At(8, 5); d != 3 {
		t.Errorf("cardinal distance at offset 3 = %v, want 3", d)
	}
	if d := dist.At(7, 7); math.Abs(d-2*math.Sqrt2) > 1e-9 {
		t.Errorf("diagonal distance at offset (2,2) = %v, want 2*sqrt2", d)
	}
	// Chamfer mixes cardinal and diagonal steps for knight-like offsets.
	if d := dist.At(7, 6); math.Abs(d-(1+math.Sqrt2)) > 1e-9 {
		t.Errorf("distance at offset (2,1) = %v, want 1+sqrt2", d)
	}

	// Distance never exceeds the worst corner-to-center path.
	for i, d := range dist.Cells() {
		if d >= maxDistance {
			t.Fatalf("cell %d never relaxed from the sentinel", i)
		}
	}
}

func TestTypeString(t *testing.T) {
	cases := map[Type]string{None: "none", Ocean: "ocean", Lake: "lake", River: "river"}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Errorf("Type(%d).String() = %q, want %q", typ, got, want)
		}
	}
}
