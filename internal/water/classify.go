// Package water unifies ocean, lake, and river detection into a single
// per-cell water body map consumed by climate, resources, and the city
// simulation's eligibility rules.
package water

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/hydrology"
)

// Type tags a cell's water classification. Downstream consumers care about
// the distinction: an Ocean cell can host a harbor, a River cell needs a
// bridge, a Lake cell is scenery.
type Type uint8

const (
	None Type = iota
	Ocean
	Lake
	River
)

// String returns a human-readable name for a water type.
func (t Type) String() string {
	switch t {
	case Ocean:
		return "ocean"
	case Lake:
		return "lake"
	case River:
		return "river"
	default:
		return "none"
	}
}

// BodyMap holds per-cell water classification plus river geometry.
type BodyMap struct {
	Types *grid.Grid[uint8]

	// FlowDir holds the unit flow direction for River cells; zero elsewhere.
	FlowDir []mgl64.Vec2

	// Width holds the channel width in cells for River cells; zero elsewhere.
	Width *grid.Grid[float64]
}

// TypeAt returns the water classification of a cell.
func (b *BodyMap) TypeAt(x, y int) Type {
	return Type(b.Types.At(x, y))
}

// IsWater reports whether the cell carries any water tag.
func (b *BodyMap) IsWater(x, y int) bool {
	return b.Types.At(x, y) != uint8(None)
}

// Classify builds the unified water body map. Ocean takes every cell below
// sea level, lakes come from depression filling, and rivers stamp their
// centerline plus a width buffer over remaining dry cells. Ocean and lake
// tags are never overwritten by river stamping, so a river that reaches
// the coast ends at the shoreline.
func Classify(elev *grid.Grid[float64], fill *hydrology.FillResult, rivers []hydrology.River, seaLevel float64) *BodyMap {
	w, h := elev.W, elev.H
	b := &BodyMap{
		Types:   grid.New[uint8](w, h),
		FlowDir: make([]mgl64.Vec2, w*h),
		Width:   grid.New[float64](w, h),
	}
	types := b.Types.Cells()
	raw := elev.Cells()

	for idx := range raw {
		switch {
		case raw[idx] < seaLevel:
			types[idx] = uint8(Ocean)
		case fill.IsLake(idx):
			types[idx] = uint8(Lake)
		}
	}

	for _, r := range rivers {
		for _, p := range r.Points {
			stampRiver(b, p)
		}
	}

	return b
}

// stampRiver marks the cells covered by one centerline sample: the cell
// itself plus a square buffer of half the channel width.
func stampRiver(b *BodyMap, p hydrology.RiverPoint) {
	half := int(p.Width / 2)
	types := b.Types.Cells()
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			x, y := p.X+dx, p.Y+dy
			if !b.Types.InBounds(x, y) {
				continue
			}
			idx := b.Types.Index(x, y)
			if types[idx] != uint8(None) {
				continue
			}
			types[idx] = uint8(River)
			b.FlowDir[idx] = p.Dir
			b.Width.Cells()[idx] = p.Width
		}
	}
}
