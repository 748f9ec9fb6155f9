// Package resources scatters extractable deposits (ore, oil, fertile
// land) and the continuous forest-density field over the finished terrain.
package resources

import (
	"math/rand"
	"sort"
)

// Kind enumerates deposit kinds.
type Kind uint8

const (
	KindIron Kind = iota
	KindCopper
	KindCoal
	KindGold
	KindOil
	KindFertile
)

// KindName returns a human-readable name for a deposit kind.
func KindName(k Kind) string {
	switch k {
	case KindIron:
		return "iron"
	case KindCopper:
		return "copper"
	case KindCoal:
		return "coal"
	case KindGold:
		return "gold"
	case KindOil:
		return "oil"
	case KindFertile:
		return "fertile"
	default:
		return "unknown"
	}
}

// Hidden reports whether the kind starts undiscovered and needs a survey.
// Fertile land and forests are surface-observable.
func (k Kind) Hidden() bool {
	return k != KindFertile
}

// Deposit is one cell's resource record.
type Deposit struct {
	Kind      Kind
	Amount    float64 // Remaining extractable amount
	MaxAmount float64 // Amount at generation time
}

// oreKindTable drives weighted ore-kind selection as a flat cumulative
// table: one deterministic sampling routine, explicit RNG, no dispatch.
var oreKindTable = []struct {
	kind Kind
	cum  float64
}{
	{KindIron, 0.42},
	{KindCopper, 0.70},
	{KindCoal, 0.93},
	{KindGold, 1.00},
}

// pickOreKind samples the ore table with the supplied RNG.
func pickOreKind(rng *rand.Rand) Kind {
	r := rng.Float64()
	for _, e := range oreKindTable {
		if r <= e.cum {
			return e.kind
		}
	}
	return oreKindTable[len(oreKindTable)-1].kind
}

// Map holds all placed deposits plus the discovery state. A cell carries
// at most one deposit; deposits are never placed on water.
type Map struct {
	W, H     int
	Deposits map[int]Deposit // Keyed by linear cell index

	discovered []uint64 // One bit per cell
}

// NewMap creates an empty deposit map for a W×H grid.
func NewMap(w, h int) *Map {
	return &Map{
		W:          w,
		H:          h,
		Deposits:   make(map[int]Deposit),
		discovered: make([]uint64, (w*h+63)/64),
	}
}

// At returns the deposit at a cell, if any.
func (m *Map) At(x, y int) (Deposit, bool) {
	d, ok := m.Deposits[y*m.W+x]
	return d, ok
}

// SortedCells returns all deposit cell indices in ascending order. Every
// serialized or otherwise observable walk over the deposits goes through
// this, never through raw map iteration.
func (m *Map) SortedCells() []int {
	cells := make([]int, 0, len(m.Deposits))
	for idx := range m.Deposits {
		cells = append(cells, idx)
	}
	sort.Ints(cells)
	return cells
}

// Discovered reports whether the deposit at a cell is visible to the
// player. Surface-observable kinds are always visible.
func (m *Map) Discovered(x, y int) bool {
	idx := y*m.W + x
	if d, ok := m.Deposits[idx]; ok && !d.Kind.Hidden() {
		return true
	}
	return m.discovered[idx/64]&(1<<(idx%64)) != 0
}

// Survey reveals all hidden deposits within radius r of (cx, cy).
func (m *Map) Survey(cx, cy, r int) {
	r2 := r * r
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || x >= m.W || y < 0 || y >= m.H {
				continue
			}
			idx := y*m.W + x
			m.discovered[idx/64] |= 1 << (idx % 64)
		}
	}
}

// DiscoveredBits exposes the raw discovery bitmask for persistence.
func (m *Map) DiscoveredBits() []uint64 { return m.discovered }

// SetDiscoveredBits restores the discovery bitmask from persistence.
func (m *Map) SetDiscoveredBits(bits []uint64) {
	copy(m.discovered, bits)
}

// Extract removes up to amount from the deposit at a cell and returns what
// was actually taken. Exhausted deposits stay in the map with Amount 0 so
// the record of what was there survives.
func (m *Map) Extract(x, y int, amount float64) float64 {
	idx := y*m.W + x
	d, ok := m.Deposits[idx]
	if !ok || d.Amount <= 0 {
		return 0
	}
	if amount > d.Amount {
		amount = d.Amount
	}
	d.Amount -= amount
	m.Deposits[idx] = d
	return amount
}
