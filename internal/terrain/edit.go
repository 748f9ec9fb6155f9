package terrain

import (
	"log/slog"

	"github.com/talgya/terragen/internal/climate"
	"github.com/talgya/terragen/internal/validate"
)

// recomputePad widens the recompute window past the edited circle so
// slope-dependent cells at the rim see the new heights.
const recomputePad = 2

// ApplyEdit blends a circular region toward a target elevation, the same
// smooth flatten terrain surgery uses, then recomputes the derived grids
// whose rules depend on the changed cells: soil and flood risk. Edits
// never re-run the full pipeline, and they mark the map as manually
// modified so save files know the seed alone can no longer reproduce it.
func (r *Result) ApplyEdit(cx, cy, radius int, target float64) {
	validate.Surgery(r.Elevation, cx, cy, radius, target)
	r.Modified = true

	x0 := max(0, cx-radius-recomputePad)
	y0 := max(0, cy-radius-recomputePad)
	x1 := min(r.W-1, cx+radius+recomputePad)
	y1 := min(r.H-1, cy+radius+recomputePad)

	climate.ClassifySoilsRegion(r.Soils, r.Elevation, r.WaterDist, r.Climate.Moisture, x0, y0, x1, y1)
	floodRiskRegion(r.FloodRisk, r.Elevation, r.Water, r.WaterDist, r.Flow, r.Soils, r.SeaLevel, x0, y0, x1, y1)

	slog.Debug("terrain edit applied",
		"center_x", cx, "center_y", cy,
		"radius", radius,
		"target", target,
	)
}
