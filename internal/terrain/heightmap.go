package terrain

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/talgya/terragen/internal/grid"
)

// Import errors. Callers can distinguish a bad file from a bad image.
var (
	ErrHeightmapOpen   = errors.New("heightmap file unreadable")
	ErrHeightmapDecode = errors.New("heightmap format unsupported")
	ErrHeightmapEmpty  = errors.New("heightmap has zero dimensions")
)

// ImportHeightmap loads a grayscale image and bilinearly resamples it to
// the requested grid resolution, replacing procedural noise synthesis.
// Any failure returns before a grid is built, so prior terrain state is
// never partially overwritten.
func ImportHeightmap(path string, w, h int) (*grid.Grid[float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHeightmapOpen, path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHeightmapDecode, path, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrHeightmapEmpty, path, format)
	}

	// Resample into a 16-bit grayscale buffer at grid resolution.
	dst := image.NewGray16(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)

	elev := grid.New[float64](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := dst.Gray16At(x, y).Y
			elev.Set(x, y, float64(g)/65535.0)
		}
	}
	return elev, nil
}

// GenerateFromHeightmap runs the pipeline with an imported elevation field
// in place of procedural synthesis. Shaping and erosion are skipped; the
// imported surface is taken as authoritative and only the derived grids
// are computed. The seed still drives every stochastic derivation stage.
func GenerateFromHeightmap(path string, seed int64, p Params) (*Result, error) {
	elev, err := ImportHeightmap(path, p.Width, p.Height)
	if err != nil {
		return nil, fmt.Errorf("import heightmap: %w", err)
	}
	res := derive(seed, p, elev)
	return res, nil
}
