package terrain

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelRows stripes rows across workers. Only used for stages whose
// cells are independent pure functions; order of execution cannot affect
// the output.
func parallelRows(h int, fn func(y int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > h {
		workers = h
	}
	var eg errgroup.Group
	for wkr := 0; wkr < workers; wkr++ {
		wkr := wkr
		eg.Go(func() error {
			for y := wkr; y < h; y += workers {
				fn(y)
			}
			return nil
		})
	}
	_ = eg.Wait()
}
