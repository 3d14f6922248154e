package cutset

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"splice/internal/tensor"
)

// LoadAttrAll loads one attribute across every member, in set order.
// Loads run concurrently up to parallelism workers (GOMAXPROCS when
// non-positive); segments are immutable, so concurrent loads are safe.
// The first failure cancels the remaining loads.
func (s Set) LoadAttrAll(ctx context.Context, name string, parallelism int) ([]tensor.Array, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	out := make([]tensor.Array, len(s.segments))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, seg := range s.segments {
		i, seg := i, seg // per-iteration copies; required under go <= 1.21 loop semantics
		g.Go(func() error {
			arr, err := seg.LoadAttr(gCtx, name)
			if err != nil {
				return fmt.Errorf("load %q from %q: %w", name, seg.ID(), err)
			}
			out[i] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
