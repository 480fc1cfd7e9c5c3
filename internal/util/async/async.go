package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach calls fn once for every index in [0, n), running at most limit
// calls at a time. limit <= 1 runs sequentially in index order.
//
// fn is expected to record its own per-item outcome; a returned error is
// treated as fatal for the whole run and stops new items from starting.
// Items that were not started because ctx was cancelled are reported
// through skipped.
func ForEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error, skipped func(i int)) error {
	if n == 0 {
		return nil
	}
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range n {
		if gctx.Err() != nil {
			if skipped != nil {
				skipped(i)
			}
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				if skipped != nil {
					skipped(i)
				}
				return nil
			}
			return fn(gctx, i)
		})
	}

	return g.Wait()
}
