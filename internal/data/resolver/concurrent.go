package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type queryFn func(ctx context.Context, tx *gorm.DB) error

// runQueries executes independent read sub-queries and joins them. On the
// shared pool they run concurrently; inside a transaction the single
// connection cannot multiplex, so they run sequentially there. Either way
// the first error fails the whole set.
func runQueries(ctx context.Context, tx *gorm.DB, fns ...queryFn) error {
	if tx != nil {
		for _, fn := range fns {
			if err := fn(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(gctx, nil)
		})
	}
	return g.Wait()
}
