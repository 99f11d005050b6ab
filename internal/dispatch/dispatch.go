// Package dispatch runs units of work in fixed-size, strictly sequential
// batches.
//
// Every unit of a batch starts together and the batch is drained before the
// next one begins, which bounds concurrency to the batch size. The first
// failure stops the run once its batch has drained; units already running are
// never interrupted.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of units processed concurrently.
const DefaultBatchSize = 8

// Batch describes a drained batch.
type Batch struct {
	// Index is 0-based.
	Index   int
	Size    int
	Elapsed time.Duration
	Err     error
}

// Option configures a run.
type Option func(*options)

type options struct {
	onBatch func(Batch)
}

// WithBatchHook is called after every batch drains, including a failed one.
func WithBatchHook(fn func(Batch)) Option {
	return func(o *options) {
		o.onBatch = fn
	}
}

// Run applies fn to every unit in batches of batchSize and returns the results
// in unit order. On failure it returns the results of the batches that
// completed before the failing one.
func Run[T, R any](ctx context.Context, units []T, fn func(context.Context, T) (R, error), batchSize int, opts ...Option) ([]R, error) {
	if fn == nil {
		return nil, errors.New("dispatch: worker function required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	results := make([]R, len(units))
	for index, start := 0, 0; start < len(units); index, start = index+1, start+batchSize {
		if err := ctx.Err(); err != nil {
			return results[:start], err
		}
		end := min(start+batchSize, len(units))

		began := time.Now()
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				r, err := fn(ctx, units[i])
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		err := g.Wait()
		if o.onBatch != nil {
			o.onBatch(Batch{Index: index, Size: end - start, Elapsed: time.Since(began), Err: err})
		}
		if err != nil {
			return results[:start], fmt.Errorf("batch %d: %w", index+1, err)
		}
	}
	return results, nil
}
