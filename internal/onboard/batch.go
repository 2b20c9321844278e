package onboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Partition slices items into contiguous batches of at most size elements,
// preserving order. The last batch holds the remainder. Batches share the
// backing array of items; they are views, not copies.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 || len(items) == 0 {
		return nil
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}
	return batches
}

// processBatch runs the contact workflow for every member of one batch.
// Results are joined positionally: results[i] always belongs to batch[i]
// regardless of completion order. Workers never return errors (every failure
// is contained in a status write), so the group exists only for the
// concurrency cap and the join.
func (o *Orchestrator) processBatch(ctx context.Context, r *run, batch []contactRow) []ContactResult {
	results := make([]ContactResult, len(batch))

	sequential := o.cfg.Concurrency <= 1
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.cfg.Concurrency, 1))
	for i, row := range batch {
		g.Go(func() error {
			results[i] = o.processContact(gctx, r, row)
			// Pause between contacts to respect upstream rate limits. Only
			// meaningful when processing sequentially.
			if sequential && o.cfg.ContactPause > 0 && i < len(batch)-1 {
				sleepCtx(gctx, o.cfg.ContactPause)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// sleepCtx sleeps for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
