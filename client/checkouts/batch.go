package checkouts

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ai-library/ai-library/client/model"
)

// UpdateFunc is one lifecycle transition applied to one checkout, e.g.
// a bound Service.Return or a closure around Service.Extend.
type UpdateFunc func(ctx context.Context, co model.Checkout) (model.Checkout, error)

// BatchResult reports the outcome for one item of a bulk action.
type BatchResult struct {
	ID       string
	Checkout model.Checkout
	Err      error
}

// Batch applies fn to every item with at most limit calls in flight,
// collecting a per-item result. One failing or slow item never stalls
// or aborts the rest; the caller decides what to do with the failures.
// Results keep the input order.
func Batch(ctx context.Context, items []model.Checkout, limit int, fn UpdateFunc) []BatchResult {
	if limit <= 0 {
		limit = 1
	}

	results := make([]BatchResult, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, co := range items {
		i, co := i, co
		g.Go(func() error {
			updated, err := fn(ctx, co)
			results[i] = BatchResult{ID: co.ID, Checkout: updated, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
