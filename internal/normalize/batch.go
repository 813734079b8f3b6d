package normalize

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scopecraft/presales-cli/internal/model"
)

const batchWorkers = 8

// FailedItem records an item the batch could not estimate.
type FailedItem struct {
	ItemID string `json:"item_id"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

// BatchResult collects per-item outcomes. Items that fail (typically with
// ErrNoValidEstimate) are reported, not silently dropped, so the caller
// can choose between excluding them and failing the run.
type BatchResult struct {
	Estimates []ItemEstimate `json:"estimates"`
	Failed    []FailedItem   `json:"failed,omitempty"`
}

// TotalHours sums final hours across all estimated items.
func (r BatchResult) TotalHours() float64 {
	var total float64
	for _, e := range r.Estimates {
		total += e.TotalHours()
	}
	return total
}

// EstimateBatch normalizes a backlog concurrently. Input order is
// preserved in the output. The returned error reports only batch-level
// failure (context cancellation); per-item failures land in Failed.
func (n *Normalizer) EstimateBatch(ctx context.Context, items []model.ScopeItem, refs []model.RefObservation) (BatchResult, error) {
	type slot struct {
		est ItemEstimate
		err error
	}
	slots := make([]slot, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "normalize: batch cancelled")
			}
			est, err := n.EstimateItem(item, refs)
			slots[i] = slot{est: est, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	var out BatchResult
	for i, s := range slots {
		if s.err != nil {
			out.Failed = append(out.Failed, FailedItem{
				ItemID: items[i].ID,
				Err:    s.err,
				Reason: s.err.Error(),
			})
			continue
		}
		out.Estimates = append(out.Estimates, s.est)
	}

	zap.L().Info("normalize: batch done",
		zap.Int("items", len(items)),
		zap.Int("estimated", len(out.Estimates)),
		zap.Int("failed", len(out.Failed)),
		zap.Float64("total_hours", out.TotalHours()))
	return out, nil
}
