package scoring

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/network-intel/internal/resilience"
)

// BatchResult reports the outcome of a batch scoring run.
type BatchResult struct {
	Scored  int      `json:"scored"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// BatchScore scores contacts in chunks with bounded concurrency. A failed
// item is logged and skipped; the rest of the batch proceeds. When any items
// were skipped the result is returned alongside a partial-batch error so
// callers can distinguish a clean run from a degraded one.
func (e *Engine) BatchScore(ctx context.Context, tenantID string, contactIDs []string, goals []string) (BatchResult, error) {
	chunkSize := e.batch.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 5
	}

	// The high-value set is shared across the whole batch so every item sees
	// the same tier membership regardless of scoring order.
	highValue, err := e.highValueSet(ctx, tenantID)
	if err != nil {
		return BatchResult{}, err
	}

	limiter := rate.NewLimiter(rate.Every(time.Duration(e.batch.PauseMillis)*time.Millisecond), 1)

	var mu sync.Mutex
	var result BatchResult

	for start := 0; start < len(contactIDs); start += chunkSize {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		end := min(start+chunkSize, len(contactIDs))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(chunkSize)
		for _, id := range contactIDs[start:end] {
			g.Go(func() error {
				if err := e.scoreBatchItem(gctx, tenantID, id, goals, highValue); err != nil {
					zap.L().Warn("scoring: batch item failed",
						zap.String("contact_id", id),
						zap.Error(err),
					)
					mu.Lock()
					result.Skipped++
					result.Failed = append(result.Failed, id)
					mu.Unlock()
					return nil
				}
				mu.Lock()
				result.Scored++
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return result, err
		}
	}

	zap.L().Info("scoring: batch complete",
		zap.Int("scored", result.Scored),
		zap.Int("skipped", result.Skipped),
	)

	if result.Skipped > 0 {
		return result, resilience.PartialBatch(result.Skipped, len(contactIDs))
	}
	return result, nil
}

func (e *Engine) scoreBatchItem(ctx context.Context, tenantID, contactID string, goals []string, highValue map[string]bool) error {
	in, err := e.loadInput(ctx, tenantID, contactID, goals, highValue)
	if err != nil {
		return err
	}
	return e.st.UpdateContactScores(ctx, tenantID, contactID, e.Score(in))
}
