package inference

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/resilience"
)

// BatchResult reports the outcome of a batch discovery run.
type BatchResult struct {
	Discovered int      `json:"discovered"`
	Processed  int      `json:"processed"`
	Skipped    int      `json:"skipped"`
	Failed     []string `json:"failed,omitempty"`
}

// BatchDiscover runs discovery for many contacts against one shared graph
// snapshot. A failed item is logged and skipped; the rest proceed. A run
// with skipped items returns its result alongside a partial-batch error.
func (e *Engine) BatchDiscover(ctx context.Context, tenantID string, contactIDs []string, concurrency int) (BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 5
	}

	snap, err := graph.Load(ctx, e.st, tenantID)
	if err != nil {
		return BatchResult{}, err
	}

	var mu sync.Mutex
	var result BatchResult

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range contactIDs {
		g.Go(func() error {
			found, err := e.discover(gctx, snap, id, true)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("inference: batch item failed",
					zap.String("contact_id", id),
					zap.Error(err),
				)
				result.Skipped++
				result.Failed = append(result.Failed, id)
				return nil
			}
			result.Processed++
			result.Discovered += len(found)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	zap.L().Info("inference: batch complete",
		zap.Int("processed", result.Processed),
		zap.Int("discovered", result.Discovered),
		zap.Int("skipped", result.Skipped),
	)

	if result.Skipped > 0 {
		return result, resilience.PartialBatch(result.Skipped, len(contactIDs))
	}
	return result, nil
}
