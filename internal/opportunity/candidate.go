// Package opportunity contains the four opportunity detectors and the
// aggregator that merges their output into one ranked, deduplicated,
// persisted suggestion feed.
package opportunity

import (
	"context"

	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
)

// Candidate is a detector's native output before aggregation. Detectors are
// stateless given their inputs; the aggregator owns identity, status, and
// persistence.
type Candidate struct {
	Category model.OpportunityCategory
	Type     string
	Title    string

	Confidence float64 // 0-1
	Impact     float64 // 0-100
	Effort     float64 // 0-100
	Urgency    float64 // 0-100

	Reasoning model.Reasoning
	Contacts  []string
	Actions   []model.SuggestedAction

	// sourceEngine is stamped by the aggregator from the detector name.
	sourceEngine string
}

// Detector is one independent opportunity engine. A detector returning an
// error contributes nothing to that aggregation run; it never fails the run.
type Detector interface {
	Name() string
	Detect(ctx context.Context, snap *graph.Snapshot) ([]Candidate, error)
}
