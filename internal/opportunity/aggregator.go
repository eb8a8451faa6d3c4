package opportunity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/network-intel/internal/config"
	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/internal/store"
)

// Aggregator merges the output of all detectors into one ranked, deduplicated,
// persisted suggestion feed.
type Aggregator struct {
	st        store.Store
	cfg       config.DetectorConfig
	detectors []Detector
	now       func() time.Time
}

// NewAggregator creates an aggregator over the given detectors.
func NewAggregator(st store.Store, cfg config.DetectorConfig, detectors ...Detector) *Aggregator {
	return &Aggregator{st: st, cfg: cfg, detectors: detectors, now: time.Now}
}

// WithClock overrides the aggregator clock; used in tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// GenerateResult is the feed plus the run's degradation counters.
type GenerateResult struct {
	Suggestions       []model.OpportunitySuggestion `json:"suggestions"`
	DuplicatesSkipped int                           `json:"duplicates_skipped"`
	DetectorFailures  int                           `json:"detector_failures"`
}

// Generate runs every detector against one graph snapshot, converts, filters,
// ranks, truncates, and persists the surviving suggestions. A failing
// detector contributes nothing; it never fails the run.
func (a *Aggregator) Generate(ctx context.Context, tenantID string, filters model.GenerateFilters) (GenerateResult, error) {
	if err := validateFilters(filters); err != nil {
		return GenerateResult{}, err
	}

	snap, err := graph.Load(ctx, a.st, tenantID)
	if err != nil {
		return GenerateResult{}, err
	}

	candidates, failures := a.runDetectors(ctx, snap)

	now := a.now().UTC()
	suggestions := make([]model.OpportunitySuggestion, 0, len(candidates))
	for i := range candidates {
		if !matchesFilters(&candidates[i], filters) {
			continue
		}
		suggestions = append(suggestions, a.convert(&candidates[i], tenantID, now))
	}

	rank(suggestions, filters.SortBy)

	limit := filters.Limit
	if limit <= 0 {
		limit = a.cfg.DefaultLimit
	}
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	persisted, dups, err := a.persist(ctx, tenantID, suggestions, now)
	if err != nil {
		return GenerateResult{}, err
	}

	zap.L().Info("opportunity: generated suggestions",
		zap.String("tenant_id", tenantID),
		zap.Int("persisted", len(persisted)),
		zap.Int("duplicates_skipped", dups),
		zap.Int("detector_failures", failures),
	)

	return GenerateResult{
		Suggestions:       persisted,
		DuplicatesSkipped: dups,
		DetectorFailures:  failures,
	}, nil
}

// runDetectors executes all detectors concurrently against the shared
// snapshot. A detector error degrades to an empty contribution.
func (a *Aggregator) runDetectors(ctx context.Context, snap *graph.Snapshot) ([]Candidate, int) {
	var mu sync.Mutex
	var all []Candidate
	failures := 0

	g, gctx := errgroup.WithContext(ctx)
	for _, det := range a.detectors {
		g.Go(func() error {
			found, err := det.Detect(gctx, snap)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zap.L().Warn("opportunity: detector failed",
					zap.String("detector", det.Name()),
					zap.Error(err),
				)
				failures++
				return nil
			}
			for i := range found {
				found[i].sourceEngine = det.Name()
			}
			all = append(all, found...)
			return nil
		})
	}
	// Goroutines only ever return nil.
	_ = g.Wait()

	return all, failures
}

func (a *Aggregator) convert(c *Candidate, tenantID string, now time.Time) model.OpportunitySuggestion {
	return model.OpportunitySuggestion{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Category:     c.Category,
		Type:         c.Type,
		Title:        c.Title,
		Priority:     model.TierForScores(c.Confidence, c.Urgency),
		Confidence:   c.Confidence,
		Impact:       c.Impact,
		Effort:       c.Effort,
		Urgency:      c.Urgency,
		Reasoning:    c.Reasoning,
		Contacts:     c.Contacts,
		Actions:      c.Actions,
		Status:       model.StatusPending,
		SourceEngine: c.sourceEngine,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// persist writes suggestions, skipping any whose (title, category, type)
// duplicates an open suggestion created inside the dedup window.
func (a *Aggregator) persist(ctx context.Context, tenantID string, suggestions []model.OpportunitySuggestion, now time.Time) ([]model.OpportunitySuggestion, int, error) {
	window := a.cfg.DedupWindowDays
	if window <= 0 {
		window = 7
	}
	since := now.AddDate(0, 0, -window)

	kept := make([]model.OpportunitySuggestion, 0, len(suggestions))
	dups := 0
	for i := range suggestions {
		s := &suggestions[i]
		dup, err := a.st.FindRecentDuplicate(ctx, tenantID, s.Title, s.Category, s.Type, since)
		if err != nil {
			return nil, 0, eris.Wrap(err, "opportunity: dedup check")
		}
		if dup {
			dups++
			continue
		}
		if err := a.st.CreateSuggestion(ctx, s); err != nil {
			return nil, 0, eris.Wrapf(err, "opportunity: persist suggestion %q", s.Title)
		}
		kept = append(kept, *s)
	}
	return kept, dups, nil
}

func validateFilters(f model.GenerateFilters) error {
	if f.MinConfidence < 0 || f.MinConfidence > 1 {
		return resilience.InvalidInput("min_confidence %v outside [0, 1]", f.MinConfidence)
	}
	if f.MinImpact < 0 || f.MinImpact > 100 {
		return resilience.InvalidInput("min_impact %v outside [0, 100]", f.MinImpact)
	}
	if f.Limit < 0 {
		return resilience.InvalidInput("limit %d is negative", f.Limit)
	}
	return nil
}

func matchesFilters(c *Candidate, f model.GenerateFilters) bool {
	if len(f.Categories) > 0 && !containsCategory(f.Categories, c.Category) {
		return false
	}
	if len(f.Types) > 0 && !containsString(f.Types, c.Type) {
		return false
	}
	if f.Priority != "" && model.TierForScores(c.Confidence, c.Urgency) != f.Priority {
		return false
	}
	if c.Confidence < f.MinConfidence {
		return false
	}
	if c.Impact < f.MinImpact {
		return false
	}
	if len(f.ContactIDs) > 0 {
		scoped := false
		for _, id := range c.Contacts {
			if containsString(f.ContactIDs, id) {
				scoped = true
				break
			}
		}
		if !scoped {
			return false
		}
	}
	return true
}

// rank orders suggestions by the requested key, highest first. Stable sort
// keeps detector output order for ties.
func rank(suggestions []model.OpportunitySuggestion, key model.SortKey) {
	less := func(i, j int) bool {
		a, b := &suggestions[i], &suggestions[j]
		switch key {
		case model.SortConfidence:
			return a.Confidence > b.Confidence
		case model.SortImpact:
			return a.Impact > b.Impact
		case model.SortUrgency:
			return a.Urgency > b.Urgency
		case model.SortRecency:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.CompositeScore() > b.CompositeScore()
		}
	}
	sort.SliceStable(suggestions, less)
}

func containsCategory(list []model.OpportunityCategory, v model.OpportunityCategory) bool {
	for _, c := range list {
		if c == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
