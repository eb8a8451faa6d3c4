package opportunity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/network-intel/internal/graph"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/scoring"
	"github.com/sells-group/network-intel/internal/store"
)

// coverageThreshold is the floor below which a segment counts as a gap.
const coverageThreshold = 0.5

var titleCaser = cases.Title(language.English)

// dimensionSpec describes one coverage axis: its target share per segment,
// its priority weight, and how a contact is bucketed into a segment.
type dimensionSpec struct {
	dim      model.GapDimension
	weight   float64
	segments map[string]float64
	classify func(t *scoring.Tables, c *model.Contact) string
}

// GapAnalyzer computes network coverage against fixed benchmarks across
// seven dimensions. Results are derived per request, never persisted.
type GapAnalyzer struct {
	st     store.Store
	tables *scoring.Tables
	dims   []dimensionSpec
	now    func() time.Time
}

// NewGapAnalyzer creates the coverage analyzer.
func NewGapAnalyzer(st store.Store, tables *scoring.Tables) *GapAnalyzer {
	return &GapAnalyzer{
		st:     st,
		tables: tables,
		dims:   defaultDimensions(),
		now:    time.Now,
	}
}

// WithClock overrides the analyzer clock; used in tests.
func (a *GapAnalyzer) WithClock(now func() time.Time) *GapAnalyzer {
	a.now = now
	return a
}

func defaultDimensions() []dimensionSpec {
	return []dimensionSpec{
		{
			dim:    model.DimIndustry,
			weight: 0.9,
			segments: map[string]float64{
				"technology": 0.25, "finance": 0.15, "healthcare": 0.15,
				"manufacturing": 0.10, "media": 0.10, "real estate": 0.10,
				"energy": 0.08, "education": 0.07,
			},
			classify: classifyIndustry,
		},
		{
			dim:    model.DimRole,
			weight: 0.8,
			segments: map[string]float64{
				"engineering": 0.20, "sales": 0.20, "marketing": 0.15,
				"product": 0.15, "finance": 0.15, "operations": 0.15,
			},
			classify: classifyRole,
		},
		{
			dim:    model.DimSeniority,
			weight: 0.85,
			segments: map[string]float64{
				"executive": 0.25, "senior": 0.40, "individual contributor": 0.35,
			},
			classify: classifySeniority,
		},
		{
			dim:    model.DimGeography,
			weight: 0.6,
			segments: map[string]float64{
				"west": 0.30, "northeast": 0.25, "south": 0.25, "midwest": 0.20,
			},
			classify: classifyGeography,
		},
		{
			dim:    model.DimFunction,
			weight: 0.7,
			segments: map[string]float64{
				"builder": 0.30, "seller": 0.25, "operator": 0.25, "investor": 0.20,
			},
			classify: classifyFunction,
		},
		{
			dim:    model.DimCompanySize,
			weight: 0.5,
			segments: map[string]float64{
				"enterprise": 0.35, "mid-market": 0.35, "startup": 0.30,
			},
			classify: classifyCompanySize,
		},
	}
}

// Analyze computes the full gap report for a tenant.
func (a *GapAnalyzer) Analyze(ctx context.Context, tenantID string) (*model.NetworkAnalysisResult, error) {
	snap, err := graph.Load(ctx, a.st, tenantID)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeSnapshot(snap), nil
}

// AnalyzeSnapshot computes the gap report against an already-loaded snapshot.
func (a *GapAnalyzer) AnalyzeSnapshot(snap *graph.Snapshot) *model.NetworkAnalysisResult {
	contacts := snap.Contacts()

	var gaps []model.NetworkGap
	for _, spec := range a.dims {
		gaps = append(gaps, a.dimensionGaps(spec, contacts)...)
	}
	gaps = append(gaps, a.diversityGap(contacts)...)

	// Worst shortfall first, weighted by the dimension's priority.
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Severity*gaps[i].Weight > gaps[j].Severity*gaps[j].Weight
	})

	return &model.NetworkAnalysisResult{
		TenantID:     snap.TenantID,
		ContactCount: snap.ContactCount(),
		EdgeCount:    snap.EdgeCount(),
		Gaps:         gaps,
		AnalyzedAt:   a.now().UTC(),
	}
}

// dimensionGaps buckets contacts into one dimension's segments and emits a
// gap for every segment whose coverage falls below the threshold. Coverage
// is the observed share of the benchmark share, capped at 1.
func (a *GapAnalyzer) dimensionGaps(spec dimensionSpec, contacts []*model.Contact) []model.NetworkGap {
	if len(contacts) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, c := range contacts {
		if segment := spec.classify(a.tables, c); segment != "" {
			counts[segment]++
		}
	}

	segments := make([]string, 0, len(spec.segments))
	for segment := range spec.segments {
		segments = append(segments, segment)
	}
	sort.Strings(segments)

	var gaps []model.NetworkGap
	for _, segment := range segments {
		target := spec.segments[segment]
		observed := float64(counts[segment]) / float64(len(contacts))
		coverage := observed / target
		if coverage > 1 {
			coverage = 1
		}
		if coverage >= coverageThreshold {
			continue
		}

		label := titleCaser.String(segment)
		gaps = append(gaps, model.NetworkGap{
			Dimension: spec.dim,
			Segment:   segment,
			Coverage:  coverage,
			Benchmark: target,
			Severity:  1 - coverage,
			Weight:    spec.weight,
			Suggestions: []string{
				fmt.Sprintf("Add contacts in the %s %s segment", label, spec.dim),
				fmt.Sprintf("Ask existing %s contacts for introductions", label),
			},
		})
	}
	return gaps
}

// diversityGap measures overall network breadth as the fraction of industry
// segments with any representation at all.
func (a *GapAnalyzer) diversityGap(contacts []*model.Contact) []model.NetworkGap {
	if len(contacts) == 0 {
		return nil
	}

	industries := defaultDimensions()[0].segments
	represented := make(map[string]bool)
	for _, c := range contacts {
		if segment := classifyIndustry(a.tables, c); segment != "" {
			represented[segment] = true
		}
	}

	coverage := float64(len(represented)) / float64(len(industries))
	if coverage >= coverageThreshold {
		return nil
	}

	return []model.NetworkGap{{
		Dimension: model.DimDiversity,
		Coverage:  coverage,
		Benchmark: 1,
		Severity:  1 - coverage,
		Weight:    0.4,
		Suggestions: []string{
			"Broaden the network beyond its current industry concentration",
			"Attend cross-industry events to diversify connections",
		},
	}}
}

// industryBuckets maps profile keywords to industry segments.
var industryBuckets = map[string][]string{
	"technology":    {"software", "saas", "cloud", "ai", "tech", "data", "cybersecurity"},
	"finance":       {"bank", "capital", "finance", "fintech", "insurance", "investment"},
	"healthcare":    {"health", "medical", "pharma", "biotech", "hospital", "clinic"},
	"manufacturing": {"manufactur", "industrial", "factory", "automotive", "aerospace"},
	"media":         {"media", "publishing", "entertainment", "advertising", "agency"},
	"real estate":   {"real estate", "property", "construction", "development"},
	"energy":        {"energy", "solar", "renewable", "oil", "gas", "utility"},
	"education":     {"education", "university", "school", "learning", "training"},
}

func classifyIndustry(_ *scoring.Tables, c *model.Contact) string {
	return bucketOf(industryBuckets, c.Company+" "+c.Position)
}

var roleBuckets = map[string][]string{
	"engineering": {"engineer", "developer", "architect", "cto", "technical"},
	"sales":       {"sales", "account executive", "business development", "revenue"},
	"marketing":   {"marketing", "brand", "growth", "content", "communications"},
	"product":     {"product", "design", "ux", "research"},
	"finance":     {"finance", "cfo", "accounting", "controller", "treasury"},
	"operations":  {"operations", "coo", "supply", "logistics", "program"},
}

func classifyRole(_ *scoring.Tables, c *model.Contact) string {
	return bucketOf(roleBuckets, c.Position)
}

func classifySeniority(t *scoring.Tables, c *model.Contact) string {
	switch score := t.SeniorityScore(c.Position); {
	case score >= 85:
		return "executive"
	case score >= 55:
		return "senior"
	default:
		return "individual contributor"
	}
}

var geoBuckets = map[string][]string{
	"west":      {"ca", "wa", "or", "co", "az", "nv", "ut"},
	"northeast": {"ny", "ma", "nj", "ct", "pa", "md", "dc"},
	"south":     {"tx", "fl", "ga", "nc", "tn", "va"},
	"midwest":   {"il", "oh", "mi", "mn", "wi", "mo", "in"},
}

func classifyGeography(_ *scoring.Tables, c *model.Contact) string {
	state := strings.ToLower(strings.TrimSpace(c.State))
	if state == "" {
		return ""
	}
	for region, states := range geoBuckets {
		for _, s := range states {
			if state == s {
				return region
			}
		}
	}
	return ""
}

var functionBuckets = map[string][]string{
	"builder":  {"engineer", "developer", "founder", "product", "designer"},
	"seller":   {"sales", "marketing", "business development", "growth"},
	"operator": {"operations", "finance", "legal", "hr", "people", "program"},
	"investor": {"investor", "venture", "capital", "angel", "fund"},
}

func classifyFunction(_ *scoring.Tables, c *model.Contact) string {
	return bucketOf(functionBuckets, c.Position)
}

func classifyCompanySize(t *scoring.Tables, c *model.Contact) string {
	switch score := bestSizeScore(t, c.Company); {
	case score >= 70:
		return "enterprise"
	case score >= 50:
		return "mid-market"
	case score > 0:
		return "startup"
	default:
		return ""
	}
}

func bestSizeScore(t *scoring.Tables, company string) float64 {
	var best float64
	for kw, score := range t.CompanySizeKeywords {
		if len(scoring.MatchKeywords([]string{kw}, company)) > 0 && score > best {
			best = score
		}
	}
	return best
}

// bucketOf returns the first bucket, in sorted key order, whose keywords
// match the text. Sorted order keeps classification deterministic.
func bucketOf(buckets map[string][]string, text string) string {
	lower := strings.ToLower(text)
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, kw := range buckets[key] {
			if strings.Contains(lower, kw) {
				return key
			}
		}
	}
	return ""
}

// NetworkGapDetector adapts the analyzer into the detector interface,
// emitting a network-expansion candidate per detected gap.
type NetworkGapDetector struct {
	analyzer *GapAnalyzer
}

// NewNetworkGapDetector creates the gap-driven detector.
func NewNetworkGapDetector(analyzer *GapAnalyzer) *NetworkGapDetector {
	return &NetworkGapDetector{analyzer: analyzer}
}

func (d *NetworkGapDetector) Name() string { return "network_gap" }

func (d *NetworkGapDetector) Detect(_ context.Context, snap *graph.Snapshot) ([]Candidate, error) {
	result := d.analyzer.AnalyzeSnapshot(snap)

	var out []Candidate
	for _, gap := range result.Gaps {
		label := titleCaser.String(gap.Segment)
		title := fmt.Sprintf("Expand %s coverage", gap.Dimension)
		if gap.Segment != "" {
			title = fmt.Sprintf("Expand %s coverage: %s", gap.Dimension, label)
		}

		out = append(out, Candidate{
			Category:   model.CategoryNetworkExpansion,
			Type:       "coverage_gap",
			Title:      title,
			Confidence: 0.5 + gap.Weight*0.3,
			Impact:     40 + gap.Severity*30,
			Effort:     60,
			Urgency:    30 + gap.Weight*20,
			Reasoning: model.Reasoning{
				Summary: fmt.Sprintf("Network coverage of %s (%s) is %.0f%% of benchmark.",
					gap.Dimension, label, gap.Coverage*100),
				Evidence:          gap.Suggestions,
				SuccessIndicators: []string{"new contacts added in the gap segment"},
			},
			Actions: []model.SuggestedAction{
				{Label: "Plan outreach into the under-covered segment"},
			},
		})
	}
	return out, nil
}
