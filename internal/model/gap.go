package model

import "time"

// GapDimension is one axis of network coverage analysis.
type GapDimension string

const (
	DimIndustry    GapDimension = "industry"
	DimRole        GapDimension = "role"
	DimSeniority   GapDimension = "seniority"
	DimGeography   GapDimension = "geography"
	DimFunction    GapDimension = "function"
	DimCompanySize GapDimension = "company_size"
	DimDiversity   GapDimension = "diversity"
)

// NetworkGap is a derived, non-persisted summary of under-coverage along one
// dimension. Recomputed per request.
type NetworkGap struct {
	Dimension GapDimension `json:"dimension"`
	Segment   string       `json:"segment,omitempty"`

	Coverage  float64 `json:"coverage"`  // observed share of benchmark, capped at 1
	Benchmark float64 `json:"benchmark"` // target share, 0-1
	Severity  float64 `json:"severity"`  // coverage shortfall, 0-1
	Weight    float64 `json:"weight"`    // per-dimension priority weight

	Suggestions []string `json:"suggestions,omitempty"`
}

// NetworkAnalysisResult is the full gap-analysis output for a tenant.
type NetworkAnalysisResult struct {
	TenantID     string       `json:"tenant_id"`
	ContactCount int          `json:"contact_count"`
	EdgeCount    int          `json:"edge_count"`
	Gaps         []NetworkGap `json:"gaps"`
	AnalyzedAt   time.Time    `json:"analyzed_at"`
}
