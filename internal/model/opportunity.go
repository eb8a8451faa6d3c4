package model

import "time"

// OpportunityCategory is the broad bucket a suggestion belongs to.
type OpportunityCategory string

const (
	CategoryIntroduction     OpportunityCategory = "introduction"
	CategoryReconnection     OpportunityCategory = "reconnection"
	CategoryBusinessMatch    OpportunityCategory = "business_match"
	CategoryNetworkExpansion OpportunityCategory = "network_expansion"
	CategoryStrategicMove    OpportunityCategory = "strategic_move"
)

// OpportunityStatus is the lifecycle state of a suggestion.
type OpportunityStatus string

const (
	StatusPending    OpportunityStatus = "pending"
	StatusViewed     OpportunityStatus = "viewed"
	StatusAccepted   OpportunityStatus = "accepted"
	StatusInProgress OpportunityStatus = "in_progress"
	StatusCompleted  OpportunityStatus = "completed"
	StatusDismissed  OpportunityStatus = "dismissed"
)

// statusTransitions encodes the one-way state machine:
// PENDING -> VIEWED -> {ACCEPTED | IN_PROGRESS} -> COMPLETED, with DISMISSED
// reachable from any non-terminal state. There is no un-dismiss.
var statusTransitions = map[OpportunityStatus][]OpportunityStatus{
	StatusPending:    {StatusViewed, StatusDismissed},
	StatusViewed:     {StatusAccepted, StatusInProgress, StatusDismissed},
	StatusAccepted:   {StatusInProgress, StatusCompleted, StatusDismissed},
	StatusInProgress: {StatusCompleted, StatusDismissed},
	StatusCompleted:  {},
	StatusDismissed:  {},
}

// CanTransition reports whether moving from s to next is allowed.
func (s OpportunityStatus) CanTransition(next OpportunityStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s OpportunityStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// PriorityTier classifies a suggestion for display ordering.
type PriorityTier string

const (
	PriorityUrgent PriorityTier = "urgent"
	PriorityHigh   PriorityTier = "high"
	PriorityMedium PriorityTier = "medium"
	PriorityLow    PriorityTier = "low"
)

// Reasoning is the structured explanation attached to a suggestion.
type Reasoning struct {
	Summary           string   `json:"summary"`
	Evidence          []string `json:"evidence,omitempty"`
	SuccessIndicators []string `json:"success_indicators,omitempty"`
}

// SuggestedAction is one concrete next step attached to a suggestion.
type SuggestedAction struct {
	Label   string `json:"label"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message,omitempty"`
}

// OpportunitySuggestion is a unified, persisted candidate action produced by
// the aggregator. Mutated only via explicit status transitions.
type OpportunitySuggestion struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	Category OpportunityCategory `json:"category"`
	Type     string              `json:"type"`
	Title    string              `json:"title"`

	Priority   PriorityTier `json:"priority"`
	Confidence float64      `json:"confidence"` // 0-1
	Impact     float64      `json:"impact"`     // 0-100
	Effort     float64      `json:"effort"`     // 0-100
	Urgency    float64      `json:"urgency"`    // 0-100

	Reasoning Reasoning         `json:"reasoning"`
	Contacts  []string          `json:"contacts,omitempty"` // zero to two related contact IDs
	Actions   []SuggestedAction `json:"actions,omitempty"`

	Status       OpportunityStatus `json:"status"`
	SourceEngine string            `json:"source_engine"`

	StatusNotes     string    `json:"status_notes,omitempty"`
	StatusChangedBy string    `json:"status_changed_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CompositeScore is the default ranking key: confidence x impact x urgency
// with urgency normalized to 0-1.
func (o *OpportunitySuggestion) CompositeScore() float64 {
	return o.Confidence * o.Impact * (o.Urgency / 100)
}

// TierForScores derives a priority tier from confidence and urgency.
func TierForScores(confidence, urgency float64) PriorityTier {
	switch {
	case confidence >= 0.8 && urgency >= 70:
		return PriorityUrgent
	case confidence >= 0.6:
		return PriorityHigh
	case confidence >= 0.4:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// SortKey selects the ranking order for generated suggestions.
type SortKey string

const (
	SortComposite  SortKey = "composite"
	SortConfidence SortKey = "confidence"
	SortImpact     SortKey = "impact"
	SortUrgency    SortKey = "urgency"
	SortRecency    SortKey = "recency"
)

// GenerateFilters are the caller-supplied constraints for opportunity
// generation. The same shape is produced by the query parser.
type GenerateFilters struct {
	Categories    []OpportunityCategory `json:"categories,omitempty"`
	Types         []string              `json:"types,omitempty"`
	Priority      PriorityTier          `json:"priority,omitempty"`
	MinConfidence float64               `json:"min_confidence,omitempty"`
	MinImpact     float64               `json:"min_impact,omitempty"`
	ContactIDs    []string              `json:"contact_ids,omitempty"`
	SortBy        SortKey               `json:"sort_by,omitempty"`
	Limit         int                   `json:"limit,omitempty"`
}
