package model

import "time"

// Tier is a coarse contact-priority classification used for ranking defaults.
type Tier string

const (
	TierTop Tier = "top"
	TierMid Tier = "mid"
	TierLow Tier = "low"
)

// Contact represents a person known to a tenant.
type Contact struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`

	// Tenant-scoped relationship label (colleague, client, mentor, ...).
	RelationshipKind RelationshipKind `json:"relationship_kind,omitempty"`

	// Networks lists professional networks the contact is present on
	// (e.g. "linkedin"), used as weak inference evidence.
	Networks []string `json:"networks,omitempty"`

	Scoring *ContactScoring `json:"scoring,omitempty"`

	LastContactedAt  *time.Time `json:"last_contacted_at,omitempty"`
	ProfileUpdatedAt *time.Time `json:"profile_updated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FullName returns the contact's display name.
func (c *Contact) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// ContactScoring holds the derived scores for a contact plus the sub-factor
// breakdown that produced them. All values are 0-100.
type ContactScoring struct {
	Priority       float64 `json:"priority"`
	Opportunity    float64 `json:"opportunity"`
	StrategicValue float64 `json:"strategic_value"`

	Factors ScoreFactors `json:"factors"`

	// Flags are short machine tags raised by the opportunity-indicator
	// sub-score (e.g. "recent_profile_update", "contact_gap").
	Flags []string `json:"flags,omitempty"`

	ScoredAt time.Time `json:"scored_at"`
}

// ScoreFactors is the structured record of the six sub-scores.
type ScoreFactors struct {
	NetworkPosition       float64 `json:"network_position"`
	RelationshipStrength  float64 `json:"relationship_strength"`
	ProfessionalRelevance float64 `json:"professional_relevance"`
	MutualConnections     float64 `json:"mutual_connections"`
	EngagementPatterns    float64 `json:"engagement_patterns"`
	OpportunityIndicators float64 `json:"opportunity_indicators"`
}

// Tier buckets the priority score into the coarse classification used by
// ranking and visualization defaults.
func (s *ContactScoring) Tier() Tier {
	switch {
	case s.Priority >= 70:
		return TierTop
	case s.Priority >= 40:
		return TierMid
	default:
		return TierLow
	}
}

// NetworkAnalytics is the per-contact graph-analytics record consumed by the
// network-position sub-score. It may be absent for a contact.
type NetworkAnalytics struct {
	ContactID             string  `json:"contact_id"`
	InfluenceScore        float64 `json:"influence_score"` // 0-1
	ConnectionCount       int     `json:"connection_count"`
	BetweennessCentrality float64 `json:"betweenness_centrality"` // 0-1
}

// OutreachRecord is one historical outreach touch to a contact.
type OutreachRecord struct {
	ContactID string    `json:"contact_id"`
	Channel   string    `json:"channel"`
	SentAt    time.Time `json:"sent_at"`
	Responded bool      `json:"responded"`
}

// CampaignRecord summarizes a contact's participation in one campaign.
type CampaignRecord struct {
	ContactID string `json:"contact_id"`
	Converted bool   `json:"converted"`
}
