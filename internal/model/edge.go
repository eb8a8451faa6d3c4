package model

import "time"

// RelationshipKind is the typed kind of a relationship edge.
type RelationshipKind string

const (
	KindColleague    RelationshipKind = "colleague"
	KindClient       RelationshipKind = "client"
	KindPartner      RelationshipKind = "partner"
	KindMentor       RelationshipKind = "mentor"
	KindMentee       RelationshipKind = "mentee"
	KindInvestor     RelationshipKind = "investor"
	KindAdvisor      RelationshipKind = "advisor"
	KindFriend       RelationshipKind = "friend"
	KindFamily       RelationshipKind = "family"
	KindAcquaintance RelationshipKind = "acquaintance"
	KindProspect     RelationshipKind = "prospect"
	KindCompetitor   RelationshipKind = "competitor"
)

// Edge is a confirmed relationship between two contacts. Storage is
// directional (FromContactID -> ToContactID) but the relationship is treated
// as undirected by the graph layer.
type Edge struct {
	ID            string           `json:"id"`
	TenantID      string           `json:"tenant_id"`
	FromContactID string           `json:"from_contact_id"`
	ToContactID   string           `json:"to_contact_id"`
	Kind          RelationshipKind `json:"kind"`

	Strength   float64 `json:"strength"`   // 0-1
	Confidence float64 `json:"confidence"` // 0-1
	Mutual     bool    `json:"mutual"`
	Verified   bool    `json:"verified"`

	InteractionCount int        `json:"interaction_count"`
	LastVerifiedAt   *time.Time `json:"last_verified_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Other returns the contact on the far side of the edge from id, or "" if id
// is not an endpoint.
func (e *Edge) Other(id string) string {
	switch id {
	case e.FromContactID:
		return e.ToContactID
	case e.ToContactID:
		return e.FromContactID
	default:
		return ""
	}
}

// Touches reports whether id is an endpoint of the edge.
func (e *Edge) Touches(id string) bool {
	return e.FromContactID == id || e.ToContactID == id
}

// EvidenceType identifies one independent inference check.
type EvidenceType string

const (
	EvidenceSameCompany    EvidenceType = "same_company"
	EvidenceRelatedCompany EvidenceType = "related_company"
	EvidenceSharedDomain   EvidenceType = "shared_email_domain"
	EvidenceSameLocation   EvidenceType = "same_location"
	EvidenceSimilarRole    EvidenceType = "similar_role"
	EvidenceSharedNetwork  EvidenceType = "shared_network"
	EvidenceMutuals        EvidenceType = "mutual_connections"
)

// Evidence is one (type, score, details) contribution toward an inferred
// relationship.
type Evidence struct {
	Type    EvidenceType `json:"type"`
	Score   float64      `json:"score"` // 0-1
	Details string       `json:"details,omitempty"`
}

// PotentialRelationship is an unconfirmed, evidence-backed candidate edge
// proposed by the inference engine. It is a distinct type from Edge and is
// never queryable as a confirmed graph edge.
type PotentialRelationship struct {
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	ContactID    string           `json:"contact_id"`
	RelatedID    string           `json:"related_id"`
	InferredKind RelationshipKind `json:"inferred_kind"`
	Confidence   float64          `json:"confidence"` // 0-1
	Evidence     []Evidence       `json:"evidence"`
	DiscoveredAt time.Time        `json:"discovered_at"`
}
