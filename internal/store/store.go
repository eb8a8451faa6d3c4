// Package store provides persistence for contacts, relationship edges,
// inferred relationships, and opportunity suggestions. The analysis engines
// only ever see this interface; transactional isolation is the store's
// responsibility, not theirs.
package store

import (
	"context"
	"time"

	"github.com/sells-group/network-intel/internal/model"
)

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	IDs     []string `json:"ids,omitempty"`
	Company string   `json:"company,omitempty"`
	State   string   `json:"state,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}

// SuggestionFilter specifies criteria for listing opportunity suggestions.
type SuggestionFilter struct {
	Status   model.OpportunityStatus   `json:"status,omitempty"`
	Category model.OpportunityCategory `json:"category,omitempty"`
	Limit    int                       `json:"limit,omitempty"`
}

// Store defines the persistence interface consumed by the analysis engines.
type Store interface {
	// Contacts
	CreateContact(ctx context.Context, c *model.Contact) error
	GetContact(ctx context.Context, tenantID, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, tenantID string, filter ContactFilter) ([]model.Contact, error)
	UpdateContactScores(ctx context.Context, tenantID, id string, scoring *model.ContactScoring) error

	// Per-contact analytics and history consumed by the scoring engine.
	GetNetworkAnalytics(ctx context.Context, contactID string) (*model.NetworkAnalytics, error)
	ListOutreach(ctx context.Context, contactID string) ([]model.OutreachRecord, error)
	ListCampaigns(ctx context.Context, contactID string) ([]model.CampaignRecord, error)

	// Confirmed edges. ListEdges never returns potential relationships.
	CreateEdge(ctx context.Context, e *model.Edge) error
	ListEdges(ctx context.Context, tenantID string, contactIDs []string, minStrength float64) ([]model.Edge, error)

	// Inferred candidates, kept separate from confirmed edges.
	UpsertPotentialRelationship(ctx context.Context, pr *model.PotentialRelationship) error
	ListPotentialRelationships(ctx context.Context, tenantID, contactID string) ([]model.PotentialRelationship, error)

	// Opportunity suggestions
	CreateSuggestion(ctx context.Context, s *model.OpportunitySuggestion) error
	GetSuggestion(ctx context.Context, id string) (*model.OpportunitySuggestion, error)
	ListSuggestions(ctx context.Context, tenantID string, filter SuggestionFilter) ([]model.OpportunitySuggestion, error)
	// FindRecentDuplicate reports whether an open suggestion with the same
	// (title, category, type) was created for the tenant after since.
	FindRecentDuplicate(ctx context.Context, tenantID, title string, category model.OpportunityCategory, typ string, since time.Time) (bool, error)
	UpdateSuggestionStatus(ctx context.Context, id string, status model.OpportunityStatus, actor, notes string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
