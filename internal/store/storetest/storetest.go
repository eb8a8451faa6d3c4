// Package storetest provides an in-memory store.Store fake for engine tests.
package storetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/internal/store"
)

// Fake is an in-memory store.Store. All data is held in exported maps and
// slices so tests can seed state directly and assert on what was written.
// Any function field, when set, overrides the in-memory behavior for that
// method, which lets tests inject failures.
type Fake struct {
	mu sync.Mutex

	Contacts    map[string]*model.Contact
	Analytics   map[string]*model.NetworkAnalytics
	Outreach    map[string][]model.OutreachRecord
	Campaigns   map[string][]model.CampaignRecord
	Edges       []model.Edge
	Potentials  []model.PotentialRelationship
	Suggestions []model.OpportunitySuggestion

	GetContactFn          func(ctx context.Context, tenantID, id string) (*model.Contact, error)
	UpdateContactScoresFn func(ctx context.Context, tenantID, id string, scoring *model.ContactScoring) error
	ListEdgesFn           func(ctx context.Context, tenantID string, contactIDs []string, minStrength float64) ([]model.Edge, error)
	CreateSuggestionFn    func(ctx context.Context, s *model.OpportunitySuggestion) error
	FindRecentDuplicateFn func(ctx context.Context, tenantID, title string, category model.OpportunityCategory, typ string, since time.Time) (bool, error)
}

// New returns an empty fake store.
func New() *Fake {
	return &Fake{
		Contacts:  make(map[string]*model.Contact),
		Analytics: make(map[string]*model.NetworkAnalytics),
		Outreach:  make(map[string][]model.OutreachRecord),
		Campaigns: make(map[string][]model.CampaignRecord),
	}
}

// Seed adds contacts to the fake.
func (f *Fake) Seed(contacts ...*model.Contact) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range contacts {
		f.Contacts[c.ID] = c
	}
	return f
}

// SeedEdges adds confirmed edges to the fake.
func (f *Fake) SeedEdges(edges ...model.Edge) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Edges = append(f.Edges, edges...)
	return f
}

func (f *Fake) CreateContact(_ context.Context, c *model.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Contacts[c.ID] = c
	return nil
}

func (f *Fake) GetContact(ctx context.Context, tenantID, id string) (*model.Contact, error) {
	if f.GetContactFn != nil {
		return f.GetContactFn(ctx, tenantID, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, resilience.NotFound("contact %s", id)
	}
	return c, nil
}

func (f *Fake) ListContacts(_ context.Context, tenantID string, filter store.ContactFilter) ([]model.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Contact
	for _, c := range f.Contacts {
		if c.TenantID != tenantID {
			continue
		}
		if len(filter.IDs) > 0 && !contains(filter.IDs, c.ID) {
			continue
		}
		if filter.Company != "" && !strings.EqualFold(filter.Company, c.Company) {
			continue
		}
		if filter.State != "" && !strings.EqualFold(filter.State, c.State) {
			continue
		}
		out = append(out, *c)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *Fake) UpdateContactScores(ctx context.Context, tenantID, id string, scoring *model.ContactScoring) error {
	if f.UpdateContactScoresFn != nil {
		return f.UpdateContactScoresFn(ctx, tenantID, id, scoring)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.Contacts[id]
	if !ok || c.TenantID != tenantID {
		return resilience.NotFound("contact %s", id)
	}
	c.Scoring = scoring
	return nil
}

func (f *Fake) GetNetworkAnalytics(_ context.Context, contactID string) (*model.NetworkAnalytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Analytics[contactID], nil
}

func (f *Fake) ListOutreach(_ context.Context, contactID string) ([]model.OutreachRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Outreach[contactID], nil
}

func (f *Fake) ListCampaigns(_ context.Context, contactID string) ([]model.CampaignRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Campaigns[contactID], nil
}

func (f *Fake) CreateEdge(_ context.Context, e *model.Edge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Edges = append(f.Edges, *e)
	return nil
}

func (f *Fake) ListEdges(ctx context.Context, tenantID string, contactIDs []string, minStrength float64) ([]model.Edge, error) {
	if f.ListEdgesFn != nil {
		return f.ListEdgesFn(ctx, tenantID, contactIDs, minStrength)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Edge
	for _, e := range f.Edges {
		if e.TenantID != tenantID || e.Strength < minStrength {
			continue
		}
		if len(contactIDs) > 0 {
			touches := false
			for _, id := range contactIDs {
				if e.Touches(id) {
					touches = true
					break
				}
			}
			if !touches {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *Fake) UpsertPotentialRelationship(_ context.Context, pr *model.PotentialRelationship) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Potentials {
		if f.Potentials[i].ContactID == pr.ContactID && f.Potentials[i].RelatedID == pr.RelatedID {
			f.Potentials[i] = *pr
			return nil
		}
	}
	f.Potentials = append(f.Potentials, *pr)
	return nil
}

func (f *Fake) ListPotentialRelationships(_ context.Context, tenantID, contactID string) ([]model.PotentialRelationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PotentialRelationship
	for _, pr := range f.Potentials {
		if pr.TenantID == tenantID && pr.ContactID == contactID {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (f *Fake) CreateSuggestion(ctx context.Context, s *model.OpportunitySuggestion) error {
	if f.CreateSuggestionFn != nil {
		return f.CreateSuggestionFn(ctx, s)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Suggestions = append(f.Suggestions, *s)
	return nil
}

func (f *Fake) GetSuggestion(_ context.Context, id string) (*model.OpportunitySuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Suggestions {
		if f.Suggestions[i].ID == id {
			s := f.Suggestions[i]
			return &s, nil
		}
	}
	return nil, resilience.NotFound("suggestion %s", id)
}

func (f *Fake) ListSuggestions(_ context.Context, tenantID string, filter store.SuggestionFilter) ([]model.OpportunitySuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.OpportunitySuggestion
	for _, s := range f.Suggestions {
		if s.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		out = append(out, s)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *Fake) FindRecentDuplicate(ctx context.Context, tenantID, title string, category model.OpportunityCategory, typ string, since time.Time) (bool, error) {
	if f.FindRecentDuplicateFn != nil {
		return f.FindRecentDuplicateFn(ctx, tenantID, title, category, typ, since)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.Suggestions {
		if s.TenantID != tenantID || s.Status.Terminal() {
			continue
		}
		if s.Title == title && s.Category == category && s.Type == typ && !s.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) UpdateSuggestionStatus(_ context.Context, id string, status model.OpportunityStatus, actor, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Suggestions {
		if f.Suggestions[i].ID != id {
			continue
		}
		if !f.Suggestions[i].Status.CanTransition(status) {
			return resilience.InvalidInput("transition %s -> %s", f.Suggestions[i].Status, status)
		}
		f.Suggestions[i].Status = status
		f.Suggestions[i].StatusChangedBy = actor
		f.Suggestions[i].StatusNotes = notes
		return nil
	}
	return resilience.NotFound("suggestion %s", id)
}

func (f *Fake) Migrate(context.Context) error { return nil }
func (f *Fake) Close() error                  { return nil }

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
