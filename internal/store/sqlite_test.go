package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLiteContactRoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	lastContacted := time.Now().UTC().AddDate(0, 0, -40).Truncate(time.Second)
	c := &model.Contact{
		TenantID:         "t1",
		FirstName:        "Dana",
		LastName:         "Reeves",
		Email:            "dana@stripe.com",
		Company:          "Stripe",
		Position:         "VP of Sales",
		City:             "Austin",
		State:            "TX",
		RelationshipKind: model.KindClient,
		Networks:         []string{"linkedin"},
		LastContactedAt:  &lastContacted,
	}
	require.NoError(t, st.CreateContact(ctx, c))
	require.NotEmpty(t, c.ID)

	got, err := st.GetContact(ctx, "t1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Reeves", got.FullName())
	assert.Equal(t, model.KindClient, got.RelationshipKind)
	assert.Equal(t, []string{"linkedin"}, got.Networks)
	require.NotNil(t, got.LastContactedAt)
	assert.WithinDuration(t, lastContacted, *got.LastContactedAt, time.Second)
}

func TestSQLiteGetContactNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetContact(context.Background(), "t1", "missing")
	assert.True(t, resilience.IsNotFound(err))
}

func TestSQLiteContactTenantIsolation(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := &model.Contact{TenantID: "t1", FirstName: "Dana"}
	require.NoError(t, st.CreateContact(ctx, c))

	_, err := st.GetContact(ctx, "t2", c.ID)
	assert.True(t, resilience.IsNotFound(err))
}

func TestSQLiteListContactsFilters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, c := range []*model.Contact{
		{TenantID: "t1", FirstName: "Ana", Company: "Stripe", State: "TX"},
		{TenantID: "t1", FirstName: "Bob", Company: "Plaid", State: "CA"},
		{TenantID: "t1", FirstName: "Cam", Company: "Stripe", State: "CA"},
	} {
		require.NoError(t, st.CreateContact(ctx, c))
	}

	byCompany, err := st.ListContacts(ctx, "t1", ContactFilter{Company: "Stripe"})
	require.NoError(t, err)
	assert.Len(t, byCompany, 2)

	byState, err := st.ListContacts(ctx, "t1", ContactFilter{State: "CA"})
	require.NoError(t, err)
	assert.Len(t, byState, 2)

	limited, err := st.ListContacts(ctx, "t1", ContactFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteUpdateContactScores(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	c := &model.Contact{TenantID: "t1", FirstName: "Dana"}
	require.NoError(t, st.CreateContact(ctx, c))

	scoring := &model.ContactScoring{
		Priority:       72.5,
		Opportunity:    61.2,
		StrategicValue: 55.0,
		Flags:          []string{"contact_gap"},
		ScoredAt:       time.Now().UTC(),
	}
	require.NoError(t, st.UpdateContactScores(ctx, "t1", c.ID, scoring))

	got, err := st.GetContact(ctx, "t1", c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Scoring)
	assert.Equal(t, 72.5, got.Scoring.Priority)
	assert.Equal(t, []string{"contact_gap"}, got.Scoring.Flags)

	err = st.UpdateContactScores(ctx, "t1", "ghost", scoring)
	assert.True(t, resilience.IsNotFound(err))
}

func TestSQLiteEdges(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := &model.Contact{TenantID: "t1", FirstName: "A"}
	b := &model.Contact{TenantID: "t1", FirstName: "B"}
	require.NoError(t, st.CreateContact(ctx, a))
	require.NoError(t, st.CreateContact(ctx, b))

	require.NoError(t, st.CreateEdge(ctx, &model.Edge{
		TenantID: "t1", FromContactID: a.ID, ToContactID: b.ID,
		Kind: model.KindColleague, Strength: 0.8, Confidence: 0.9, Verified: true,
	}))

	err := st.CreateEdge(ctx, &model.Edge{
		TenantID: "t1", FromContactID: a.ID, ToContactID: b.ID,
		Kind: model.KindColleague, Strength: 1.5, Confidence: 0.9,
	})
	assert.True(t, resilience.IsInvalidInput(err))

	edges, err := st.ListEdges(ctx, "t1", []string{a.ID}, 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, b.ID, edges[0].Other(a.ID))

	none, err := st.ListEdges(ctx, "t1", []string{a.ID}, 0.9)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteUpsertPotentialRelationship(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := &model.Contact{TenantID: "t1", FirstName: "A"}
	b := &model.Contact{TenantID: "t1", FirstName: "B"}
	require.NoError(t, st.CreateContact(ctx, a))
	require.NoError(t, st.CreateContact(ctx, b))

	pr := &model.PotentialRelationship{
		TenantID:     "t1",
		ContactID:    a.ID,
		RelatedID:    b.ID,
		InferredKind: model.KindProspect,
		Confidence:   0.45,
		Evidence: []model.Evidence{
			{Type: model.EvidenceSameLocation, Score: 0.3, Details: "Austin, TX"},
		},
	}
	require.NoError(t, st.UpsertPotentialRelationship(ctx, pr))

	// Re-running discovery replaces the stored candidate in place.
	pr2 := &model.PotentialRelationship{
		TenantID:     "t1",
		ContactID:    a.ID,
		RelatedID:    b.ID,
		InferredKind: model.KindColleague,
		Confidence:   0.8,
		Evidence: []model.Evidence{
			{Type: model.EvidenceSameCompany, Score: 0.8, Details: "Stripe"},
		},
	}
	require.NoError(t, st.UpsertPotentialRelationship(ctx, pr2))

	prs, err := st.ListPotentialRelationships(ctx, "t1", a.ID)
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, model.KindColleague, prs[0].InferredKind)
	assert.Equal(t, 0.8, prs[0].Confidence)
	require.Len(t, prs[0].Evidence, 1)
	assert.Equal(t, model.EvidenceSameCompany, prs[0].Evidence[0].Type)
}

func TestSQLiteSuggestionLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sg := &model.OpportunitySuggestion{
		TenantID:   "t1",
		Category:   model.CategoryReconnection,
		Type:       "reconnect",
		Title:      "Reconnect with Dana Reeves",
		Priority:   model.PriorityHigh,
		Confidence: 0.7,
		Impact:     65,
		Effort:     15,
		Urgency:    80,
		Reasoning:  model.Reasoning{Summary: "120 days since last contact"},
	}
	require.NoError(t, st.CreateSuggestion(ctx, sg))
	assert.Equal(t, model.StatusPending, sg.Status)

	require.NoError(t, st.UpdateSuggestionStatus(ctx, sg.ID, model.StatusViewed, "ops", ""))
	require.NoError(t, st.UpdateSuggestionStatus(ctx, sg.ID, model.StatusInProgress, "ops", "call scheduled"))

	err := st.UpdateSuggestionStatus(ctx, sg.ID, model.StatusViewed, "ops", "")
	assert.True(t, resilience.IsInvalidInput(err))

	got, err := st.GetSuggestion(ctx, sg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, "ops", got.StatusChangedBy)
	assert.Equal(t, "call scheduled", got.StatusNotes)

	err = st.UpdateSuggestionStatus(ctx, "ghost", model.StatusViewed, "", "")
	assert.True(t, resilience.IsNotFound(err))
}

func TestSQLiteListSuggestionsFilter(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, sg := range []*model.OpportunitySuggestion{
		{TenantID: "t1", Category: model.CategoryIntroduction, Type: "warm_introduction", Title: "Intro A", Priority: model.PriorityHigh},
		{TenantID: "t1", Category: model.CategoryReconnection, Type: "reconnect", Title: "Reconnect B", Priority: model.PriorityMedium},
	} {
		require.NoError(t, st.CreateSuggestion(ctx, sg))
	}

	intros, err := st.ListSuggestions(ctx, "t1", SuggestionFilter{Category: model.CategoryIntroduction})
	require.NoError(t, err)
	require.Len(t, intros, 1)
	assert.Equal(t, "Intro A", intros[0].Title)

	pending, err := st.ListSuggestions(ctx, "t1", SuggestionFilter{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestSQLiteFindRecentDuplicate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	sg := &model.OpportunitySuggestion{
		TenantID: "t1",
		Category: model.CategoryReconnection,
		Type:     "reconnect",
		Title:    "Reconnect with Dana Reeves",
		Priority: model.PriorityHigh,
	}
	require.NoError(t, st.CreateSuggestion(ctx, sg))

	since := time.Now().UTC().AddDate(0, 0, -7)

	dup, err := st.FindRecentDuplicate(ctx, "t1", sg.Title, sg.Category, sg.Type, since)
	require.NoError(t, err)
	assert.True(t, dup)

	// Different title is not a duplicate.
	dup, err = st.FindRecentDuplicate(ctx, "t1", "Other", sg.Category, sg.Type, since)
	require.NoError(t, err)
	assert.False(t, dup)

	// Dismissed suggestions no longer block regeneration.
	require.NoError(t, st.UpdateSuggestionStatus(ctx, sg.ID, model.StatusDismissed, "", ""))
	dup, err = st.FindRecentDuplicate(ctx, "t1", sg.Title, sg.Category, sg.Type, since)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestSQLiteNetworkAnalyticsAbsent(t *testing.T) {
	st := newTestSQLiteStore(t)

	na, err := st.GetNetworkAnalytics(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, na)
}

func TestSQLiteOutreachEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)

	records, err := st.ListOutreach(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)

	campaigns, err := st.ListCampaigns(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, campaigns)
}
