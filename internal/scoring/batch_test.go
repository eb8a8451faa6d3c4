package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
	"github.com/sells-group/network-intel/internal/store/storetest"
)

func seedBatchContacts(st *storetest.Fake, ids ...string) {
	for _, id := range ids {
		st.Seed(&model.Contact{
			ID:               id,
			TenantID:         "t1",
			FirstName:        "Test",
			RelationshipKind: model.KindColleague,
			CreatedAt:        testNow.AddDate(-1, 0, 0),
		})
	}
}

func TestBatchScoreAll(t *testing.T) {
	st := storetest.New()
	seedBatchContacts(st, "c1", "c2", "c3", "c4", "c5", "c6", "c7")
	e := testEngine(st)

	result, err := e.BatchScore(context.Background(), "t1", []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Scored)
	assert.Zero(t, result.Skipped)

	for _, id := range []string{"c1", "c7"} {
		require.NotNil(t, st.Contacts[id].Scoring, "contact %s should be scored", id)
	}
}

func TestBatchScoreSkipsFailedItems(t *testing.T) {
	st := storetest.New()
	seedBatchContacts(st, "c1", "c3")
	e := testEngine(st)

	result, err := e.BatchScore(context.Background(), "t1", []string{"c1", "c2", "c3"}, nil)

	require.Error(t, err)
	assert.Equal(t, resilience.KindPartialBatchFailure, resilience.KindOf(err))
	assert.Equal(t, 2, result.Scored)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []string{"c2"}, result.Failed)

	// Surviving items still got persisted.
	require.NotNil(t, st.Contacts["c1"].Scoring)
	require.NotNil(t, st.Contacts["c3"].Scoring)
}

func TestBatchScoreEmptyInput(t *testing.T) {
	e := testEngine(storetest.New())

	result, err := e.BatchScore(context.Background(), "t1", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, result.Scored)
	assert.Zero(t, result.Skipped)
}

func TestBatchScoreContextCancellation(t *testing.T) {
	st := storetest.New()
	seedBatchContacts(st, "c1", "c2")
	e := testEngine(st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.BatchScore(ctx, "t1", []string{"c1", "c2"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchScoreSharedHighValueSet(t *testing.T) {
	st := storetest.New()
	seedBatchContacts(st, "c1", "c2")
	st.Contacts["c2"].Scoring = &model.ContactScoring{Priority: 85, ScoredAt: testNow.Add(-time.Hour)}
	st.SeedEdges(model.Edge{TenantID: "t1", FromContactID: "c1", ToContactID: "c2", Strength: 0.8})

	e := testEngine(st)

	result, err := e.BatchScore(context.Background(), "t1", []string{"c1"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.Scored)

	// c1 has a single edge, and it touches a high-value contact.
	assert.Greater(t, st.Contacts["c1"].Scoring.Factors.MutualConnections, 0.0)
}
