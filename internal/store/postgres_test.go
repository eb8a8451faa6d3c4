package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit
// testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresStore{pool: mock}, mock
}

var contactColumns = []string{
	"id", "tenant_id", "first_name", "last_name", "email", "company", "position",
	"city", "state", "relationship_kind", "networks", "scoring",
	"last_contacted_at", "profile_updated_at", "created_at", "updated_at",
}

func TestPostgresGetContact(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("t1", "c1").
		WillReturnRows(pgxmock.NewRows(contactColumns).AddRow(
			"c1", "t1", "Dana", "Reeves", "dana@stripe.com", "Stripe", "VP of Sales",
			"Austin", "TX", "client", []byte(`["linkedin"]`), []byte(nil),
			nil, nil, now, now,
		))

	c, err := s.GetContact(context.Background(), "t1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Reeves", c.FullName())
	assert.Equal(t, model.KindClient, c.RelationshipKind)
	assert.Equal(t, []string{"linkedin"}, c.Networks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetContactNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM contacts WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs("t1", "missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetContact(context.Background(), "t1", "missing")
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateContactScores(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	scoring := &model.ContactScoring{Priority: 72.5}

	mock.ExpectExec(`UPDATE contacts SET scoring = \$1, updated_at = \$2 WHERE tenant_id = \$3 AND id = \$4`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "t1", "c1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateContactScores(context.Background(), "t1", "c1", scoring))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateContactScoresUnknownContact(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE contacts SET scoring`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "t1", "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateContactScores(context.Background(), "t1", "ghost", &model.ContactScoring{})
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetNetworkAnalyticsAbsent(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM network_analytics WHERE contact_id = \$1`).
		WithArgs("c1").
		WillReturnError(pgx.ErrNoRows)

	na, err := s.GetNetworkAnalytics(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, na)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateEdgeValidatesRanges(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.CreateEdge(context.Background(), &model.Edge{
		TenantID:      "t1",
		FromContactID: "a",
		ToContactID:   "b",
		Strength:      1.5,
		Confidence:    0.9,
	})
	assert.True(t, resilience.IsInvalidInput(err))
}

func TestPostgresListEdgesMinStrength(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM relationship_edges WHERE tenant_id = \$1 AND strength >= \$2`).
		WithArgs("t1", 0.5).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "from_contact_id", "to_contact_id", "kind", "strength",
			"confidence", "mutual", "verified", "interaction_count", "last_verified_at", "created_at",
		}).AddRow("e1", "t1", "a", "b", "colleague", 0.8, 0.9, true, true, 12, nil, now))

	edges, err := s.ListEdges(context.Background(), "t1", nil, 0.5)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, model.KindColleague, edges[0].Kind)
	assert.Equal(t, 0.8, edges[0].Strength)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindRecentDuplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	since := time.Now().UTC().AddDate(0, 0, -7)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("t1", "Reconnect with Dana", "reconnection", "reconnect", since).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	dup, err := s.FindRecentDuplicate(context.Background(), "t1", "Reconnect with Dana",
		model.CategoryReconnection, "reconnect", since)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateSuggestionStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM opportunity_suggestions WHERE id = \$1 FOR UPDATE`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec(`UPDATE opportunity_suggestions SET status = \$1`).
		WithArgs("viewed", "ops", "", pgxmock.AnyArg(), "s1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := s.UpdateSuggestionStatus(context.Background(), "s1", model.StatusViewed, "ops", "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateSuggestionStatusIllegalTransition(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM opportunity_suggestions WHERE id = \$1 FOR UPDATE`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectRollback()

	err := s.UpdateSuggestionStatus(context.Background(), "s1", model.StatusViewed, "ops", "")
	assert.True(t, resilience.IsInvalidInput(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateSuggestionStatusNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM opportunity_suggestions WHERE id = \$1 FOR UPDATE`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := s.UpdateSuggestionStatus(context.Background(), "ghost", model.StatusViewed, "", "")
	assert.True(t, resilience.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS contacts`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
