package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local and
// single-tenant deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY,
	tenant_id          TEXT NOT NULL,
	first_name         TEXT NOT NULL DEFAULT '',
	last_name          TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	company            TEXT NOT NULL DEFAULT '',
	position           TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	state              TEXT NOT NULL DEFAULT '',
	relationship_kind  TEXT NOT NULL DEFAULT '',
	networks           TEXT,
	scoring            TEXT,
	last_contacted_at  DATETIME,
	profile_updated_at DATETIME,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_tenant ON contacts(tenant_id);

CREATE TABLE IF NOT EXISTS relationship_edges (
	id                TEXT PRIMARY KEY,
	tenant_id         TEXT NOT NULL,
	from_contact_id   TEXT NOT NULL REFERENCES contacts(id),
	to_contact_id     TEXT NOT NULL REFERENCES contacts(id),
	kind              TEXT NOT NULL,
	strength          REAL NOT NULL CHECK (strength >= 0 AND strength <= 1),
	confidence        REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	mutual            INTEGER NOT NULL DEFAULT 0,
	verified          INTEGER NOT NULL DEFAULT 0,
	interaction_count INTEGER NOT NULL DEFAULT 0,
	last_verified_at  DATETIME,
	created_at        DATETIME NOT NULL,
	UNIQUE (tenant_id, from_contact_id, to_contact_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_tenant ON relationship_edges(tenant_id);

CREATE TABLE IF NOT EXISTS potential_relationships (
	id            TEXT PRIMARY KEY,
	tenant_id     TEXT NOT NULL,
	contact_id    TEXT NOT NULL REFERENCES contacts(id),
	related_id    TEXT NOT NULL REFERENCES contacts(id),
	inferred_kind TEXT NOT NULL,
	confidence    REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	evidence      TEXT NOT NULL,
	discovered_at DATETIME NOT NULL,
	UNIQUE (tenant_id, contact_id, related_id)
);

CREATE TABLE IF NOT EXISTS network_analytics (
	contact_id             TEXT PRIMARY KEY REFERENCES contacts(id),
	influence_score        REAL NOT NULL DEFAULT 0,
	connection_count       INTEGER NOT NULL DEFAULT 0,
	betweenness_centrality REAL NOT NULL DEFAULT 0,
	computed_at            DATETIME
);

CREATE TABLE IF NOT EXISTS outreach_history (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	channel    TEXT NOT NULL DEFAULT '',
	sent_at    DATETIME NOT NULL,
	responded  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS campaign_history (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	converted  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS opportunity_suggestions (
	id            TEXT PRIMARY KEY,
	tenant_id     TEXT NOT NULL,
	category      TEXT NOT NULL,
	type          TEXT NOT NULL,
	title         TEXT NOT NULL,
	priority      TEXT NOT NULL,
	confidence    REAL NOT NULL,
	impact        REAL NOT NULL,
	effort        REAL NOT NULL,
	urgency       REAL NOT NULL,
	reasoning     TEXT NOT NULL,
	contacts      TEXT,
	actions       TEXT,
	status        TEXT NOT NULL DEFAULT 'pending',
	source_engine TEXT NOT NULL DEFAULT '',
	status_notes  TEXT NOT NULL DEFAULT '',
	status_by     TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestions_tenant ON opportunity_suggestions(tenant_id, status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateContact(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	networksJSON, err := json.Marshal(c.Networks)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal networks")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contacts (id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, last_contacted_at, profile_updated_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.Email, c.Company, c.Position, c.City, c.State,
		string(c.RelationshipKind), string(networksJSON), c.LastContactedAt, c.ProfileUpdatedAt, now, now,
	)
	return eris.Wrap(err, "sqlite: insert contact")
}

func (s *SQLiteStore) GetContact(ctx context.Context, tenantID, id string) (*model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, scoring, last_contacted_at, profile_updated_at, created_at, updated_at
		 FROM contacts WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	c, err := scanContactSQL(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, resilience.NotFound("contact %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get contact %s", id)
	}
	return c, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, tenantID string, filter ContactFilter) ([]model.Contact, error) {
	query := `SELECT id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, scoring, last_contacted_at, profile_updated_at, created_at, updated_at
	 FROM contacts WHERE tenant_id = ?`
	args := []any{tenantID}

	if len(filter.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(filter.IDs)) + `)`
		for _, id := range filter.IDs {
			args = append(args, id)
		}
	}
	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContactSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: iterate contacts")
}

func (s *SQLiteStore) UpdateContactScores(ctx context.Context, tenantID, id string, scoring *model.ContactScoring) error {
	scoringJSON, err := json.Marshal(scoring)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal scoring")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET scoring = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		string(scoringJSON), time.Now().UTC(), tenantID, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update scores %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return resilience.NotFound("contact %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetNetworkAnalytics(ctx context.Context, contactID string) (*model.NetworkAnalytics, error) {
	var na model.NetworkAnalytics
	err := s.db.QueryRowContext(ctx,
		`SELECT contact_id, influence_score, connection_count, betweenness_centrality FROM network_analytics WHERE contact_id = ?`,
		contactID,
	).Scan(&na.ContactID, &na.InfluenceScore, &na.ConnectionCount, &na.BetweennessCentrality)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get analytics %s", contactID)
	}
	return &na, nil
}

func (s *SQLiteStore) ListOutreach(ctx context.Context, contactID string) ([]model.OutreachRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contact_id, channel, sent_at, responded FROM outreach_history WHERE contact_id = ? ORDER BY sent_at`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list outreach")
	}
	defer rows.Close()

	var records []model.OutreachRecord
	for rows.Next() {
		var r model.OutreachRecord
		if err := rows.Scan(&r.ContactID, &r.Channel, &r.SentAt, &r.Responded); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan outreach")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate outreach")
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context, contactID string) ([]model.CampaignRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT contact_id, converted FROM campaign_history WHERE contact_id = ?`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaigns")
	}
	defer rows.Close()

	var records []model.CampaignRecord
	for rows.Next() {
		var r model.CampaignRecord
		if err := rows.Scan(&r.ContactID, &r.Converted); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate campaigns")
}

func (s *SQLiteStore) CreateEdge(ctx context.Context, e *model.Edge) error {
	if e.Strength < 0 || e.Strength > 1 || e.Confidence < 0 || e.Confidence > 1 {
		return resilience.InvalidInput("edge strength/confidence must be in [0,1]")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relationship_edges (id, tenant_id, from_contact_id, to_contact_id, kind, strength, confidence, mutual, verified, interaction_count, last_verified_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, e.FromContactID, e.ToContactID, string(e.Kind), e.Strength, e.Confidence,
		e.Mutual, e.Verified, e.InteractionCount, e.LastVerifiedAt, e.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert edge")
}

func (s *SQLiteStore) ListEdges(ctx context.Context, tenantID string, contactIDs []string, minStrength float64) ([]model.Edge, error) {
	query := `SELECT id, tenant_id, from_contact_id, to_contact_id, kind, strength, confidence, mutual, verified, interaction_count, last_verified_at, created_at
	 FROM relationship_edges WHERE tenant_id = ?`
	args := []any{tenantID}

	if len(contactIDs) > 0 {
		ph := placeholders(len(contactIDs))
		query += ` AND (from_contact_id IN (` + ph + `) OR to_contact_id IN (` + ph + `))`
		for i := 0; i < 2; i++ {
			for _, id := range contactIDs {
				args = append(args, id)
			}
		}
	}
	if minStrength > 0 {
		query += ` AND strength >= ?`
		args = append(args, minStrength)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list edges")
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var e model.Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.FromContactID, &e.ToContactID, &kind, &e.Strength,
			&e.Confidence, &e.Mutual, &e.Verified, &e.InteractionCount, &e.LastVerifiedAt, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan edge")
		}
		e.Kind = model.RelationshipKind(kind)
		edges = append(edges, e)
	}
	return edges, eris.Wrap(rows.Err(), "sqlite: iterate edges")
}

func (s *SQLiteStore) UpsertPotentialRelationship(ctx context.Context, pr *model.PotentialRelationship) error {
	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	if pr.DiscoveredAt.IsZero() {
		pr.DiscoveredAt = time.Now().UTC()
	}

	evidenceJSON, err := json.Marshal(pr.Evidence)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal evidence")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO potential_relationships (id, tenant_id, contact_id, related_id, inferred_kind, confidence, evidence, discovered_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, contact_id, related_id)
		 DO UPDATE SET inferred_kind = excluded.inferred_kind, confidence = excluded.confidence, evidence = excluded.evidence, discovered_at = excluded.discovered_at`,
		pr.ID, pr.TenantID, pr.ContactID, pr.RelatedID, string(pr.InferredKind), pr.Confidence, string(evidenceJSON), pr.DiscoveredAt,
	)
	return eris.Wrap(err, "sqlite: upsert potential relationship")
}

func (s *SQLiteStore) ListPotentialRelationships(ctx context.Context, tenantID, contactID string) ([]model.PotentialRelationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, contact_id, related_id, inferred_kind, confidence, evidence, discovered_at
		 FROM potential_relationships WHERE tenant_id = ? AND contact_id = ? ORDER BY confidence DESC`,
		tenantID, contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list potential relationships")
	}
	defer rows.Close()

	var prs []model.PotentialRelationship
	for rows.Next() {
		var pr model.PotentialRelationship
		var kind, evidenceJSON string
		if err := rows.Scan(&pr.ID, &pr.TenantID, &pr.ContactID, &pr.RelatedID, &kind, &pr.Confidence, &evidenceJSON, &pr.DiscoveredAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan potential relationship")
		}
		pr.InferredKind = model.RelationshipKind(kind)
		if err := json.Unmarshal([]byte(evidenceJSON), &pr.Evidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal evidence")
		}
		prs = append(prs, pr)
	}
	return prs, eris.Wrap(rows.Err(), "sqlite: iterate potential relationships")
}

func (s *SQLiteStore) CreateSuggestion(ctx context.Context, sg *model.OpportunitySuggestion) error {
	if sg.ID == "" {
		sg.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sg.CreatedAt = now
	sg.UpdatedAt = now
	if sg.Status == "" {
		sg.Status = model.StatusPending
	}

	reasoningJSON, err := json.Marshal(sg.Reasoning)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal reasoning")
	}
	contactsJSON, err := json.Marshal(sg.Contacts)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contacts")
	}
	actionsJSON, err := json.Marshal(sg.Actions)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal actions")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO opportunity_suggestions (id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sg.ID, sg.TenantID, string(sg.Category), sg.Type, sg.Title, string(sg.Priority),
		sg.Confidence, sg.Impact, sg.Effort, sg.Urgency, string(reasoningJSON), string(contactsJSON), string(actionsJSON),
		string(sg.Status), sg.SourceEngine, now, now,
	)
	return eris.Wrap(err, "sqlite: insert suggestion")
}

func (s *SQLiteStore) GetSuggestion(ctx context.Context, id string) (*model.OpportunitySuggestion, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, status_notes, status_by, created_at, updated_at
		 FROM opportunity_suggestions WHERE id = ?`,
		id,
	)
	sg, err := scanSuggestionSQL(row)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, resilience.NotFound("suggestion %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get suggestion %s", id)
	}
	return sg, nil
}

func (s *SQLiteStore) ListSuggestions(ctx context.Context, tenantID string, filter SuggestionFilter) ([]model.OpportunitySuggestion, error) {
	query := `SELECT id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, status_notes, status_by, created_at, updated_at
	 FROM opportunity_suggestions WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list suggestions")
	}
	defer rows.Close()

	var out []model.OpportunitySuggestion
	for rows.Next() {
		sg, err := scanSuggestionSQL(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan suggestion")
		}
		out = append(out, *sg)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate suggestions")
}

func (s *SQLiteStore) FindRecentDuplicate(ctx context.Context, tenantID, title string, category model.OpportunityCategory, typ string, since time.Time) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM opportunity_suggestions
		 WHERE tenant_id = ? AND title = ? AND category = ? AND type = ?
		   AND status NOT IN ('completed', 'dismissed')
		   AND created_at > ?`,
		tenantID, title, string(category), typ, since,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: find recent duplicate")
	}
	return n > 0, nil
}

func (s *SQLiteStore) UpdateSuggestionStatus(ctx context.Context, id string, status model.OpportunityStatus, actor, notes string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin status update")
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM opportunity_suggestions WHERE id = ?`, id).Scan(&current)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return resilience.NotFound("suggestion %s", id)
		}
		return eris.Wrapf(err, "sqlite: read suggestion %s", id)
	}

	if !model.OpportunityStatus(current).CanTransition(status) {
		return resilience.InvalidInput("status transition %s -> %s not allowed", current, status)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE opportunity_suggestions SET status = ?, status_by = ?, status_notes = ?, updated_at = ? WHERE id = ?`,
		string(status), actor, notes, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status %s", id)
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit status update")
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContactSQL(row rowScanner) (*model.Contact, error) {
	var c model.Contact
	var kind string
	var networksJSON, scoringJSON sql.NullString

	err := row.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.Position,
		&c.City, &c.State, &kind, &networksJSON, &scoringJSON, &c.LastContactedAt, &c.ProfileUpdatedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.RelationshipKind = model.RelationshipKind(kind)
	if networksJSON.Valid && networksJSON.String != "" && networksJSON.String != "null" {
		if err := json.Unmarshal([]byte(networksJSON.String), &c.Networks); err != nil {
			return nil, eris.Wrap(err, "unmarshal networks")
		}
	}
	if scoringJSON.Valid && scoringJSON.String != "" {
		c.Scoring = &model.ContactScoring{}
		if err := json.Unmarshal([]byte(scoringJSON.String), c.Scoring); err != nil {
			return nil, eris.Wrap(err, "unmarshal scoring")
		}
	}
	return &c, nil
}

func scanSuggestionSQL(row rowScanner) (*model.OpportunitySuggestion, error) {
	var sg model.OpportunitySuggestion
	var category, priority, status, reasoningJSON string
	var contactsJSON, actionsJSON sql.NullString

	err := row.Scan(&sg.ID, &sg.TenantID, &category, &sg.Type, &sg.Title, &priority,
		&sg.Confidence, &sg.Impact, &sg.Effort, &sg.Urgency, &reasoningJSON, &contactsJSON, &actionsJSON,
		&status, &sg.SourceEngine, &sg.StatusNotes, &sg.StatusChangedBy, &sg.CreatedAt, &sg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sg.Category = model.OpportunityCategory(category)
	sg.Priority = model.PriorityTier(priority)
	sg.Status = model.OpportunityStatus(status)
	if err := json.Unmarshal([]byte(reasoningJSON), &sg.Reasoning); err != nil {
		return nil, eris.Wrap(err, "unmarshal reasoning")
	}
	if contactsJSON.Valid && contactsJSON.String != "null" && contactsJSON.String != "" {
		if err := json.Unmarshal([]byte(contactsJSON.String), &sg.Contacts); err != nil {
			return nil, eris.Wrap(err, "unmarshal contacts")
		}
	}
	if actionsJSON.Valid && actionsJSON.String != "null" && actionsJSON.String != "" {
		if err := json.Unmarshal([]byte(actionsJSON.String), &sg.Actions); err != nil {
			return nil, eris.Wrap(err, "unmarshal actions")
		}
	}
	return &sg, nil
}

func placeholders(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ", "
		}
		out += "?"
	}
	return out
}
