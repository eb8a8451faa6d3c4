package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/network-intel/internal/db"
	"github.com/sells-group/network-intel/internal/model"
	"github.com/sells-group/network-intel/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for the
// hottest store operations.
var preparedStatements = map[string]string{
	"get_contact":       `SELECT id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, scoring, last_contacted_at, profile_updated_at, created_at, updated_at FROM contacts WHERE tenant_id = $1 AND id = $2`,
	"update_scores":     `UPDATE contacts SET scoring = $1, updated_at = $2 WHERE tenant_id = $3 AND id = $4`,
	"get_analytics":     `SELECT contact_id, influence_score, connection_count, betweenness_centrality FROM network_analytics WHERE contact_id = $1`,
	"insert_suggestion": `INSERT INTO opportunity_suggestions (id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	tenant_id          TEXT NOT NULL,
	first_name         TEXT NOT NULL DEFAULT '',
	last_name          TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	company            TEXT NOT NULL DEFAULT '',
	position           TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	state              TEXT NOT NULL DEFAULT '',
	relationship_kind  TEXT NOT NULL DEFAULT '',
	networks           JSONB,
	scoring            JSONB,
	last_contacted_at  TIMESTAMPTZ,
	profile_updated_at TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_tenant ON contacts(tenant_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(tenant_id, company);

CREATE TABLE IF NOT EXISTS relationship_edges (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	tenant_id         TEXT NOT NULL,
	from_contact_id   TEXT NOT NULL REFERENCES contacts(id),
	to_contact_id     TEXT NOT NULL REFERENCES contacts(id),
	kind              TEXT NOT NULL,
	strength          DOUBLE PRECISION NOT NULL CHECK (strength >= 0 AND strength <= 1),
	confidence        DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	mutual            BOOLEAN NOT NULL DEFAULT false,
	verified          BOOLEAN NOT NULL DEFAULT false,
	interaction_count INTEGER NOT NULL DEFAULT 0,
	last_verified_at  TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, from_contact_id, to_contact_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_tenant ON relationship_edges(tenant_id);
CREATE INDEX IF NOT EXISTS idx_edges_from ON relationship_edges(from_contact_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON relationship_edges(to_contact_id);

CREATE TABLE IF NOT EXISTS potential_relationships (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	tenant_id     TEXT NOT NULL,
	contact_id    TEXT NOT NULL REFERENCES contacts(id),
	related_id    TEXT NOT NULL REFERENCES contacts(id),
	inferred_kind TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	evidence      JSONB NOT NULL,
	discovered_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, contact_id, related_id)
);

CREATE INDEX IF NOT EXISTS idx_potential_contact ON potential_relationships(tenant_id, contact_id);

CREATE TABLE IF NOT EXISTS network_analytics (
	contact_id             TEXT PRIMARY KEY REFERENCES contacts(id),
	influence_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	connection_count       INTEGER NOT NULL DEFAULT 0,
	betweenness_centrality DOUBLE PRECISION NOT NULL DEFAULT 0,
	computed_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outreach_history (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	channel    TEXT NOT NULL DEFAULT '',
	sent_at    TIMESTAMPTZ NOT NULL,
	responded  BOOLEAN NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_outreach_contact ON outreach_history(contact_id);

CREATE TABLE IF NOT EXISTS campaign_history (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	contact_id TEXT NOT NULL REFERENCES contacts(id),
	converted  BOOLEAN NOT NULL DEFAULT false
);

CREATE INDEX IF NOT EXISTS idx_campaign_contact ON campaign_history(contact_id);

CREATE TABLE IF NOT EXISTS opportunity_suggestions (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	tenant_id     TEXT NOT NULL,
	category      TEXT NOT NULL,
	type          TEXT NOT NULL,
	title         TEXT NOT NULL,
	priority      TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	impact        DOUBLE PRECISION NOT NULL,
	effort        DOUBLE PRECISION NOT NULL,
	urgency       DOUBLE PRECISION NOT NULL,
	reasoning     JSONB NOT NULL,
	contacts      JSONB,
	actions       JSONB,
	status        TEXT NOT NULL DEFAULT 'pending',
	source_engine TEXT NOT NULL DEFAULT '',
	status_notes  TEXT NOT NULL DEFAULT '',
	status_by     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_suggestions_tenant ON opportunity_suggestions(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_suggestions_dedup ON opportunity_suggestions(tenant_id, title, category, type, created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateContact(ctx context.Context, c *model.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	networksJSON, err := json.Marshal(c.Networks)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal networks")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO contacts (id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, last_contacted_at, profile_updated_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.TenantID, c.FirstName, c.LastName, c.Email, c.Company, c.Position, c.City, c.State,
		string(c.RelationshipKind), networksJSON, c.LastContactedAt, c.ProfileUpdatedAt, now, now,
	)
	return eris.Wrap(err, "postgres: insert contact")
}

func (s *PostgresStore) GetContact(ctx context.Context, tenantID, id string) (*model.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, scoring, last_contacted_at, profile_updated_at, created_at, updated_at
		 FROM contacts WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	c, err := scanContact(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, resilience.NotFound("contact %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get contact %s", id)
	}
	return c, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, tenantID string, filter ContactFilter) ([]model.Contact, error) {
	query := `SELECT id, tenant_id, first_name, last_name, email, company, position, city, state, relationship_kind, networks, scoring, last_contacted_at, profile_updated_at, created_at, updated_at
	 FROM contacts WHERE tenant_id = $1`
	args := []any{tenantID}
	argIdx := 2

	if len(filter.IDs) > 0 {
		query += fmt.Sprintf(` AND id = ANY($%d)`, argIdx)
		args = append(args, filter.IDs)
		argIdx++
	}
	if filter.Company != "" {
		query += fmt.Sprintf(` AND company = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	if filter.State != "" {
		query += fmt.Sprintf(` AND state = $%d`, argIdx)
		args = append(args, filter.State)
		argIdx++
	}
	query += ` ORDER BY created_at`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: iterate contacts")
}

func (s *PostgresStore) UpdateContactScores(ctx context.Context, tenantID, id string, scoring *model.ContactScoring) error {
	scoringJSON, err := json.Marshal(scoring)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal scoring")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET scoring = $1, updated_at = $2 WHERE tenant_id = $3 AND id = $4`,
		scoringJSON, time.Now().UTC(), tenantID, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update scores %s", id)
	}
	if tag.RowsAffected() == 0 {
		return resilience.NotFound("contact %s", id)
	}
	return nil
}

func (s *PostgresStore) GetNetworkAnalytics(ctx context.Context, contactID string) (*model.NetworkAnalytics, error) {
	var na model.NetworkAnalytics
	err := s.pool.QueryRow(ctx,
		`SELECT contact_id, influence_score, connection_count, betweenness_centrality FROM network_analytics WHERE contact_id = $1`,
		contactID,
	).Scan(&na.ContactID, &na.InfluenceScore, &na.ConnectionCount, &na.BetweennessCentrality)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			// Absent analytics is normal; the scoring engine applies its
			// documented default.
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get analytics %s", contactID)
	}
	return &na, nil
}

func (s *PostgresStore) ListOutreach(ctx context.Context, contactID string) ([]model.OutreachRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT contact_id, channel, sent_at, responded FROM outreach_history WHERE contact_id = $1 ORDER BY sent_at`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list outreach")
	}
	defer rows.Close()

	var records []model.OutreachRecord
	for rows.Next() {
		var r model.OutreachRecord
		if err := rows.Scan(&r.ContactID, &r.Channel, &r.SentAt, &r.Responded); err != nil {
			return nil, eris.Wrap(err, "postgres: scan outreach")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate outreach")
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, contactID string) ([]model.CampaignRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT contact_id, converted FROM campaign_history WHERE contact_id = $1`,
		contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaigns")
	}
	defer rows.Close()

	var records []model.CampaignRecord
	for rows.Next() {
		var r model.CampaignRecord
		if err := rows.Scan(&r.ContactID, &r.Converted); err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate campaigns")
}

func (s *PostgresStore) CreateEdge(ctx context.Context, e *model.Edge) error {
	if e.Strength < 0 || e.Strength > 1 || e.Confidence < 0 || e.Confidence > 1 {
		return resilience.InvalidInput("edge strength/confidence must be in [0,1]")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO relationship_edges (id, tenant_id, from_contact_id, to_contact_id, kind, strength, confidence, mutual, verified, interaction_count, last_verified_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.TenantID, e.FromContactID, e.ToContactID, string(e.Kind), e.Strength, e.Confidence,
		e.Mutual, e.Verified, e.InteractionCount, e.LastVerifiedAt, e.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert edge")
}

func (s *PostgresStore) ListEdges(ctx context.Context, tenantID string, contactIDs []string, minStrength float64) ([]model.Edge, error) {
	query := `SELECT id, tenant_id, from_contact_id, to_contact_id, kind, strength, confidence, mutual, verified, interaction_count, last_verified_at, created_at
	 FROM relationship_edges WHERE tenant_id = $1`
	args := []any{tenantID}
	argIdx := 2

	if len(contactIDs) > 0 {
		query += fmt.Sprintf(` AND (from_contact_id = ANY($%d) OR to_contact_id = ANY($%d))`, argIdx, argIdx)
		args = append(args, contactIDs)
		argIdx++
	}
	if minStrength > 0 {
		query += fmt.Sprintf(` AND strength >= $%d`, argIdx)
		args = append(args, minStrength)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list edges")
	}
	defer rows.Close()

	var edges []model.Edge
	for rows.Next() {
		var e model.Edge
		var kind string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.FromContactID, &e.ToContactID, &kind, &e.Strength,
			&e.Confidence, &e.Mutual, &e.Verified, &e.InteractionCount, &e.LastVerifiedAt, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan edge")
		}
		e.Kind = model.RelationshipKind(kind)
		edges = append(edges, e)
	}
	return edges, eris.Wrap(rows.Err(), "postgres: iterate edges")
}

func (s *PostgresStore) UpsertPotentialRelationship(ctx context.Context, pr *model.PotentialRelationship) error {
	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	if pr.DiscoveredAt.IsZero() {
		pr.DiscoveredAt = time.Now().UTC()
	}

	evidenceJSON, err := json.Marshal(pr.Evidence)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal evidence")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO potential_relationships (id, tenant_id, contact_id, related_id, inferred_kind, confidence, evidence, discovered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (tenant_id, contact_id, related_id)
		 DO UPDATE SET inferred_kind = EXCLUDED.inferred_kind, confidence = EXCLUDED.confidence, evidence = EXCLUDED.evidence, discovered_at = EXCLUDED.discovered_at`,
		pr.ID, pr.TenantID, pr.ContactID, pr.RelatedID, string(pr.InferredKind), pr.Confidence, evidenceJSON, pr.DiscoveredAt,
	)
	return eris.Wrap(err, "postgres: upsert potential relationship")
}

func (s *PostgresStore) ListPotentialRelationships(ctx context.Context, tenantID, contactID string) ([]model.PotentialRelationship, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, contact_id, related_id, inferred_kind, confidence, evidence, discovered_at
		 FROM potential_relationships WHERE tenant_id = $1 AND contact_id = $2 ORDER BY confidence DESC`,
		tenantID, contactID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list potential relationships")
	}
	defer rows.Close()

	var prs []model.PotentialRelationship
	for rows.Next() {
		var pr model.PotentialRelationship
		var kind string
		var evidenceJSON []byte
		if err := rows.Scan(&pr.ID, &pr.TenantID, &pr.ContactID, &pr.RelatedID, &kind, &pr.Confidence, &evidenceJSON, &pr.DiscoveredAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan potential relationship")
		}
		pr.InferredKind = model.RelationshipKind(kind)
		if err := json.Unmarshal(evidenceJSON, &pr.Evidence); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal evidence")
		}
		prs = append(prs, pr)
	}
	return prs, eris.Wrap(rows.Err(), "postgres: iterate potential relationships")
}

func (s *PostgresStore) CreateSuggestion(ctx context.Context, sg *model.OpportunitySuggestion) error {
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
		return eris.Wrap(err, "postgres: marshal reasoning")
	}
	contactsJSON, err := json.Marshal(sg.Contacts)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contacts")
	}
	actionsJSON, err := json.Marshal(sg.Actions)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal actions")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO opportunity_suggestions (id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		sg.ID, sg.TenantID, string(sg.Category), sg.Type, sg.Title, string(sg.Priority),
		sg.Confidence, sg.Impact, sg.Effort, sg.Urgency, reasoningJSON, contactsJSON, actionsJSON,
		string(sg.Status), sg.SourceEngine, now, now,
	)
	return eris.Wrap(err, "postgres: insert suggestion")
}

func (s *PostgresStore) GetSuggestion(ctx context.Context, id string) (*model.OpportunitySuggestion, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, status_notes, status_by, created_at, updated_at
		 FROM opportunity_suggestions WHERE id = $1`,
		id,
	)
	sg, err := scanSuggestion(row)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, resilience.NotFound("suggestion %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get suggestion %s", id)
	}
	return sg, nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, tenantID string, filter SuggestionFilter) ([]model.OpportunitySuggestion, error) {
	query := `SELECT id, tenant_id, category, type, title, priority, confidence, impact, effort, urgency, reasoning, contacts, actions, status, source_engine, status_notes, status_by, created_at, updated_at
	 FROM opportunity_suggestions WHERE tenant_id = $1`
	args := []any{tenantID}
	argIdx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, string(filter.Category))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list suggestions")
	}
	defer rows.Close()

	var out []model.OpportunitySuggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan suggestion")
		}
		out = append(out, *sg)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate suggestions")
}

func (s *PostgresStore) FindRecentDuplicate(ctx context.Context, tenantID, title string, category model.OpportunityCategory, typ string, since time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM opportunity_suggestions
			WHERE tenant_id = $1 AND title = $2 AND category = $3 AND type = $4
			  AND status NOT IN ('completed', 'dismissed')
			  AND created_at > $5
		)`,
		tenantID, title, string(category), typ, since,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "postgres: find recent duplicate")
	}
	return exists, nil
}

func (s *PostgresStore) UpdateSuggestionStatus(ctx context.Context, id string, status model.OpportunityStatus, actor, notes string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin status update")
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM opportunity_suggestions WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&current)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return resilience.NotFound("suggestion %s", id)
		}
		return eris.Wrapf(err, "postgres: lock suggestion %s", id)
	}

	if !model.OpportunityStatus(current).CanTransition(status) {
		return resilience.InvalidInput("status transition %s -> %s not allowed", current, status)
	}

	_, err = tx.Exec(ctx,
		`UPDATE opportunity_suggestions SET status = $1, status_by = $2, status_notes = $3, updated_at = $4 WHERE id = $5`,
		string(status), actor, notes, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status %s", id)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit status update")
}

// scanContact scans one contact row (pgx.Row or pgx.Rows).
func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	var kind string
	var networksJSON, scoringJSON []byte

	err := row.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.Company, &c.Position,
		&c.City, &c.State, &kind, &networksJSON, &scoringJSON, &c.LastContactedAt, &c.ProfileUpdatedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	c.RelationshipKind = model.RelationshipKind(kind)
	if len(networksJSON) > 0 {
		if err := json.Unmarshal(networksJSON, &c.Networks); err != nil {
			return nil, eris.Wrap(err, "unmarshal networks")
		}
	}
	if len(scoringJSON) > 0 {
		c.Scoring = &model.ContactScoring{}
		if err := json.Unmarshal(scoringJSON, c.Scoring); err != nil {
			return nil, eris.Wrap(err, "unmarshal scoring")
		}
	}
	return &c, nil
}

// scanSuggestion scans one suggestion row (pgx.Row or pgx.Rows).
func scanSuggestion(row pgx.Row) (*model.OpportunitySuggestion, error) {
	var sg model.OpportunitySuggestion
	var category, priority, status string
	var reasoningJSON, contactsJSON, actionsJSON []byte

	err := row.Scan(&sg.ID, &sg.TenantID, &category, &sg.Type, &sg.Title, &priority,
		&sg.Confidence, &sg.Impact, &sg.Effort, &sg.Urgency, &reasoningJSON, &contactsJSON, &actionsJSON,
		&status, &sg.SourceEngine, &sg.StatusNotes, &sg.StatusChangedBy, &sg.CreatedAt, &sg.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sg.Category = model.OpportunityCategory(category)
	sg.Priority = model.PriorityTier(priority)
	sg.Status = model.OpportunityStatus(status)
	if err := json.Unmarshal(reasoningJSON, &sg.Reasoning); err != nil {
		return nil, eris.Wrap(err, "unmarshal reasoning")
	}
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &sg.Contacts); err != nil {
			return nil, eris.Wrap(err, "unmarshal contacts")
		}
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &sg.Actions); err != nil {
			return nil, eris.Wrap(err, "unmarshal actions")
		}
	}
	return &sg, nil
}
