package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/scopecraft/presales-cli/internal/db"
	"github.com/scopecraft/presales-cli/internal/model"
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

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_assessment":  `SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE id = $1`,
	"get_timeline":    `SELECT id, assessment_id, tasks, total_days, created_at, updated_at FROM timelines WHERE assessment_id = $1`,
	"get_pack_latest": `SELECT body, version FROM policy_packs WHERE name = $1 ORDER BY version DESC LIMIT 1`,
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

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	client     TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	items      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reference_items (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	batch       TEXT NOT NULL,
	item_name   TEXT NOT NULL,
	category    TEXT NOT NULL,
	column_name TEXT NOT NULL,
	hours       DOUBLE PRECISION NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (batch, item_name, category, column_name)
);

CREATE TABLE IF NOT EXISTS policy_packs (
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (name, version)
);

CREATE TABLE IF NOT EXISTS timelines (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	assessment_id TEXT NOT NULL UNIQUE,
	tasks         JSONB NOT NULL,
	total_days    INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_assessments_client ON assessments(client);
CREATE INDEX IF NOT EXISTS idx_reference_items_batch ON reference_items(batch);
CREATE INDEX IF NOT EXISTS idx_reference_items_category ON reference_items(category);
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

func (s *PostgresStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	itemsJSON, err := json.Marshal(a.Items)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal items")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO assessments (id, client, title, items, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET client = $2, title = $3, items = $4, updated_at = $6`,
		a.ID, a.Client, a.Title, itemsJSON, a.CreatedAt, a.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save assessment %s", a.ID)
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	var a model.Assessment
	var itemsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Client, &a.Title, &itemsJSON, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "assessment %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get assessment %s", id)
	}

	if err := json.Unmarshal(itemsJSON, &a.Items); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal items")
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := `SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Client != "" {
		query += fmt.Sprintf(` AND client = $%d`, argIdx)
		args = append(args, filter.Client)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		var a model.Assessment
		var itemsJSON []byte
		if err := rows.Scan(&a.ID, &a.Client, &a.Title, &itemsJSON, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan assessment")
		}
		if err := json.Unmarshal(itemsJSON, &a.Items); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal items")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list assessments iterate")
}

func (s *PostgresStore) DeleteAssessment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete assessment %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "assessment %s", id)
	}
	return nil
}

func (s *PostgresStore) SaveReferenceBatch(ctx context.Context, batch string, obs []model.RefObservation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(obs))
	for _, o := range obs {
		b := batch
		if b == "" {
			b = o.Batch
		}
		rows = append(rows, []any{
			uuid.New().String(), b, o.ItemID, string(o.Category), o.Column, o.Hours, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "reference_items",
		Columns:      []string{"id", "batch", "item_name", "category", "column_name", "hours", "imported_at"},
		ConflictKeys: []string{"batch", "item_name", "category", "column_name"},
		UpdateCols:   []string{"hours", "imported_at"},
	}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save reference batch %s", batch)
	}
	return int(n), nil
}

func (s *PostgresStore) ListReferenceObservations(ctx context.Context, filter ReferenceFilter) ([]model.RefObservation, error) {
	query := `SELECT item_name, category, column_name, hours, batch FROM reference_items WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Batch != "" {
		query += fmt.Sprintf(` AND batch = $%d`, argIdx)
		args = append(args, filter.Batch)
		argIdx++
	}
	if filter.Category != "" {
		query += fmt.Sprintf(` AND category = $%d`, argIdx)
		args = append(args, filter.Category)
		argIdx++
	}
	if filter.Column != "" {
		query += fmt.Sprintf(` AND column_name = $%d`, argIdx)
		args = append(args, filter.Column)
		argIdx++
	}
	query += ` ORDER BY batch, item_name, column_name`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reference observations")
	}
	defer rows.Close()

	var out []model.RefObservation
	for rows.Next() {
		var o model.RefObservation
		var category string
		if err := rows.Scan(&o.ItemID, &category, &o.Column, &o.Hours, &o.Batch); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reference observation")
		}
		o.Category = model.Category(category)
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list reference observations iterate")
}

func (s *PostgresStore) DeleteReferenceBatch(ctx context.Context, batch string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reference_items WHERE batch = $1`, batch)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: delete reference batch %s", batch)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SavePolicyPack(ctx context.Context, name string, body []byte) (int, error) {
	var version int
	err := s.pool.QueryRow(ctx,
		`INSERT INTO policy_packs (name, version, body, created_at)
		 VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM policy_packs WHERE name = $1), $2, $3)
		 RETURNING version`,
		name, string(body), time.Now().UTC(),
	).Scan(&version)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save policy pack %s", name)
	}
	return version, nil
}

func (s *PostgresStore) GetPolicyPack(ctx context.Context, name string, version int) ([]byte, int, error) {
	var body string
	var got int
	var err error
	if version > 0 {
		err = s.pool.QueryRow(ctx,
			`SELECT body, version FROM policy_packs WHERE name = $1 AND version = $2`,
			name, version,
		).Scan(&body, &got)
	} else {
		err = s.pool.QueryRow(ctx,
			`SELECT body, version FROM policy_packs WHERE name = $1 ORDER BY version DESC LIMIT 1`,
			name,
		).Scan(&body, &got)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, eris.Wrapf(ErrNotFound, "policy pack %s", name)
		}
		return nil, 0, eris.Wrapf(err, "postgres: get policy pack %s", name)
	}
	return []byte(body), got, nil
}

func (s *PostgresStore) SaveTimeline(ctx context.Context, plan *model.TimelinePlan) error {
	now := time.Now().UTC()
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	tasksJSON, err := json.Marshal(plan.Tasks)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal tasks")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO timelines (id, assessment_id, tasks, total_days, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (assessment_id) DO UPDATE SET tasks = $3, total_days = $4, updated_at = $6`,
		plan.ID, plan.AssessmentID, tasksJSON, plan.TotalDays, plan.CreatedAt, plan.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: save timeline for %s", plan.AssessmentID)
}

func (s *PostgresStore) GetTimeline(ctx context.Context, assessmentID string) (*model.TimelinePlan, error) {
	var p model.TimelinePlan
	var tasksJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, assessment_id, tasks, total_days, created_at, updated_at FROM timelines WHERE assessment_id = $1`,
		assessmentID,
	).Scan(&p.ID, &p.AssessmentID, &tasksJSON, &p.TotalDays, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "timeline for assessment %s", assessmentID)
		}
		return nil, eris.Wrapf(err, "postgres: get timeline for %s", assessmentID)
	}

	if err := json.Unmarshal(tasksJSON, &p.Tasks); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal tasks")
	}
	return &p, nil
}
