package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scopecraft/presales-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS assessments (
	id         TEXT PRIMARY KEY,
	client     TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	items      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reference_items (
	id          TEXT PRIMARY KEY,
	batch       TEXT NOT NULL,
	item_name   TEXT NOT NULL,
	category    TEXT NOT NULL,
	column_name TEXT NOT NULL,
	hours       REAL NOT NULL,
	imported_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (batch, item_name, category, column_name)
);

CREATE TABLE IF NOT EXISTS policy_packs (
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	body       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (name, version)
);

CREATE TABLE IF NOT EXISTS timelines (
	id            TEXT PRIMARY KEY,
	assessment_id TEXT NOT NULL UNIQUE,
	tasks         TEXT NOT NULL,
	total_days    INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_assessments_client ON assessments(client);
CREATE INDEX IF NOT EXISTS idx_reference_items_batch ON reference_items(batch);
CREATE INDEX IF NOT EXISTS idx_reference_items_category ON reference_items(category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAssessment(ctx context.Context, a *model.Assessment) error {
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
		return eris.Wrap(err, "sqlite: marshal items")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, client, title, items, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET client = ?, title = ?, items = ?, updated_at = ?`,
		a.ID, a.Client, a.Title, string(itemsJSON), a.CreatedAt, a.UpdatedAt,
		a.Client, a.Title, string(itemsJSON), a.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save assessment %s", a.ID)
}

func (s *SQLiteStore) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE id = ?`,
		id,
	)
	return scanAssessment(row, id)
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]model.Assessment, error) {
	query := `SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE 1=1`
	var args []any

	if filter.Client != "" {
		query += ` AND client = ?`
		args = append(args, filter.Client)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assessments")
	}
	defer rows.Close()

	var out []model.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list assessments iterate")
}

func (s *SQLiteStore) DeleteAssessment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete assessment %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "assessment %s", id)
	}
	return nil
}

func (s *SQLiteStore) SaveReferenceBatch(ctx context.Context, batch string, obs []model.RefObservation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin reference batch")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reference_items (id, batch, item_name, category, column_name, hours, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (batch, item_name, category, column_name) DO UPDATE SET hours = ?, imported_at = ?`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare reference insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	count := 0
	for _, o := range obs {
		b := batch
		if b == "" {
			b = o.Batch
		}
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(), b, o.ItemID, string(o.Category), o.Column, o.Hours, now,
			o.Hours, now,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert reference %s/%s", o.ItemID, o.Column)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit reference batch")
	}
	return count, nil
}

func (s *SQLiteStore) ListReferenceObservations(ctx context.Context, filter ReferenceFilter) ([]model.RefObservation, error) {
	query := `SELECT item_name, category, column_name, hours, batch FROM reference_items WHERE 1=1`
	var args []any

	if filter.Batch != "" {
		query += ` AND batch = ?`
		args = append(args, filter.Batch)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Column != "" {
		query += ` AND column_name = ?`
		args = append(args, filter.Column)
	}
	query += ` ORDER BY batch, item_name, column_name`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reference observations")
	}
	defer rows.Close()

	var out []model.RefObservation
	for rows.Next() {
		var o model.RefObservation
		var category string
		if err := rows.Scan(&o.ItemID, &category, &o.Column, &o.Hours, &o.Batch); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reference observation")
		}
		o.Category = model.Category(category)
		out = append(out, o)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list reference observations iterate")
}

func (s *SQLiteStore) DeleteReferenceBatch(ctx context.Context, batch string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reference_items WHERE batch = ?`, batch)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete reference batch %s", batch)
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) SavePolicyPack(ctx context.Context, name string, body []byte) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin policy pack save")
	}
	defer tx.Rollback()

	var version int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM policy_packs WHERE name = ?`,
		name,
	).Scan(&version)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: next policy pack version for %s", name)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO policy_packs (name, version, body, created_at) VALUES (?, ?, ?, ?)`,
		name, version, string(body), time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: insert policy pack %s v%d", name, version)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit policy pack save")
	}
	return version, nil
}

func (s *SQLiteStore) GetPolicyPack(ctx context.Context, name string, version int) ([]byte, int, error) {
	var row *sql.Row
	if version > 0 {
		row = s.db.QueryRowContext(ctx,
			`SELECT body, version FROM policy_packs WHERE name = ? AND version = ?`,
			name, version,
		)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT body, version FROM policy_packs WHERE name = ? ORDER BY version DESC LIMIT 1`,
			name,
		)
	}

	var body string
	var got int
	err := row.Scan(&body, &got)
	if err == sql.ErrNoRows {
		return nil, 0, eris.Wrapf(ErrNotFound, "policy pack %s", name)
	}
	if err != nil {
		return nil, 0, eris.Wrapf(err, "sqlite: get policy pack %s", name)
	}
	return []byte(body), got, nil
}

func (s *SQLiteStore) SaveTimeline(ctx context.Context, plan *model.TimelinePlan) error {
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
		return eris.Wrap(err, "sqlite: marshal tasks")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO timelines (id, assessment_id, tasks, total_days, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (assessment_id) DO UPDATE SET tasks = ?, total_days = ?, updated_at = ?`,
		plan.ID, plan.AssessmentID, string(tasksJSON), plan.TotalDays, plan.CreatedAt, plan.UpdatedAt,
		string(tasksJSON), plan.TotalDays, plan.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: save timeline for %s", plan.AssessmentID)
}

func (s *SQLiteStore) GetTimeline(ctx context.Context, assessmentID string) (*model.TimelinePlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, assessment_id, tasks, total_days, created_at, updated_at FROM timelines WHERE assessment_id = ?`,
		assessmentID,
	)

	var p model.TimelinePlan
	var tasksJSON string
	err := row.Scan(&p.ID, &p.AssessmentID, &tasksJSON, &p.TotalDays, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "timeline for assessment %s", assessmentID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get timeline for %s", assessmentID)
	}
	if err := json.Unmarshal([]byte(tasksJSON), &p.Tasks); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal tasks")
	}
	return &p, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanAssessment(row scannable, id string) (*model.Assessment, error) {
	var a model.Assessment
	var itemsJSON string

	err := row.Scan(&a.ID, &a.Client, &a.Title, &itemsJSON, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "assessment %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan assessment")
	}

	if err := json.Unmarshal([]byte(itemsJSON), &a.Items); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal items")
	}
	return &a, nil
}
