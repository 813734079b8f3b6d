package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/presales-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_SaveAssessment_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs(pgxmock.AnyArg(), "acme", "ERP rollout", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	a := &model.Assessment{Client: "acme", Title: "ERP rollout"}
	err := s.SaveAssessment(context.Background(), a)
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	items := []byte(`[{"id":"Invoice Entry","category":"New UI","is_needed":true}]`)
	mock.ExpectQuery(`SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE id = \$1`).
		WithArgs("a-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "client", "title", "items", "created_at", "updated_at"}).
			AddRow("a-1", "acme", "ERP rollout", items, now, now))

	got, err := s.GetAssessment(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Client)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Invoice Entry", got.Items[0].ID)
	assert.Equal(t, model.CategoryNewUI, got.Items[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAssessment_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, client, title, items, created_at, updated_at FROM assessments WHERE id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetAssessment(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAssessments_ClientFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, client, title, items, created_at, updated_at FROM assessments`).
		WithArgs("acme", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "client", "title", "items", "created_at", "updated_at"}).
			AddRow("a-1", "acme", "Phase 2", []byte(`[]`), now, now).
			AddRow("a-2", "acme", "Phase 1", []byte(`[]`), now.Add(-time.Hour), now))

	got, err := s.ListAssessments(context.Background(), AssessmentFilter{Client: "acme"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Phase 2", got[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteAssessment_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM assessments`).
		WithArgs("nonexistent").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteAssessment(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReferenceBatch_BulkUpsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cols := []string{"id", "batch", "item_name", "category", "column_name", "hours", "imported_at"}
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_reference_items"}, cols).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "reference_items"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	obs := []model.RefObservation{
		{ItemID: "Invoice Entry", Category: model.CategoryNewUI, Column: "Development", Hours: 42},
		{ItemID: "Aging Report", Category: model.CategoryNewBackgrounder, Column: "Development", Hours: 18},
	}
	n, err := s.SaveReferenceBatch(context.Background(), "2025-q1", obs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListReferenceObservations_Filters(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT item_name, category, column_name, hours, batch FROM reference_items`).
		WithArgs("2025-q1", "Development").
		WillReturnRows(pgxmock.NewRows([]string{"item_name", "category", "column_name", "hours", "batch"}).
			AddRow("Invoice Entry", "New UI", "Development", 42.0, "2025-q1"))

	got, err := s.ListReferenceObservations(context.Background(), ReferenceFilter{Batch: "2025-q1", Column: "Development"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.CategoryNewUI, got[0].Category)
	assert.Equal(t, 42.0, got[0].Hours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteReferenceBatch_Count(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM reference_items`).
		WithArgs("2025-q1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.DeleteReferenceBatch(context.Background(), "2025-q1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SavePolicyPack_ReturnsVersion(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`INSERT INTO policy_packs`).
		WithArgs("default", "bands: v1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"version"}).AddRow(1))

	v, err := s.SavePolicyPack(context.Background(), "default", []byte("bands: v1"))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPolicyPack_Latest(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT body, version FROM policy_packs WHERE name = \$1 ORDER BY version DESC LIMIT 1`).
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"body", "version"}).AddRow("bands: v2", 2))

	body, version, err := s.GetPolicyPack(context.Background(), "default", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, "bands: v2", string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetPolicyPack_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT body, version FROM policy_packs`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, _, err := s.GetPolicyPack(context.Background(), "nonexistent", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveTimeline_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO timelines`).
		WithArgs(pgxmock.AnyArg(), "assess-1", pgxmock.AnyArg(), 25, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	plan := &model.TimelinePlan{
		AssessmentID: "assess-1",
		Tasks:        []model.TimelineTask{{Name: "Analysis", ManDays: 10, DurationDays: 5}},
		TotalDays:    25,
	}
	err := s.SaveTimeline(context.Background(), plan)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetTimeline_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, assessment_id, tasks, total_days, created_at, updated_at FROM timelines`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetTimeline(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
