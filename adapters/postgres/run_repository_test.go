package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/domain/core"
	"mlstudio/domain/training"
	apperrors "mlstudio/internal/errors"
)

func setupRunRepository(t *testing.T) (*RunRepositoryImpl, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRunRepository(sqlx.NewDb(db, "postgres")), mock
}

func sampleRun() training.Run {
	return training.Run{
		ID: core.RunID("0190f5a2-7a3b-7c4d-8e9f-0a1b2c3d4e5f"),
		Request: training.Request{
			Target:        "Survived",
			Features:      []string{"Age", "Fare"},
			ModelFamily:   training.FamilyRandomForest,
			TaskType:      training.TaskClassification,
			TrainFraction: 0.8,
			RandomSeed:    42,
		},
		Response: training.Response{
			Success: true,
			Message: "ok",
			Metrics: &training.Metrics{F1: training.Float(0.84)},
		},
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
	}
}

var runRowColumns = []string{"id", "task_type", "model_type", "target", "score", "request", "response", "started_at", "duration_ms"}

func runRow(t *testing.T, rows *sqlmock.Rows, run training.Run) *sqlmock.Rows {
	t.Helper()
	req, err := json.Marshal(run.Request)
	require.NoError(t, err)
	resp, err := json.Marshal(run.Response)
	require.NoError(t, err)
	score, _ := run.Score()
	return rows.AddRow(run.ID.String(), string(run.Request.TaskType), string(run.Request.ModelFamily),
		run.Request.Target, score, req, resp, run.StartedAt, run.Duration.Milliseconds())
}

func TestRunRepositoryEnsureSchema(t *testing.T) {
	repo, mock := setupRunRepository(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS training_runs")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositorySave(t *testing.T) {
	repo, mock := setupRunRepository(t)
	run := sampleRun()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO training_runs")).
		WithArgs(run.ID.String(), "classification", "rf", "Survived", 0.84,
			sqlmock.AnyArg(), sqlmock.AnyArg(), run.StartedAt, int64(1500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryGetAndList(t *testing.T) {
	repo, mock := setupRunRepository(t)
	run := sampleRun()

	mock.ExpectQuery(regexp.QuoteMeta("FROM training_runs WHERE id = $1")).
		WithArgs(run.ID.String()).
		WillReturnRows(runRow(t, sqlmock.NewRows(runRowColumns), run))
	mock.ExpectQuery(regexp.QuoteMeta("FROM training_runs ORDER BY started_at")).
		WillReturnRows(runRow(t, sqlmock.NewRows(runRowColumns), run))

	got, err := repo.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run, *got)

	runs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.Request.Features, runs[0].Request.Features)
	assert.Equal(t, run.Duration, runs[0].Duration)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryGetNotFound(t *testing.T) {
	repo, mock := setupRunRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM training_runs WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(runRowColumns))

	_, err := repo.Get(context.Background(), core.RunID("missing"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryClear(t *testing.T) {
	repo, mock := setupRunRepository(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM training_runs")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
