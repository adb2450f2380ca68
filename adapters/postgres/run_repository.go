package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"mlstudio/domain/core"
	"mlstudio/domain/training"
	"mlstudio/internal/errors"
	"mlstudio/ports"
)

const runsSchema = `
	CREATE TABLE IF NOT EXISTS training_runs (
		id TEXT PRIMARY KEY,
		task_type TEXT NOT NULL,
		model_type TEXT NOT NULL,
		target TEXT NOT NULL,
		score DOUBLE PRECISION,
		request JSONB NOT NULL,
		response JSONB NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		duration_ms BIGINT NOT NULL
	)`

const runColumns = `id, task_type, model_type, target, score, request, response, started_at, duration_ms`

// runRecord is the row shape of training_runs
type runRecord struct {
	ID         string          `db:"id"`
	TaskType   string          `db:"task_type"`
	ModelType  string          `db:"model_type"`
	Target     string          `db:"target"`
	Score      sql.NullFloat64 `db:"score"`
	Request    []byte          `db:"request"`
	Response   []byte          `db:"response"`
	StartedAt  time.Time       `db:"started_at"`
	DurationMS int64           `db:"duration_ms"`
}

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

var _ ports.RunRepository = (*RunRepositoryImpl)(nil)

// EnsureSchema creates the training_runs table if it doesn't exist
func (r *RunRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runsSchema); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to create training_runs table")
	}
	return nil
}

// Save inserts a run, replacing any earlier run with the same ID
func (r *RunRepositoryImpl) Save(ctx context.Context, run training.Run) error {
	request, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	response, err := json.Marshal(run.Response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	var score sql.NullFloat64
	if s, ok := run.Score(); ok {
		score = sql.NullFloat64{Float64: s, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO training_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			score = EXCLUDED.score, request = EXCLUDED.request, response = EXCLUDED.response,
			started_at = EXCLUDED.started_at, duration_ms = EXCLUDED.duration_ms
	`, run.ID.String(), string(run.Request.TaskType), string(run.Request.ModelFamily), run.Request.Target,
		score, request, response, run.StartedAt, run.Duration.Milliseconds())
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("save run %s: %w", run.ID, err))
	}
	return nil
}

// Get retrieves a run by ID
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*training.Run, error) {
	var rec runRecord
	err := r.db.GetContext(ctx, &rec, `SELECT `+runColumns+` FROM training_runs WHERE id = $1`, id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("get run %s: %w", id, err))
	}
	run, err := rec.toRun()
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns every run in submission order
func (r *RunRepositoryImpl) List(ctx context.Context) ([]training.Run, error) {
	var recs []runRecord
	if err := r.db.SelectContext(ctx, &recs, `SELECT `+runColumns+` FROM training_runs ORDER BY started_at ASC, id ASC`); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("list runs: %w", err))
	}

	runs := make([]training.Run, 0, len(recs))
	for _, rec := range recs {
		run, err := rec.toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Clear deletes every run
func (r *RunRepositoryImpl) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM training_runs`); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("clear runs: %w", err))
	}
	return nil
}

func (rec runRecord) toRun() (training.Run, error) {
	run := training.Run{
		ID:        core.RunID(rec.ID),
		StartedAt: rec.StartedAt,
		Duration:  time.Duration(rec.DurationMS) * time.Millisecond,
	}
	if err := json.Unmarshal(rec.Request, &run.Request); err != nil {
		return training.Run{}, fmt.Errorf("decode request of run %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(rec.Response, &run.Response); err != nil {
		return training.Run{}, fmt.Errorf("decode response of run %s: %w", rec.ID, err)
	}
	return run, nil
}
