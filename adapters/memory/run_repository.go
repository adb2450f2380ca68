package memory

import (
	"context"
	"fmt"
	"sync"

	"mlstudio/domain/core"
	"mlstudio/domain/training"
	"mlstudio/internal/errors"
	"mlstudio/ports"
)

// RunRepository keeps runs in process memory, in submission order
type RunRepository struct {
	mu    sync.RWMutex
	order []core.RunID
	runs  map[core.RunID]training.Run
}

// NewRunRepository creates an empty in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]training.Run)}
}

var _ ports.RunRepository = (*RunRepository)(nil)

func (r *RunRepository) Save(ctx context.Context, run training.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if run.ID.String() == "" {
		return errors.InvalidInput("run ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[run.ID]; !exists {
		r.order = append(r.order, run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *RunRepository) Get(ctx context.Context, id core.RunID) (*training.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("run %s", id))
	}
	return &run, nil
}

func (r *RunRepository) List(ctx context.Context) ([]training.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]training.Run, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.runs[id])
	}
	return out, nil
}

func (r *RunRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.runs = make(map[core.RunID]training.Run)
	return nil
}
