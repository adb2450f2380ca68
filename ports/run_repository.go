package ports

import (
	"context"

	"mlstudio/domain/core"
	"mlstudio/domain/training"
)

// RunRepository persists training submissions for the leaderboard
type RunRepository interface {
	Save(ctx context.Context, run training.Run) error
	Get(ctx context.Context, id core.RunID) (*training.Run, error)
	List(ctx context.Context) ([]training.Run, error)
	Clear(ctx context.Context) error
}
