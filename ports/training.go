package ports

import (
	"context"

	"mlstudio/domain/training"
)

// TrainingService fits a model described by the request. Transport failures
// are returned as errors; model-level failures as Response.Success=false.
type TrainingService interface {
	Train(ctx context.Context, req training.Request) (training.Response, error)
	Health(ctx context.Context) (training.HealthStatus, error)
	Name() string
}
