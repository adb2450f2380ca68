package ports

import (
	"context"

	"mlstudio/domain/dataset"
)

// LoadResult is a parsed tabular source ready for profiling
type LoadResult struct {
	Source  string
	Headers []string
	Rows    []dataset.Row
}

// DatasetLoader turns files or uploaded bytes into rows
type DatasetLoader interface {
	ReadFile(ctx context.Context, path string) (*LoadResult, error)
	ReadBytes(ctx context.Context, name string, data []byte) (*LoadResult, error)
}
