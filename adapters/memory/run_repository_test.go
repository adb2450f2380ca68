package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/domain/core"
	"mlstudio/domain/training"
	apperrors "mlstudio/internal/errors"
)

func newRun(target string) training.Run {
	return training.Run{
		ID:        core.NewRunID(),
		Request:   training.Request{Target: target, ModelFamily: training.FamilyKNN},
		Response:  training.Response{Success: true},
		StartedAt: time.Now(),
	}
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository()

	first, second := newRun("a"), newRun("b")
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Request.Target)

	first.Response.Message = "updated"
	require.NoError(t, repo.Save(ctx, first))

	runs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID, "re-saving keeps the original position")
	assert.Equal(t, "updated", runs[0].Response.Message)

	require.NoError(t, repo.Clear(ctx))
	runs, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = repo.Get(ctx, first.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestRunRepositoryRejectsEmptyID(t *testing.T) {
	err := NewRunRepository().Save(context.Background(), training.Run{})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}
