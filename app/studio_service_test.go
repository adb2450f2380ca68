package app

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/adapters/datareadiness"
	"mlstudio/adapters/excel"
	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
	"mlstudio/internal"
	"mlstudio/internal/table"
	"mlstudio/internal/transform"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
}

func newStudio(t *testing.T) *StudioService {
	t.Helper()
	logger := quietLogger()
	store := table.NewStore(datareadiness.NewProfilerAdapter(nil), 50)
	loader := excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	return NewStudioService(store, loader, DefaultStudioOptions(), logger)
}

func scenarioRows() []dataset.Row {
	return dataset.RowsFromMaps([]map[string]interface{}{
		{"a": 1, "b": "x"},
		{"a": 2, "b": "y"},
		{"a": nil, "b": "x"},
	}, []string{"a", "b"})
}

func TestStudioRequiresDataset(t *testing.T) {
	s := newStudio(t)

	_, err := s.State()
	assert.ErrorIs(t, err, core.ErrNoDataset)
	_, err = s.Clean(transform.CleanRequest{Action: transform.ActionDropDuplicates})
	assert.ErrorIs(t, err, core.ErrNoDataset)
	_, _, err = s.Undo()
	assert.ErrorIs(t, err, core.ErrNoDataset)
	_, err = s.Reset()
	assert.ErrorIs(t, err, core.ErrNoDataset)
	_, err = s.Summary()
	assert.ErrorIs(t, err, core.ErrNoDataset)
	_, err = s.Correlation(nil)
	assert.ErrorIs(t, err, core.ErrNoDataset)
}

func TestStudioFillAndUndo(t *testing.T) {
	s := newStudio(t)
	loaded := s.Load(scenarioRows(), "scenario")

	a, ok := loaded.Column("a")
	require.True(t, ok)
	assert.Equal(t, dataset.KindNumeric, a.Kind)
	assert.Equal(t, 1, a.MissingCount)

	filled, err := s.Clean(transform.CleanRequest{Action: transform.ActionFillMissing, Column: "a", FillMethod: "mean"})
	require.NoError(t, err)
	assert.True(t, dataset.Number(1.5).Equal(filled.Rows[2].Value("a")))
	a, _ = filled.Column("a")
	assert.Equal(t, 0, a.MissingCount)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.HistoryDepth)
	assert.True(t, summary.CanUndo)

	restored, undone, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, undone)
	assert.Equal(t, loaded, restored)

	_, undone, err = s.Undo()
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestStudioFailedOperationLeavesStateUntouched(t *testing.T) {
	s := newStudio(t)
	before := s.Load(scenarioRows(), "scenario")

	_, err := s.Clean(transform.CleanRequest{Action: "shuffle"})
	assert.ErrorIs(t, err, core.ErrUnknownAction)

	_, err = s.Clean(transform.CleanRequest{Action: transform.ActionRemoveOutliers, Column: "b"})
	assert.ErrorIs(t, err, core.ErrNotNumeric)

	_, err = s.CreateFeature("a", "b * 2")
	assert.ErrorIs(t, err, core.ErrDuplicateColumnName)

	after, err := s.State()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	summary, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 0, summary.HistoryDepth)
}

func TestStudioResetAfterSeveralOperations(t *testing.T) {
	s := newStudio(t)
	loaded := s.Load(scenarioRows(), "scenario")

	_, err := s.CreateFeature("double_a", "a * 2")
	require.NoError(t, err)
	_, err = s.Clean(transform.CleanRequest{Action: transform.ActionDropMissingRows})
	require.NoError(t, err)
	_, err = s.Clean(transform.CleanRequest{Action: transform.ActionDropColumn, Column: "b"})
	require.NoError(t, err)

	reset, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, loaded, reset)

	_, undone, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, undone, "reset clears history")
}

func TestStudioPreviewOfHeldState(t *testing.T) {
	logger := quietLogger()
	options := DefaultStudioOptions()
	options.PreviewRows = 2
	s := NewStudioService(table.NewStore(datareadiness.NewProfilerAdapter(nil), 50),
		excel.NewDataReader(excel.DefaultReaderConfig(), logger), options, logger)
	s.Load(scenarioRows(), "scenario")

	dropped, err := s.Clean(transform.CleanRequest{Action: transform.ActionDropColumn, Column: "b"})
	require.NoError(t, err)
	_, err = s.CreateFeature("double_a", "a * 2")
	require.NoError(t, err)

	preview := s.PreviewOf(dropped)
	require.Len(t, preview, 2)
	for _, row := range preview {
		assert.Equal(t, []string{"a"}, row.Keys())
	}

	live, err := s.Preview(0)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.True(t, live[0].Has("double_a"))
}

func TestStudioLoadBytesAndAnalysis(t *testing.T) {
	s := newStudio(t)
	csv := "x,y,label\n1,2,a\n2,4,b\n3,6,a\n4,8,a\n"

	state, err := s.LoadBytes(context.Background(), "pairs.csv", []byte(csv))
	require.NoError(t, err)
	assert.Len(t, state.Rows, 4)
	assert.Equal(t, "pairs.csv", s.Source())

	matrix, err := s.Correlation(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, matrix.Columns)
	xy, ok := matrix.At("x", "y")
	require.True(t, ok)
	assert.InDelta(t, 1.0, xy, 1e-9)

	dist, err := s.Distribution("label", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, dataset.KindCategorical, dist.Kind)
	require.NotEmpty(t, dist.Frequency)
	assert.Equal(t, dataset.FrequencyEntry{Value: "a", Count: 3}, dist.Frequency[0])

	dist, err = s.Distribution("x", 4, 0, 0)
	require.NoError(t, err)
	assert.Len(t, dist.Histogram, 4)

	_, err = s.Distribution("nope", 0, -1, 0)
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	preview, err := s.Preview(2)
	require.NoError(t, err)
	assert.Len(t, preview, 2)
}

func TestStudioDateTextStaysCategorical(t *testing.T) {
	s := newStudio(t)
	csv := "day,v\n2024-01-01,1\n2024-01-02,2\n2024-01-03,3\n"

	state, err := s.LoadBytes(context.Background(), "days.csv", []byte(csv))
	require.NoError(t, err)

	day, ok := state.Column("day")
	require.True(t, ok)
	assert.Equal(t, dataset.KindCategorical, day.Kind)
	assert.Equal(t, 3, day.UniqueCount)
	assert.True(t, dataset.Text("2024-01-01").Equal(state.Rows[0].Value("day")))

	v, _ := state.Column("v")
	assert.Equal(t, dataset.KindNumeric, v.Kind)
}

func TestStudioLoadDemo(t *testing.T) {
	s := newStudio(t)

	state, err := s.LoadDemo(context.Background(), "iris")
	require.NoError(t, err)
	assert.Len(t, state.Rows, 18)
	assert.Equal(t, "Iris", s.Source())

	_, err = s.LoadDemo(context.Background(), "mnist")
	assert.Error(t, err)
}
