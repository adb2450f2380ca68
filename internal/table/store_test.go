package table

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlstudio/adapters/datareadiness"
	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

func sampleRows() []dataset.Row {
	names := []string{"a", "b"}
	return []dataset.Row{
		dataset.NewRow(names, []dataset.Value{dataset.Number(1), dataset.Text("x")}),
		dataset.NewRow(names, []dataset.Value{dataset.Number(2), dataset.Text("y")}),
		dataset.NewRow(names, []dataset.Value{dataset.Null(), dataset.Text("x")}),
	}
}

func newStore(maxHistory int) *Store {
	return NewStore(datareadiness.NewProfilerAdapter(nil), maxHistory)
}

func TestStoreEmptyUntilLoad(t *testing.T) {
	s := newStore(0)

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Undo())
	assert.ErrorIs(t, s.Reset(), core.ErrNoDataset)

	_, err := s.Apply(sampleRows())
	assert.ErrorIs(t, err, core.ErrNoDataset)
}

func TestLoadProfilesRows(t *testing.T) {
	s := newStore(0)
	state := s.Load(sampleRows(), "sample.csv")

	assert.Len(t, state.Rows, 3)
	assert.Equal(t, []string{"a", "b"}, state.ColumnNames())
	assert.Equal(t, "sample.csv", s.Source())
	assert.Equal(t, 0, s.HistoryDepth())
}

func TestLoadCopiesInput(t *testing.T) {
	rows := sampleRows()
	s := newStore(0)
	s.Load(rows, "")

	rows[0].Set("a", dataset.Number(100))

	state, _ := s.Current()
	assert.True(t, dataset.Number(1).Equal(state.Rows[0].Value("a")))
}

func TestApplyThenUndoRestoresPriorState(t *testing.T) {
	s := newStore(0)
	before := s.Load(sampleRows(), "")

	after, err := s.Apply(sampleRows()[:1])
	require.NoError(t, err)
	assert.Len(t, after.Rows, 1)
	assert.Equal(t, 1, s.HistoryDepth())

	assert.True(t, s.Undo())
	current, _ := s.Current()
	assert.Equal(t, before, current)
	assert.False(t, s.Undo(), "history is empty after a single undo")
}

func TestApplyRecomputesProfiles(t *testing.T) {
	s := newStore(0)
	s.Load(sampleRows(), "")

	state, err := s.Apply([]dataset.Row{
		dataset.NewRow([]string{"c"}, []dataset.Value{dataset.Text("only")}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, state.ColumnNames())
}

func TestResetRestoresLoadSnapshot(t *testing.T) {
	s := newStore(0)
	loaded := s.Load(sampleRows(), "")

	_, err := s.Apply(sampleRows()[:2])
	require.NoError(t, err)
	_, err = s.Apply(sampleRows()[:1])
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	current, _ := s.Current()
	assert.Equal(t, loaded, current)
	assert.Equal(t, 0, s.HistoryDepth())

	// the snapshot survives later edits
	_, err = s.Mutate(func(st dataset.TableState) ([]dataset.Row, error) {
		rows := dataset.CloneRows(st.Rows)
		rows[0].Set("a", dataset.Number(42))
		return rows, nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Reset())
	current, _ = s.Current()
	assert.Equal(t, loaded, current)
}

func TestReloadClearsHistory(t *testing.T) {
	s := newStore(0)
	s.Load(sampleRows(), "first")
	_, _ = s.Apply(sampleRows()[:1])

	s.Load(sampleRows()[:2], "second")
	assert.Equal(t, 0, s.HistoryDepth())

	require.NoError(t, s.Reset())
	current, _ := s.Current()
	assert.Len(t, current.Rows, 2)
}

func TestMutateFailureLeavesStateUntouched(t *testing.T) {
	s := newStore(0)
	loaded := s.Load(sampleRows(), "")

	boom := errors.New("boom")
	_, err := s.Mutate(func(dataset.TableState) ([]dataset.Row, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	current, _ := s.Current()
	assert.Equal(t, loaded, current)
	assert.Equal(t, 0, s.HistoryDepth())
}

func TestHistoryIsBounded(t *testing.T) {
	s := newStore(2)
	s.Load(sampleRows(), "")

	for i := 3; i >= 1; i-- {
		_, err := s.Apply(sampleRows()[:i])
		require.NoError(t, err)
	}
	assert.Equal(t, 2, s.HistoryDepth())

	require.True(t, s.Undo())
	current, _ := s.Current()
	assert.Len(t, current.Rows, 2, "top of history is the immediately prior state")

	require.True(t, s.Undo())
	current, _ = s.Current()
	assert.Len(t, current.Rows, 3)
	assert.False(t, s.Undo())
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	s := newStore(0)
	s.Load(sampleRows(), "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Mutate(func(st dataset.TableState) ([]dataset.Row, error) {
				rows := dataset.CloneRows(st.Rows)
				rows = append(rows, rows[0].Clone())
				return rows, nil
			})
		}()
	}
	wg.Wait()

	current, _ := s.Current()
	assert.Len(t, current.Rows, 23)
	assert.Equal(t, 20, s.HistoryDepth())
}
