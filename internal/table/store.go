package table

import (
	"sync"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
	"mlstudio/ports"
)

// Store owns the current table, its undo history and the snapshot taken at
// load time. Load, Apply, Mutate, Undo and Reset are mutually exclusive.
//
// States handed out by the store are shared, not copied: callers must treat
// rows as read-only and Clone before editing.
type Store struct {
	mu sync.RWMutex

	profiler   ports.ProfilerPort
	maxHistory int // 0 keeps every state

	source   string
	current  *dataset.TableState
	original *dataset.TableState
	history  []dataset.TableState
}

// NewStore creates an empty store. maxHistory bounds the undo stack; 0 is unbounded.
func NewStore(profiler ports.ProfilerPort, maxHistory int) *Store {
	if maxHistory < 0 {
		maxHistory = 0
	}
	return &Store{
		profiler:   profiler,
		maxHistory: maxHistory,
	}
}

// Load replaces the dataset, captures the reset snapshot and clears history
func (s *Store) Load(rows []dataset.Row, source string) dataset.TableState {
	state := s.profile(dataset.CloneRows(rows))
	original := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = source
	s.current = &state
	s.original = &original
	s.history = nil
	return state
}

// Current returns the live state, or false before the first load
func (s *Store) Current() (dataset.TableState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return dataset.TableState{}, false
	}
	return *s.current, true
}

// Source returns the label given at load time
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Apply profiles rows, pushes the current state onto history and installs the result
func (s *Store) Apply(rows []dataset.Row) (dataset.TableState, error) {
	return s.Mutate(func(dataset.TableState) ([]dataset.Row, error) {
		return rows, nil
	})
}

// Mutate runs fn against the current state under the write lock and commits
// its rows. If fn fails nothing changes.
func (s *Store) Mutate(fn func(dataset.TableState) ([]dataset.Row, error)) (dataset.TableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return dataset.TableState{}, core.ErrNoDataset
	}

	rows, err := fn(*s.current)
	if err != nil {
		return dataset.TableState{}, err
	}

	next := s.profile(rows)
	s.push(*s.current)
	s.current = &next
	return next, nil
}

// Undo restores the most recent prior state. It reports false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}
	last := len(s.history) - 1
	prev := s.history[last]
	s.history[last] = dataset.TableState{}
	s.history = s.history[:last]
	s.current = &prev
	return true
}

// Reset restores the load-time snapshot and clears history
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.original == nil {
		return core.ErrNoDataset
	}
	state := s.original.Clone()
	s.current = &state
	s.history = nil
	return nil
}

// HistoryDepth returns the number of states available to Undo
func (s *Store) HistoryDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// push appends to history, pruning the oldest entries past maxHistory
func (s *Store) push(state dataset.TableState) {
	s.history = append(s.history, state)
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		excess := len(s.history) - s.maxHistory
		kept := make([]dataset.TableState, s.maxHistory)
		copy(kept, s.history[excess:])
		s.history = kept
	}
}

func (s *Store) profile(rows []dataset.Row) dataset.TableState {
	if rows == nil {
		rows = []dataset.Row{}
	}
	return dataset.TableState{
		Rows:    rows,
		Columns: s.profiler.Profile(rows),
	}
}
