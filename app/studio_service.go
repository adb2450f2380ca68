package app

import (
	"context"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
	"mlstudio/internal"
	"mlstudio/internal/analysis"
	"mlstudio/internal/table"
	"mlstudio/internal/testkit"
	"mlstudio/internal/transform"
	"mlstudio/ports"
)

// StudioOptions holds display defaults for previews and distributions
type StudioOptions struct {
	PreviewRows        int
	HistogramBins      int
	HistogramPrecision int
	FrequencyTopN      int
}

// DefaultStudioOptions mirrors the configuration defaults
func DefaultStudioOptions() StudioOptions {
	return StudioOptions{
		PreviewRows:        100,
		HistogramBins:      10,
		HistogramPrecision: 1,
		FrequencyTopN:      10,
	}
}

// Distribution is the chart data for one column: bins for numeric columns,
// a frequency table for everything else
type Distribution struct {
	Column    string                   `json:"column"`
	Kind      dataset.ColumnKind       `json:"type"`
	Histogram []dataset.HistogramBin   `json:"histogram,omitempty"`
	Frequency []dataset.FrequencyEntry `json:"frequency,omitempty"`
}

// StudioService is the data editing facade over the table store
type StudioService struct {
	store   *table.Store
	loader  ports.DatasetLoader
	options StudioOptions
	logger  *internal.Logger
}

// NewStudioService wires the store and the file loader
func NewStudioService(store *table.Store, loader ports.DatasetLoader, options StudioOptions, logger *internal.Logger) *StudioService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StudioService{
		store:   store,
		loader:  loader,
		options: options,
		logger:  logger.With("studio"),
	}
}

// Load installs rows as the new dataset
func (s *StudioService) Load(rows []dataset.Row, source string) dataset.TableState {
	state := s.store.Load(rows, source)
	s.logger.Info("loaded %q: %d rows, %d columns", source, len(state.Rows), len(state.Columns))
	return state
}

// LoadFile reads a file from disk and loads it
func (s *StudioService) LoadFile(ctx context.Context, path string) (dataset.TableState, error) {
	result, err := s.loader.ReadFile(ctx, path)
	if err != nil {
		s.logger.Warn("failed to read %s: %v", path, err)
		return dataset.TableState{}, err
	}
	return s.Load(result.Rows, result.Source), nil
}

// LoadBytes parses an uploaded payload and loads it
func (s *StudioService) LoadBytes(ctx context.Context, name string, data []byte) (dataset.TableState, error) {
	result, err := s.loader.ReadBytes(ctx, name, data)
	if err != nil {
		s.logger.Warn("failed to parse %s: %v", name, err)
		return dataset.TableState{}, err
	}
	return s.Load(result.Rows, result.Source), nil
}

// LoadDemo loads one of the bundled sample datasets
func (s *StudioService) LoadDemo(ctx context.Context, name string) (dataset.TableState, error) {
	result, err := testkit.LoadDemo(ctx, name, s.logger)
	if err != nil {
		return dataset.TableState{}, err
	}
	return s.Load(result.Rows, result.Source), nil
}

// State returns the live table
func (s *StudioService) State() (dataset.TableState, error) {
	state, ok := s.store.Current()
	if !ok {
		return dataset.TableState{}, core.ErrNoDataset
	}
	return state, nil
}

// Source returns the label of the loaded dataset
func (s *StudioService) Source() string {
	return s.store.Source()
}

// Apply runs op against the live table and commits the result atomically
func (s *StudioService) Apply(op transform.Operation) (dataset.TableState, error) {
	state, err := s.store.Mutate(op.Apply)
	if err != nil {
		s.logger.Warn("%s %q failed: %v", op.Name(), op.Column(), err)
		return dataset.TableState{}, err
	}
	s.logger.Info("%s %q: %d rows, %d columns", op.Name(), op.Column(), len(state.Rows), len(state.Columns))
	return state, nil
}

// Clean dispatches a wire cleaning request
func (s *StudioService) Clean(req transform.CleanRequest) (dataset.TableState, error) {
	op, err := transform.FromRequest(req)
	if err != nil {
		s.logger.Warn("rejected clean request %q: %v", req.Action, err)
		return dataset.TableState{}, err
	}
	return s.Apply(op)
}

// CreateFeature appends a derived numeric column
func (s *StudioService) CreateFeature(name, formula string) (dataset.TableState, error) {
	return s.Apply(transform.CreateFeature{Feature: name, Formula: formula})
}

// Undo restores the previous state. The bool is false when history is empty.
func (s *StudioService) Undo() (dataset.TableState, bool, error) {
	if _, ok := s.store.Current(); !ok {
		return dataset.TableState{}, false, core.ErrNoDataset
	}
	undone := s.store.Undo()
	state, _ := s.store.Current()
	if undone {
		s.logger.Info("undo: %d rows, %d columns", len(state.Rows), len(state.Columns))
	}
	return state, undone, nil
}

// Reset restores the state captured at load time
func (s *StudioService) Reset() (dataset.TableState, error) {
	if err := s.store.Reset(); err != nil {
		return dataset.TableState{}, err
	}
	state, _ := s.store.Current()
	s.logger.Info("reset %q: %d rows, %d columns", s.store.Source(), len(state.Rows), len(state.Columns))
	return state, nil
}

// Summary describes the live table
func (s *StudioService) Summary() (dataset.DatasetSummary, error) {
	state, err := s.State()
	if err != nil {
		return dataset.DatasetSummary{}, err
	}
	return analysis.Summarize(state, s.store.Source(), s.store.HistoryDepth()), nil
}

// Preview returns the first n rows; n <= 0 uses the configured default
func (s *StudioService) Preview(n int) ([]dataset.Row, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.options.PreviewRows
	}
	return state.Preview(n), nil
}

// PreviewOf cuts the configured preview from a state the caller already
// holds, so a response reflects the table its mutation committed
func (s *StudioService) PreviewOf(state dataset.TableState) []dataset.Row {
	return state.Preview(s.options.PreviewRows)
}

// Histogram bins a numeric column; zero arguments use the configured defaults
func (s *StudioService) Histogram(column string, bins, precision int) ([]dataset.HistogramBin, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}
	opts := analysis.HistogramOptions{Bins: bins, Precision: precision}
	if opts.Bins <= 0 {
		opts.Bins = s.options.HistogramBins
	}
	if opts.Precision < 0 {
		opts.Precision = s.options.HistogramPrecision
	}
	return analysis.Histogram(state, column, opts)
}

// Frequency counts the most common values of a column
func (s *StudioService) Frequency(column string, topN int) ([]dataset.FrequencyEntry, error) {
	state, err := s.State()
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.options.FrequencyTopN
	}
	return analysis.FrequencyTable(state, column, topN)
}

// Distribution picks the chart that fits the column kind
func (s *StudioService) Distribution(column string, bins, precision, topN int) (Distribution, error) {
	state, err := s.State()
	if err != nil {
		return Distribution{}, err
	}
	profile, ok := state.Column(column)
	if !ok {
		return Distribution{}, core.NewOpError("distribution", column, core.ErrColumnNotFound)
	}

	dist := Distribution{Column: column, Kind: profile.Kind}
	if profile.Kind == dataset.KindNumeric {
		dist.Histogram, err = s.Histogram(column, bins, precision)
	} else {
		dist.Frequency, err = s.Frequency(column, topN)
	}
	if err != nil {
		return Distribution{}, err
	}
	return dist, nil
}

// Correlation computes the Pearson matrix; nil columns means every numeric column
func (s *StudioService) Correlation(columns []string) (dataset.CorrelationMatrix, error) {
	state, err := s.State()
	if err != nil {
		return dataset.CorrelationMatrix{}, err
	}
	return analysis.CorrelationMatrix(state, columns)
}
