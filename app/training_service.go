package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
	"mlstudio/internal"
	"mlstudio/ports"
)

const (
	defaultTrainFraction = 0.8
	defaultRandomSeed    = 42
	// targets with at most this many distinct numbers are treated as class labels
	maxClassLabels = 2
)

// Selection is what the user picked in the model studio
type Selection struct {
	Target string `json:"target"`
	// Features restricts the feature set; empty means every other column
	Features           []string               `json:"features,omitempty"`
	Dropped            []string               `json:"dropped,omitempty"`
	ModelFamily        string                 `json:"model_type"`
	TaskType           string                 `json:"task_type,omitempty"`
	Hyperparameters    map[string]interface{} `json:"params,omitempty"`
	TrainFraction      float64                `json:"train_size,omitempty"`
	RandomSeed         int64                  `json:"random_state,omitempty"`
	UseCrossValidation bool                   `json:"use_cv"`
	AutoScale          bool                   `json:"auto_scale"`
	AutoEncode         bool                   `json:"auto_encode"`
}

// BuildRequest validates a selection against the live columns and assembles
// the Training Service request
func BuildRequest(state dataset.TableState, sel Selection) (training.Request, error) {
	const op = "build_request"

	target := strings.TrimSpace(sel.Target)
	if target == "" {
		return training.Request{}, core.NewOpError(op, "", core.ErrTargetNotSet)
	}
	targetProfile, ok := state.Column(target)
	if !ok {
		return training.Request{}, core.NewOpError(op, target, core.ErrColumnNotFound)
	}

	family, err := training.ParseModelFamily(sel.ModelFamily)
	if err != nil {
		return training.Request{}, core.NewOpError(op, "", err)
	}

	features, err := selectFeatures(state, target, sel)
	if err != nil {
		return training.Request{}, err
	}

	task, err := resolveTask(sel.TaskType, targetProfile)
	if err != nil {
		return training.Request{}, core.NewOpError(op, target, err)
	}

	fraction := sel.TrainFraction
	if fraction == 0 {
		fraction = defaultTrainFraction
	}
	if fraction <= 0 || fraction >= 1 {
		return training.Request{}, core.NewOpError(op, "", fmt.Errorf("%w: got %v", core.ErrInvalidSplit, fraction))
	}

	seed := sel.RandomSeed
	if seed == 0 {
		seed = defaultRandomSeed
	}

	return training.Request{
		Target:             target,
		Features:           features,
		ModelFamily:        family,
		TaskType:           task,
		Hyperparameters:    training.MergeHyperparameters(family, sel.Hyperparameters),
		TrainFraction:      fraction,
		RandomSeed:         seed,
		UseCrossValidation: sel.UseCrossValidation,
		AutoScale:          sel.AutoScale,
		AutoEncode:         sel.AutoEncode,
	}, nil
}

// selectFeatures keeps live column order for the implicit feature set and
// request order for an explicit one
func selectFeatures(state dataset.TableState, target string, sel Selection) ([]string, error) {
	excluded := map[string]bool{target: true}
	for _, d := range sel.Dropped {
		excluded[d] = true
	}

	candidates := state.ColumnNames()
	if len(sel.Features) > 0 {
		candidates = sel.Features
		for _, f := range candidates {
			if _, ok := state.Column(f); !ok {
				return nil, core.NewOpError("build_request", f, core.ErrColumnNotFound)
			}
		}
	}

	features := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, f := range candidates {
		if excluded[f] || seen[f] {
			continue
		}
		seen[f] = true
		features = append(features, f)
	}
	if len(features) == 0 {
		return nil, core.NewOpError("build_request", target, core.ErrNoFeaturesSelected)
	}
	return features, nil
}

// resolveTask honours an explicit task, otherwise numeric targets with more
// than two distinct values are regression and everything else classification
func resolveTask(explicit string, target dataset.ColumnProfile) (training.TaskType, error) {
	if strings.TrimSpace(explicit) != "" {
		return training.ParseTaskType(explicit)
	}
	if target.Kind == dataset.KindNumeric && target.UniqueCount > maxClassLabels {
		return training.TaskRegression, nil
	}
	return training.TaskClassification, nil
}

// TrainingService submits requests built from the live table and keeps the leaderboard
type TrainingService struct {
	studio      *StudioService
	backend     ports.TrainingService
	runs        ports.RunRepository
	concurrency int
	logger      *internal.Logger
	now         func() time.Time
}

// NewTrainingService wires the studio, a Training Service backend and the run store.
// concurrency bounds Compare; values below 1 mean 1.
func NewTrainingService(studio *StudioService, backend ports.TrainingService, runs ports.RunRepository, concurrency int, logger *internal.Logger) *TrainingService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &TrainingService{
		studio:      studio,
		backend:     backend,
		runs:        runs,
		concurrency: concurrency,
		logger:      logger.With("training"),
		now:         time.Now,
	}
}

// Backend names the active Training Service implementation
func (s *TrainingService) Backend() string {
	return s.backend.Name()
}

// BuildRequest validates a selection against the current table
func (s *TrainingService) BuildRequest(sel Selection) (training.Request, error) {
	state, err := s.studio.State()
	if err != nil {
		return training.Request{}, err
	}
	return BuildRequest(state, sel)
}

// Train builds one request, submits it and records the run. Backend failures
// come back as an unsuccessful response, not an error; errors are reserved
// for invalid selections and storage failures.
func (s *TrainingService) Train(ctx context.Context, sel Selection) (training.Run, error) {
	req, err := s.BuildRequest(sel)
	if err != nil {
		s.logger.Warn("invalid training selection: %v", err)
		return training.Run{}, err
	}
	return s.submit(ctx, req)
}

// Compare trains one model per family with the same selection. Submissions
// run concurrently up to the configured bound; results keep input order.
func (s *TrainingService) Compare(ctx context.Context, sel Selection, families []string) ([]training.Run, error) {
	state, err := s.studio.State()
	if err != nil {
		return nil, err
	}
	if len(families) == 0 {
		return nil, core.NewOpError("compare", "", core.ErrModelNotSelected)
	}

	reqs := make([]training.Request, len(families))
	for i, family := range families {
		variant := sel
		variant.ModelFamily = family
		// user params belong to the family they were tuned for
		variant.Hyperparameters = nil
		if strings.EqualFold(strings.TrimSpace(family), strings.TrimSpace(sel.ModelFamily)) {
			variant.Hyperparameters = sel.Hyperparameters
		}
		if reqs[i], err = BuildRequest(state, variant); err != nil {
			return nil, err
		}
	}

	results := make([]training.Run, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			run, err := s.submit(gctx, req)
			if err != nil {
				return err
			}
			results[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *TrainingService) submit(ctx context.Context, req training.Request) (training.Run, error) {
	run := training.Run{
		ID:        core.NewRunID(),
		Request:   req,
		StartedAt: s.now(),
	}

	resp, err := s.backend.Train(ctx, req)
	if err != nil {
		s.logger.Warn("%s training on %s failed: %v", req.ModelFamily, req.Target, err)
		resp = training.Failed("Training failed: %v", err)
	}
	run.Response = resp
	run.Duration = s.now().Sub(run.StartedAt)

	if score, ok := run.Score(); ok {
		s.logger.Info("%s %s on %s scored %.4f in %s", req.ModelFamily, req.TaskType, req.Target, score, run.Duration)
	} else if resp.Success {
		s.logger.Info("%s %s on %s finished without a score", req.ModelFamily, req.TaskType, req.Target)
	}

	if err := s.runs.Save(ctx, run); err != nil {
		return run, fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return run, nil
}

// Leaderboard ranks recorded runs by F1 (classification) or R2 (regression),
// best first. Runs without a score sink to the bottom in submission order.
func (s *TrainingService) Leaderboard(ctx context.Context) ([]training.Run, error) {
	runs, err := s.runs.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(runs, func(i, j int) bool {
		si, iok := runs[i].Score()
		sj, jok := runs[j].Score()
		if iok != jok {
			return iok
		}
		return iok && si > sj
	})
	return runs, nil
}

// Run fetches one recorded run
func (s *TrainingService) Run(ctx context.Context, id core.RunID) (*training.Run, error) {
	return s.runs.Get(ctx, id)
}

// ClearLeaderboard forgets every recorded run
func (s *TrainingService) ClearLeaderboard(ctx context.Context) error {
	if err := s.runs.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("leaderboard cleared")
	return nil
}

// Health probes the backend; failures always read as offline
func (s *TrainingService) Health(ctx context.Context) training.HealthStatus {
	status, err := s.backend.Health(ctx)
	if err != nil {
		s.logger.Debug("training backend %s is offline: %v", s.backend.Name(), err)
		status.Status = training.StatusOffline
		if status.Backend == "" {
			status.Backend = s.backend.Name()
		}
		if status.Message == "" {
			status.Message = err.Error()
		}
	}
	return status
}
