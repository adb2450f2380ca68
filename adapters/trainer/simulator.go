package trainer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
	"mlstudio/internal"
	"mlstudio/ports"
)

const (
	simulatedTestRows    = 100
	simulatedPredictions = 5
)

// rocThresholds are the false positive rates the simulated ROC curve is sampled at
var rocThresholds = []float64{0, 0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 1}

// Simulator is a deterministic stand-in for a real training backend.
// Every output is a pure function of the request.
type Simulator struct {
	rng     ports.RNGPort
	latency time.Duration
	logger  *internal.Logger
}

// SimulatorOption configures a Simulator
type SimulatorOption func(*Simulator)

// WithLatency delays every Train call, honouring context cancellation
func WithLatency(d time.Duration) SimulatorOption {
	return func(s *Simulator) { s.latency = d }
}

// WithRNG replaces the stream source
func WithRNG(rng ports.RNGPort) SimulatorOption {
	return func(s *Simulator) { s.rng = rng }
}

// NewSimulator creates a simulated Training Service
func NewSimulator(logger *internal.Logger, opts ...SimulatorOption) *Simulator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Simulator{
		rng:    SeededRNG{},
		logger: logger.With("trainer_simulator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.TrainingService = (*Simulator)(nil)

// Name identifies the backend in health reports
func (s *Simulator) Name() string { return "simulated" }

// Health always reports online
func (s *Simulator) Health(ctx context.Context) (training.HealthStatus, error) {
	if err := ctx.Err(); err != nil {
		return training.HealthStatus{Status: training.StatusOffline, Backend: s.Name(), Message: err.Error()}, err
	}
	return training.HealthStatus{
		Status:  training.StatusOnline,
		Backend: s.Name(),
		Message: "simulated training backend is running",
	}, nil
}

// Train produces seeded metrics in the ranges of the original mock backend.
// Malformed requests come back as unsuccessful responses, not errors.
func (s *Simulator) Train(ctx context.Context, req training.Request) (training.Response, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return training.Response{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return training.Response{}, err
	}

	if msg := validateRequest(req); msg != "" {
		s.logger.Warn("rejected training request: %s", msg)
		return training.Failed("%s", msg), nil
	}

	task := req.TaskType
	if task == "" {
		task = training.TaskClassification
	}

	rng := s.rng.SeededStream(streamName(req, task), req.RandomSeed)

	var resp training.Response
	if task == training.TaskRegression {
		resp = simulateRegression(rng, req)
	} else {
		resp = simulateClassification(rng, req)
	}
	resp.Success = true
	resp.Message = fmt.Sprintf("%s trained on %d features", req.ModelFamily.DisplayName(), len(req.Features))

	s.logger.Info("simulated %s %s on target %s (seed %d)", task, req.ModelFamily, req.Target, req.RandomSeed)
	return resp, nil
}

func validateRequest(req training.Request) string {
	switch {
	case strings.TrimSpace(req.Target) == "":
		return "target column is required"
	case len(req.Features) == 0:
		return "at least one feature is required"
	case req.ModelFamily == "":
		return "model type is required"
	case req.TrainFraction <= 0 || req.TrainFraction >= 1:
		return fmt.Sprintf("train_size must be between 0 and 1, got %v", req.TrainFraction)
	}
	for _, f := range req.Features {
		if f == req.Target {
			return fmt.Sprintf("target %q cannot also be a feature", f)
		}
	}
	return ""
}

func streamName(req training.Request, task training.TaskType) string {
	return strings.Join([]string{
		string(req.ModelFamily),
		string(task),
		req.Target,
		strings.Join(req.Features, ","),
	}, "|")
}

func simulateClassification(rng *rand.Rand, req training.Request) training.Response {
	accuracy := round4(0.85 + rng.Float64()*0.1)
	precision := round4(0.82 + rng.Float64()*0.1)
	recall := round4(0.78 + rng.Float64()*0.15)
	f1 := round4(0.80 + rng.Float64()*0.1)
	auc := round4(0.88 + rng.Float64()*0.1)

	metrics := &training.Metrics{
		Accuracy:   training.Float(accuracy),
		Precision:  training.Float(precision),
		Recall:     training.Float(recall),
		F1:         training.Float(f1),
		AUC:        training.Float(auc),
		TrainScore: training.Float(round4(math.Min(1, accuracy+0.02+rng.Float64()*0.03))),
	}
	if req.UseCrossValidation {
		metrics.CVMean = training.Float(round4(accuracy - rng.Float64()*0.03))
		metrics.CVStd = training.Float(round4(0.01 + rng.Float64()*0.03))
	}

	predictions := make([]training.Prediction, simulatedPredictions)
	for i := range predictions {
		actual := float64(rng.Intn(2))
		predicted := actual
		if rng.Float64() > accuracy {
			predicted = 1 - actual
		}
		predictions[i] = training.Prediction{Actual: dataset.Number(actual), Predicted: dataset.Number(predicted)}
	}

	return training.Response{
		Metrics:           metrics,
		ConfusionMatrix:   confusionMatrix(accuracy, recall),
		FeatureImportance: featureImportance(rng, req.Features),
		Predictions:       predictions,
		ROC:               rocCurve(auc),
	}
}

func simulateRegression(rng *rand.Rand, req training.Request) training.Response {
	rmse := round4(0.15 + rng.Float64()*0.2)
	r2 := round4(0.75 + rng.Float64()*0.2)

	metrics := &training.Metrics{
		R2:         training.Float(r2),
		RMSE:       training.Float(rmse),
		MAE:        training.Float(round4(rmse * (0.7 + rng.Float64()*0.1))),
		TrainScore: training.Float(round4(math.Min(1, r2+0.02+rng.Float64()*0.03))),
	}
	if req.UseCrossValidation {
		metrics.CVMean = training.Float(round4(r2 - rng.Float64()*0.03))
		metrics.CVStd = training.Float(round4(0.01 + rng.Float64()*0.03))
	}

	predictions := make([]training.Prediction, simulatedPredictions)
	for i := range predictions {
		actual := round4(rng.Float64() * 100)
		predicted := round4(actual + rng.NormFloat64()*rmse*10)
		predictions[i] = training.Prediction{Actual: dataset.Number(actual), Predicted: dataset.Number(predicted)}
	}

	return training.Response{
		Metrics:           metrics,
		FeatureImportance: featureImportance(rng, req.Features),
		Predictions:       predictions,
	}
}

// featureImportance scores every feature and sorts descending, keeping
// request order among equal scores
func featureImportance(rng *rand.Rand, features []string) []training.FeatureImportance {
	out := make([]training.FeatureImportance, len(features))
	for i, name := range features {
		out[i] = training.FeatureImportance{Name: name, Importance: round4(rng.Float64())}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}

// confusionMatrix lays out a balanced binary test split of simulatedTestRows
// that matches the given accuracy and recall as closely as integers allow
func confusionMatrix(accuracy, recall float64) [][]int {
	positives := simulatedTestRows / 2
	negatives := simulatedTestRows - positives
	correct := int(math.Round(accuracy * simulatedTestRows))

	tp := int(math.Round(recall * float64(positives)))
	tn := correct - tp
	if tn > negatives {
		tn = negatives
	}
	if tn < 0 {
		tn = 0
	}
	return [][]int{
		{tn, negatives - tn},
		{positives - tp, tp},
	}
}

// rocCurve samples tpr = 1 - (1-fpr)^k, whose area is k/(k+1) = auc
func rocCurve(auc float64) *training.ROCCurve {
	k := auc / (1 - auc)
	roc := &training.ROCCurve{
		FPR: make([]float64, len(rocThresholds)),
		TPR: make([]float64, len(rocThresholds)),
	}
	for i, fpr := range rocThresholds {
		roc.FPR[i] = fpr
		roc.TPR[i] = round4(1 - math.Pow(1-fpr, k))
	}
	return roc
}

func round4(f float64) float64 {
	r, err := stats.Round(f, 4)
	if err != nil {
		return f
	}
	return r
}
