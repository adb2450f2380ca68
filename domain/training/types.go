package training

import (
	"fmt"
	"strings"
	"time"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// TaskType selects the kind of supervised problem
type TaskType string

const (
	TaskClassification TaskType = "classification"
	TaskRegression     TaskType = "regression"
)

// ParseTaskType accepts the wire identifiers case-insensitively
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(strings.ToLower(strings.TrimSpace(s))) {
	case TaskClassification:
		return TaskClassification, nil
	case TaskRegression:
		return TaskRegression, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidTaskType, s)
}

// Request is handed to the Training Service
type Request struct {
	Target             string                 `json:"target"`
	Features           []string               `json:"features"`
	ModelFamily        ModelFamily            `json:"model_type"`
	TaskType           TaskType               `json:"task_type"`
	Hyperparameters    map[string]interface{} `json:"params"`
	TrainFraction      float64                `json:"train_size"`
	RandomSeed         int64                  `json:"random_state"`
	UseCrossValidation bool                   `json:"use_cv"`
	AutoScale          bool                   `json:"auto_scale"`
	AutoEncode         bool                   `json:"auto_encode"`
}

// Metrics carries whichever scores the task produces
type Metrics struct {
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Precision  *float64 `json:"precision,omitempty"`
	Recall     *float64 `json:"recall,omitempty"`
	F1         *float64 `json:"f1,omitempty"`
	AUC        *float64 `json:"auc,omitempty"`
	R2         *float64 `json:"r2,omitempty"`
	MAE        *float64 `json:"mae,omitempty"`
	RMSE       *float64 `json:"rmse,omitempty"`
	TrainScore *float64 `json:"train_score,omitempty"`
	CVMean     *float64 `json:"cv_mean,omitempty"`
	CVStd      *float64 `json:"cv_std,omitempty"`
}

// FeatureImportance is one entry of the importance list
type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// Prediction pairs an actual label or value with the model output
type Prediction struct {
	Actual    dataset.Value `json:"actual"`
	Predicted dataset.Value `json:"predicted"`
}

// ROCCurve holds false/true positive rates for binary classifiers
type ROCCurve struct {
	FPR []float64 `json:"fpr"`
	TPR []float64 `json:"tpr"`
}

// Response is relayed back from the Training Service without interpretation
type Response struct {
	Success           bool                `json:"success"`
	Message           string              `json:"message"`
	Metrics           *Metrics            `json:"metrics,omitempty"`
	ConfusionMatrix   [][]int             `json:"confusion_matrix,omitempty"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
	Predictions       []Prediction        `json:"predictions,omitempty"`
	ROC               *ROCCurve           `json:"roc_data,omitempty"`
}

// Failed builds an unsuccessful response
func Failed(format string, args ...interface{}) Response {
	return Response{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Score returns the leaderboard metric for the task: F1 or R2
func (r Response) Score(task TaskType) (float64, bool) {
	if !r.Success || r.Metrics == nil {
		return 0, false
	}
	var m *float64
	if task == TaskRegression {
		m = r.Metrics.R2
	} else {
		m = r.Metrics.F1
	}
	if m == nil {
		return 0, false
	}
	return *m, true
}

// Run is one recorded training submission
type Run struct {
	ID        core.RunID    `json:"id"`
	Request   Request       `json:"request"`
	Response  Response      `json:"response"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Score returns the ranking metric of the run
func (r Run) Score() (float64, bool) {
	return r.Response.Score(r.Request.TaskType)
}

// HealthStatus is the probe result for the Training Service
type HealthStatus struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Message string `json:"message,omitempty"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Float is a helper for building optional metrics
func Float(f float64) *float64 { return &f }
