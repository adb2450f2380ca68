package training

import (
	"fmt"
	"strings"

	"mlstudio/domain/core"
)

// ModelFamily identifies a model on the wire
type ModelFamily string

const (
	FamilyRandomForest     ModelFamily = "rf"
	FamilyXGBoost          ModelFamily = "xgb"
	FamilyGradientBoosting ModelFamily = "gb"
	FamilyLinear           ModelFamily = "linear"
	FamilyRidge            ModelFamily = "ridge"
	FamilyLasso            ModelFamily = "lasso"
	FamilyDecisionTree     ModelFamily = "tree"
	FamilyKNN              ModelFamily = "knn"
	FamilySVM              ModelFamily = "svm"
)

// Families lists every supported family in display order
var Families = []ModelFamily{
	FamilyRandomForest,
	FamilyXGBoost,
	FamilyGradientBoosting,
	FamilyLinear,
	FamilyRidge,
	FamilyLasso,
	FamilyDecisionTree,
	FamilyKNN,
	FamilySVM,
}

var familyNames = map[ModelFamily]string{
	FamilyRandomForest:     "Random Forest",
	FamilyXGBoost:          "XGBoost",
	FamilyGradientBoosting: "Gradient Boosting",
	FamilyLinear:           "Linear / Logistic Regression",
	FamilyRidge:            "Ridge",
	FamilyLasso:            "Lasso",
	FamilyDecisionTree:     "Decision Tree",
	FamilyKNN:              "K-Nearest Neighbors",
	FamilySVM:              "Support Vector Machine",
}

var defaultHyperparameters = map[ModelFamily]map[string]interface{}{
	FamilyRandomForest:     {"n_estimators": 100, "max_depth": 10, "min_samples_split": 2},
	FamilyXGBoost:          {"n_estimators": 100, "max_depth": 6, "learning_rate": 0.1},
	FamilyGradientBoosting: {"n_estimators": 100, "max_depth": 3, "learning_rate": 0.1},
	FamilyLinear:           {"C": 1.0, "max_iter": 100},
	FamilyRidge:            {"alpha": 1.0},
	FamilyLasso:            {"alpha": 1.0},
	FamilyDecisionTree:     {"max_depth": 5, "min_samples_split": 2, "criterion": "gini"},
	FamilyKNN:              {"n_neighbors": 5, "weights": "uniform", "metric": "euclidean"},
	FamilySVM:              {"C": 1.0, "kernel": "rbf", "gamma": "scale"},
}

// ParseModelFamily validates a wire identifier
func ParseModelFamily(s string) (ModelFamily, error) {
	f := ModelFamily(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return "", core.ErrModelNotSelected
	}
	if _, ok := familyNames[f]; !ok {
		return "", fmt.Errorf("%w: unknown model family %q", core.ErrModelNotSelected, s)
	}
	return f, nil
}

// DisplayName returns the human label of the family
func (f ModelFamily) DisplayName() string {
	if n, ok := familyNames[f]; ok {
		return n
	}
	return string(f)
}

// DefaultHyperparameters returns a fresh copy of the family defaults
func DefaultHyperparameters(f ModelFamily) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range defaultHyperparameters[f] {
		out[k] = v
	}
	return out
}

// MergeHyperparameters overlays user values on the family defaults
func MergeHyperparameters(f ModelFamily, user map[string]interface{}) map[string]interface{} {
	out := DefaultHyperparameters(f)
	for k, v := range user {
		out[k] = v
	}
	return out
}
