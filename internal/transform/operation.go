// Package transform implements the table cleaning and feature operations.
// Every operation is a pure function of a TableState; the caller commits the
// returned rows through the table store.
package transform

import (
	"strings"

	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
)

// Operation names as they appear on the wire
const (
	ActionDropColumn      = "drop_column"
	ActionFillMissing     = "fill_missing"
	ActionRemoveOutliers  = "remove_outliers"
	ActionDropMissingRows = "drop_missing_rows"
	ActionDropDuplicates  = "drop_duplicates"
	ActionCreateFeature   = "create_feature"
)

// Operation produces new rows from a table state without mutating it
type Operation interface {
	Name() string
	// Column is the column the operation targets, empty for table-wide operations
	Column() string
	Apply(state dataset.TableState) ([]dataset.Row, error)
}

// CleanRequest is the wire form of a cleaning action
type CleanRequest struct {
	Action     string `json:"action"`
	Column     string `json:"column,omitempty"`
	FillMethod string `json:"fill_method,omitempty"`
}

// FromRequest maps a cleaning request to its operation
func FromRequest(req CleanRequest) (Operation, error) {
	action := strings.ToLower(strings.TrimSpace(req.Action))
	switch action {
	case ActionDropColumn:
		return DropColumn{Target: req.Column}, nil
	case ActionFillMissing:
		method := FillMethod(strings.ToLower(strings.TrimSpace(req.FillMethod)))
		if method == "" {
			method = FillMean
		}
		return FillMissing{Target: req.Column, Method: method}, nil
	case ActionRemoveOutliers:
		return RemoveOutliers{Target: req.Column}, nil
	case ActionDropMissingRows:
		return DropMissingRows{}, nil
	case ActionDropDuplicates:
		return DropDuplicates{}, nil
	}
	return nil, core.NewOpError(req.Action, req.Column, core.ErrUnknownAction)
}

// lookup returns the profile for column or an OpError naming op
func lookup(state dataset.TableState, op, column string) (dataset.ColumnProfile, error) {
	profile, ok := state.Column(column)
	if !ok {
		return dataset.ColumnProfile{}, core.NewOpError(op, column, core.ErrColumnNotFound)
	}
	return profile, nil
}
