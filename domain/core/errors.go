package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lookup errors
	ErrColumnNotFound = errors.New("column not found")
	ErrNoDataset      = errors.New("no dataset loaded")

	// Transform errors
	ErrNotNumeric             = errors.New("column is not numeric")
	ErrNoFillValueAvailable   = errors.New("no fill value available")
	ErrDuplicateColumnName    = errors.New("column name already exists")
	ErrUnknownColumnReference = errors.New("formula references unknown column")
	ErrInvalidFormula         = errors.New("invalid formula")
	ErrUnknownFillMethod      = errors.New("unknown fill method")
	ErrUnknownAction          = errors.New("unknown cleaning action")
	ErrInvalidColumnName      = errors.New("invalid column name")

	// Analysis errors
	ErrInvalidHistogramOptions = errors.New("histogram options out of range")

	// Training request errors
	ErrTargetNotSet       = errors.New("target column not set")
	ErrNoFeaturesSelected = errors.New("no features selected")
	ErrModelNotSelected   = errors.New("model not selected")
	ErrInvalidSplit       = errors.New("train fraction must be between 0 and 1")
	ErrInvalidTaskType    = errors.New("invalid task type")
)

// OpError records the operation and column an error occurred on.
type OpError struct {
	Op     string
	Column string
	Err    error
}

func (e *OpError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Column, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err with the operation name and offending column
func NewOpError(op, column string, err error) error {
	return &OpError{Op: op, Column: column, Err: err}
}

// Error checking helpers
func IsColumnNotFound(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

func IsNoDataset(err error) bool {
	return errors.Is(err, ErrNoDataset)
}

// IsValidationError reports whether err is a local validation failure that
// left the table untouched.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrNotNumeric,
		ErrNoFillValueAvailable,
		ErrDuplicateColumnName,
		ErrUnknownColumnReference,
		ErrInvalidFormula,
		ErrUnknownFillMethod,
		ErrUnknownAction,
		ErrInvalidColumnName,
		ErrInvalidHistogramOptions,
		ErrTargetNotSet,
		ErrNoFeaturesSelected,
		ErrModelNotSelected,
		ErrInvalidSplit,
		ErrInvalidTaskType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
