// Package errors carries a machine-readable code alongside an error so the
// API and CLI can classify failures without string matching. Domain
// sentinels from core are classified by CodeOf; everything else is tagged
// at the adapter boundary with one of the constructors below.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Codes reported in the API error envelope
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeNoDataset       = "NO_DATASET"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// AppError is an error tagged with one of the codes above
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError without a cause
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap prefixes err with message. The code of the nearest AppError in the
// chain is kept; untagged errors become internal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode retags err without changing its message
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string) *AppError {
	return New(CodeDatabaseError, message)
}

// NotFound reports a missing run, demo or similar named resource
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

// ExternalServiceError tags a failure of the trainer or a dataset download
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{Code: CodeExternalService, Message: service + " service error", Cause: cause}
}

// InvalidInput is a malformed request, answered with 400
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
