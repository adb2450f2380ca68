package errors

import (
	stderrors "errors"
	"net/http"

	"mlstudio/domain/core"
)

// CodeOf classifies err into one of the predefined codes. Domain sentinels
// take precedence over AppError codes found further down the chain.
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsColumnNotFound(err):
		return CodeNotFound
	case core.IsNoDataset(err):
		return CodeNoDataset
	case core.IsValidationError(err):
		return CodeValidationError
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// HTTPStatus maps an error to the status code the API answers with
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case "":
		return http.StatusOK
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNoDataset:
		return http.StatusConflict
	case CodeValidationError:
		return http.StatusUnprocessableEntity
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeExternalService:
		return http.StatusBadGateway
	case CodeConfigInvalid, CodeDatabaseError, CodeInternalError:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
