package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"mlstudio/domain/core"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"nil", nil, http.StatusOK, ""},
		{"column not found", core.NewOpError("drop_column", "age", core.ErrColumnNotFound), http.StatusNotFound, CodeNotFound},
		{"no dataset", fmt.Errorf("undo: %w", core.ErrNoDataset), http.StatusConflict, CodeNoDataset},
		{"validation", core.NewOpError("remove_outliers", "sex", core.ErrNotNumeric), http.StatusUnprocessableEntity, CodeValidationError},
		{"bad input", InvalidInput("malformed body"), http.StatusBadRequest, CodeInvalidInput},
		{"external", ExternalServiceError("trainer", fmt.Errorf("refused")), http.StatusBadGateway, CodeExternalService},
		{"wrapped app error", fmt.Errorf("ctx: %w", DatabaseError("down")), http.StatusInternalServerError, CodeDatabaseError},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
			assert.Equal(t, tt.code, CodeOf(tt.err))
		})
	}
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(ConfigInvalid("PORT"), "loading")
	assert.Equal(t, CodeConfigInvalid, CodeOf(err))
	assert.EqualError(t, err, "loading: PORT")
	assert.Nil(t, Wrap(nil, "noop"))

	deep := Wrapf(fmt.Errorf("save: %w", DatabaseError("down")), "run %d", 7)
	assert.Equal(t, CodeDatabaseError, CodeOf(deep))
	assert.EqualError(t, deep, "run 7: save: down")

	assert.Equal(t, CodeInternalError, CodeOf(Wrap(fmt.Errorf("boom"), "ctx")))
}

func TestWithCodeRetags(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad csv"))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.EqualError(t, err, "bad csv")

	err = WithCode(CodeDatabaseError, NotFound("run r1"))
	assert.Equal(t, CodeDatabaseError, CodeOf(err))
	assert.EqualError(t, err, "run r1 not found")
	assert.Nil(t, WithCode(CodeInvalidInput, nil))
}
