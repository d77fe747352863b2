package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symbolduel/internal/model"
)

func TestWriteErrorMapsModelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
		{model.ErrRoomExists, http.StatusConflict, CodeDuplicateRoomID},
		{model.ErrRoomFull, http.StatusConflict, CodeRoomFull},
		{model.ErrAlreadyJoined, http.StatusConflict, CodeAlreadyJoined},
		{model.ErrMissingIdentifier, http.StatusBadRequest, CodeMissingIdentifier},
		{model.ErrNotInRoom, http.StatusForbidden, CodeNotInRoom},
		{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound},
		{model.ErrUsernameExists, http.StatusConflict, CodeUsernameExists},
		{fmt.Errorf("%w: timeout", model.ErrJudgeUnavailable), http.StatusBadGateway, CodeJudgeUnavailable},
		{NewInvalidRequestError("bad body"), http.StatusBadRequest, CodeInvalidRequest},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection refused"))

	assert.NotContains(t, rr.Body.String(), "redis")
}
