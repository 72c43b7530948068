package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionflow/internal/editor"
	"questionflow/internal/model"
	"questionflow/internal/service"
)

func serviceError(t *testing.T, err error) (int, ErrorResponse, string) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	rec := httptest.NewRecorder()
	writeServiceError(rec, logger, err)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec.Code, body, logs.String()
}

func TestWriteServiceError_ServerErrorsHideDetail(t *testing.T) {
	status, body, logs := serviceError(t, fmt.Errorf("%w: OnUpdate", editor.ErrMissingCallback))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, string(editor.CodeMissingCallback), body.Code)
	assert.Contains(t, logs, "OnUpdate", "detail stays in the log")
}

func TestWriteServiceError_UnmappedIsServerError(t *testing.T) {
	status, body, logs := serviceError(t, fmt.Errorf("%w: relabel", editor.ErrPartialCommit))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrorResponse{Error: "internal server error", Code: "SERVER_ERROR"}, body)
	assert.Contains(t, logs, "relabel")
}

func TestWriteServiceError_ClientErrorsKeepMessage(t *testing.T) {
	status, body, logs := serviceError(t, fmt.Errorf("%w: n9", model.ErrNodeNotFound))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NODE_NOT_FOUND", body.Code)
	assert.Contains(t, body.Error, "n9")
	assert.Empty(t, logs)

	status, body, _ = serviceError(t, service.ErrWrongRole)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "WRONG_ROLE", body.Code)
}

func TestWriteServiceError_ValidationIs422(t *testing.T) {
	d := editor.Resume(model.QuestionDraft{
		QuestionText: "Pick one",
		QuestionType: model.QuestionTypeRadio,
		Options:      []model.OptionRecord{{Text: "a"}, {Text: " "}},
	}, editor.DefaultPolicy)
	_, err := editor.Commit(d)
	require.Error(t, err)

	status, body, _ := serviceError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, string(editor.CodeInvalidOptions), body.Code)
	require.NotNil(t, body.Index)
	assert.Equal(t, 1, *body.Index)
}
