package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"questionflow/internal/cache"
	"questionflow/internal/editor"
	"questionflow/internal/model"
	"questionflow/internal/repository"
	"questionflow/internal/service"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// errorMapping pairs a sentinel with its HTTP status and error code
type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{model.ErrNodeNotFound, http.StatusNotFound, "NODE_NOT_FOUND"},
	{model.ErrEdgeNotFound, http.StatusNotFound, "EDGE_NOT_FOUND"},
	{cache.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
	{service.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrSessionForbidden, http.StatusForbidden, "FORBIDDEN"},
	{service.ErrWrongRole, http.StatusForbidden, "WRONG_ROLE"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
	{repository.ErrVersionConflict, http.StatusConflict, "VERSION_CONFLICT"},
	{cache.ErrSessionBusy, http.StatusConflict, "SESSION_BUSY"},
	{service.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{model.ErrInvalidHandle, http.StatusBadRequest, "INVALID_HANDLE"},
	{model.ErrDuplicateEdge, http.StatusBadRequest, "DUPLICATE_EDGE"},
	{model.ErrSelfLoop, http.StatusBadRequest, "SELF_LOOP"},
	{editor.ErrInvalidScore, http.StatusBadRequest, "INVALID_SCORE"},
	{editor.ErrOptionIndex, http.StatusBadRequest, "OPTION_INDEX"},
	{editor.ErrUnknownField, http.StatusBadRequest, "UNKNOWN_FIELD"},
	{editor.ErrUnknownQuestionType, http.StatusBadRequest, "UNKNOWN_QUESTION_TYPE"},
	{editor.ErrOptionsUnsupported, http.StatusBadRequest, "OPTIONS_UNSUPPORTED"},
	{editor.ErrMissingCallback, http.StatusInternalServerError, string(editor.CodeMissingCallback)},
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps a service error to a status and error body.
// Server errors, mapped or not, are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *editor.ValidationError
	if errors.As(err, &verr) {
		resp := ErrorResponse{Error: verr.Message, Code: string(verr.Code), Field: verr.Field}
		if verr.Index >= 0 {
			idx := verr.Index
			resp.Index = &idx
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := err.Error()
			if m.status >= http.StatusInternalServerError {
				logger.Error("request failed", "code", m.code, "error", err)
				message = "internal server error"
			}
			writeJSON(w, m.status, ErrorResponse{Error: message, Code: m.code})
			return
		}
	}

	logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "SERVER_ERROR"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
