package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"questionflow/internal/editor"
	"questionflow/internal/model"
	"questionflow/internal/service"
	"questionflow/internal/transport/rest/middleware"
)

// EditorHandler handles editor session endpoints
type EditorHandler struct {
	svc    *service.EditorService
	logger *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(svc *service.EditorService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{svc: svc, logger: logger}
}

// QuestionTextRequest sets the question text
type QuestionTextRequest struct {
	QuestionText string `json:"questionText"`
}

// QuestionTypeRequest sets the question type
type QuestionTypeRequest struct {
	QuestionType model.QuestionType `json:"questionType"`
}

// RequiredRequest sets the required flag
type RequiredRequest struct {
	IsRequired bool `json:"isRequired"`
}

// UpdateOptionRequest replaces one field of one option. Value is always a
// string so partial score input such as "0." is preserved.
type UpdateOptionRequest struct {
	Field editor.OptionField `json:"field"`
	Value string             `json:"value"`
}

// RemoveOptionResponse reports whether the draft accepted the removal
type RemoveOptionResponse struct {
	Session *model.EditorSession `json:"session"`
	Removed bool                 `json:"removed"`
}

// Open handles POST /v1/questionnaires/{id}/nodes/{nodeId}/editor
// @Summary Open an editor session on a node
// @Tags editor
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param nodeId path string true "node id"
// @Success 201 {object} model.EditorSession
// @Router /questionnaires/{id}/nodes/{nodeId}/editor [post]
func (h *EditorHandler) Open(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	es, err := h.svc.Open(r.Context(), middleware.GetHostID(r.Context()), vars["id"], vars["nodeId"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, es)
}

// Get handles GET /v1/editor/{sessionId}
// @Summary Read an open editor session
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId} [get]
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	es, err := h.svc.Get(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"])
	h.respond(w, es, err)
}

// SetQuestionText handles PUT /v1/editor/{sessionId}/question
// @Summary Set the question text
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Param body body QuestionTextRequest true "text"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId}/question [put]
func (h *EditorHandler) SetQuestionText(w http.ResponseWriter, r *http.Request) {
	var req QuestionTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	es, err := h.svc.SetQuestionText(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"], req.QuestionText)
	h.respond(w, es, err)
}

// SetQuestionType handles PUT /v1/editor/{sessionId}/type
// @Summary Change the question type
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Param body body QuestionTypeRequest true "type"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId}/type [put]
func (h *EditorHandler) SetQuestionType(w http.ResponseWriter, r *http.Request) {
	var req QuestionTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	es, err := h.svc.SetQuestionType(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"], req.QuestionType)
	h.respond(w, es, err)
}

// SetRequired handles PUT /v1/editor/{sessionId}/required
// @Summary Set the required flag
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Param body body RequiredRequest true "flag"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId}/required [put]
func (h *EditorHandler) SetRequired(w http.ResponseWriter, r *http.Request) {
	var req RequiredRequest
	if !decodeBody(w, r, &req) {
		return
	}
	es, err := h.svc.SetRequired(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"], req.IsRequired)
	h.respond(w, es, err)
}

// AddOption handles POST /v1/editor/{sessionId}/options
// @Summary Append an empty option
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId}/options [post]
func (h *EditorHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	es, err := h.svc.AddOption(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"])
	h.respond(w, es, err)
}

// UpdateOption handles PUT /v1/editor/{sessionId}/options/{index}
// @Summary Set the text, score or annotation of one option
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Param index path int true "option index"
// @Param body body UpdateOptionRequest true "field and value"
// @Success 200 {object} model.EditorSession
// @Router /editor/{sessionId}/options/{index} [put]
func (h *EditorHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	index, ok := optionIndex(w, r)
	if !ok {
		return
	}
	var req UpdateOptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	es, err := h.svc.UpdateOption(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"], index, req.Field, req.Value)
	h.respond(w, es, err)
}

// RemoveOption handles DELETE /v1/editor/{sessionId}/options/{index}
// @Summary Remove one option; the last option is never removed
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Param index path int true "option index"
// @Success 200 {object} RemoveOptionResponse
// @Router /editor/{sessionId}/options/{index} [delete]
func (h *EditorHandler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	index, ok := optionIndex(w, r)
	if !ok {
		return
	}
	es, removed, err := h.svc.RemoveOption(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"], index)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveOptionResponse{Session: es, Removed: removed})
}

// Commit handles POST /v1/editor/{sessionId}/commit
// @Summary Validate the draft and save it into the questionnaire
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Success 200 {object} service.CommitResult
// @Failure 422 {object} ErrorResponse
// @Router /editor/{sessionId}/commit [post]
func (h *EditorHandler) Commit(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Commit(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Cancel handles POST /v1/editor/{sessionId}/cancel
// @Summary Discard the draft
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Success 204
// @Router /editor/{sessionId}/cancel [post]
func (h *EditorHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /v1/editor/{sessionId}
// @Summary Delete the node being edited
// @Tags editor
// @Security Bearer
// @Param sessionId path string true "session id"
// @Success 204
// @Router /editor/{sessionId} [delete]
func (h *EditorHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EditorHandler) respond(w http.ResponseWriter, es *model.EditorSession, err error) {
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, es)
}

func optionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "option index must be an integer", Code: "OPTION_INDEX"})
		return 0, false
	}
	return index, true
}
