package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"questionflow/internal/model"
	"questionflow/internal/service"
	"questionflow/internal/transport/rest/middleware"
)

// QuestionnaireHandler handles questionnaire and graph endpoints
type QuestionnaireHandler struct {
	svc    *service.QuestionnaireService
	logger *slog.Logger
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(svc *service.QuestionnaireService, logger *slog.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{svc: svc, logger: logger}
}

// QuestionnaireRequest is the body for create and metadata updates
type QuestionnaireRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AddNodeRequest places a node; a missing data creates an empty text question
type AddNodeRequest struct {
	Position model.Position          `json:"position"`
	Data     *model.QuestionNodeData `json:"data,omitempty"`
}

// Create handles POST /v1/questionnaires
// @Summary Create a questionnaire
// @Tags questionnaires
// @Security Bearer
// @Param body body QuestionnaireRequest true "metadata"
// @Success 201 {object} model.Questionnaire
// @Router /questionnaires [post]
func (h *QuestionnaireHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req QuestionnaireRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.svc.Create(r.Context(), hostID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// List handles GET /v1/questionnaires
// @Summary List the caller's questionnaires
// @Tags questionnaires
// @Security Bearer
// @Success 200 {object} map[string][]model.Questionnaire
// @Router /questionnaires [get]
func (h *QuestionnaireHandler) List(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := h.svc.List(r.Context(), hostID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if list == nil {
		list = []*model.Questionnaire{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questionnaires": list})
}

// Get handles GET /v1/questionnaires/{id}
// @Summary Load a questionnaire graph
// @Tags questionnaires
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Success 200 {object} model.Questionnaire
// @Failure 404 {object} ErrorResponse
// @Router /questionnaires/{id} [get]
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Get(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Update handles PUT /v1/questionnaires/{id}
// @Summary Change title and description
// @Tags questionnaires
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param body body QuestionnaireRequest true "metadata"
// @Success 200 {object} model.Questionnaire
// @Router /questionnaires/{id} [put]
func (h *QuestionnaireHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req QuestionnaireRequest
	if !decodeBody(w, r, &req) {
		return
	}

	q, err := h.svc.UpdateMeta(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["id"], req.Title, req.Description)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Delete handles DELETE /v1/questionnaires/{id}
// @Summary Delete a questionnaire
// @Tags questionnaires
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Success 204
// @Router /questionnaires/{id} [delete]
func (h *QuestionnaireHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddNode handles POST /v1/questionnaires/{id}/nodes
// @Summary Place a question node
// @Tags graph
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param body body AddNodeRequest true "node"
// @Success 201 {object} model.Node
// @Router /questionnaires/{id}/nodes [post]
func (h *QuestionnaireHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node, err := h.svc.AddNode(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["id"], req.Position, req.Data)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// MoveNode handles PUT /v1/questionnaires/{id}/nodes/{nodeId}/position
// @Summary Move a node on the canvas
// @Tags graph
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param nodeId path string true "node id"
// @Param body body model.Position true "position"
// @Success 204
// @Router /questionnaires/{id}/nodes/{nodeId}/position [put]
func (h *QuestionnaireHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos model.Position
	if !decodeBody(w, r, &pos) {
		return
	}

	vars := mux.Vars(r)
	if err := h.svc.MoveNode(r.Context(), middleware.GetHostID(r.Context()), vars["id"], vars["nodeId"], pos); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /v1/questionnaires/{id}/nodes/{nodeId}
// @Summary Delete a node and its edges
// @Tags graph
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param nodeId path string true "node id"
// @Success 204
// @Router /questionnaires/{id}/nodes/{nodeId} [delete]
func (h *QuestionnaireHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteNode(r.Context(), middleware.GetHostID(r.Context()), vars["id"], vars["nodeId"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddEdge handles POST /v1/questionnaires/{id}/edges
// @Summary Connect two nodes
// @Tags graph
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param body body model.Edge true "edge"
// @Success 201 {object} model.Edge
// @Router /questionnaires/{id}/edges [post]
func (h *QuestionnaireHandler) AddEdge(w http.ResponseWriter, r *http.Request) {
	var edge model.Edge
	if !decodeBody(w, r, &edge) {
		return
	}

	added, err := h.svc.AddEdge(r.Context(), middleware.GetHostID(r.Context()), mux.Vars(r)["id"], edge)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// DeleteEdge handles DELETE /v1/questionnaires/{id}/edges/{edgeId}
// @Summary Remove an edge
// @Tags graph
// @Security Bearer
// @Param id path string true "questionnaire id"
// @Param edgeId path string true "edge id"
// @Success 204
// @Router /questionnaires/{id}/edges/{edgeId} [delete]
func (h *QuestionnaireHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.svc.DeleteEdge(r.Context(), middleware.GetHostID(r.Context()), vars["id"], vars["edgeId"]); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
