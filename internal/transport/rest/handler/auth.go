package handler

import (
	"context"
	"log/slog"
	"net/http"

	"questionflow/internal/model"
	"questionflow/internal/service"
	"questionflow/internal/transport/rest/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Login handles POST /v1/auth/login
// @Summary Log in as host or admin
// @Tags auth
// @Accept json
// @Produce json
// @Param body body model.LoginRequest true "credentials"
// @Success 200 {object} model.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("login", "host_id", resp.HostID, "role", resp.Role)
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout
// @Summary Revoke the caller's host token
// @Tags auth
// @Security Bearer
// @Success 200 {object} model.LogoutResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, h.authSvc.Logout)
}

// AdminLogout handles POST /v1/auth/admin-logout
// @Summary Revoke the caller's admin token
// @Tags auth
// @Security Bearer
// @Success 200 {object} model.LogoutResponse
// @Failure 403 {object} ErrorResponse
// @Router /auth/admin-logout [post]
func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.logout(w, r, h.authSvc.AdminLogout)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request, revoke func(ctx context.Context, token string) (*model.LogoutResponse, error)) {
	token := middleware.GetToken(r.Context())
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, model.LogoutResponse{
			Status:     "error",
			Message:    "missing authorization header",
			StatusCode: http.StatusUnauthorized,
			Error:      "missing authorization header",
		})
		return
	}

	resp, err := revoke(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Info("logout",
		"host_id", middleware.GetHostID(r.Context()),
		"role", middleware.GetRole(r.Context()))
	writeJSON(w, resp.StatusCode, resp)
}
