package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"questionflow/internal/model"
	"questionflow/internal/service"
)

type contextKey string

const (
	HostIDKey contextKey = "hostId"
	RoleKey   contextKey = "role"
	TokenKey  contextKey = "token"
)

// TokenValidator is the part of the auth service the middleware needs
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.HostClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireHost validates the bearer token and accepts host and admin roles.
// Both roles author questionnaires under their own host id.
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return m.require(next, model.RoleHost, model.RoleAdmin)
}

// RequireAdmin accepts admin tokens only
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(next, model.RoleAdmin)
}

func (m *AuthMiddleware) require(next http.Handler, roles ...model.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r)
		if token == "" {
			unauthorized(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		claims, err := m.authSvc.ValidateToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				unauthorized(w, http.StatusUnauthorized, "invalid or expired token")
			} else {
				unauthorized(w, http.StatusServiceUnavailable, "token check unavailable")
			}
			return
		}
		if !hasRole(claims.Role, roles) {
			unauthorized(w, http.StatusForbidden, "role not allowed")
			return
		}

		ctx := context.WithValue(r.Context(), HostIDKey, claims.HostID)
		ctx = context.WithValue(ctx, RoleKey, claims.Role)
		ctx = context.WithValue(ctx, TokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func hasRole(role model.Role, allowed []model.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// GetHostID extracts host ID from context
func GetHostID(ctx context.Context) string {
	if v, ok := ctx.Value(HostIDKey).(string); ok {
		return v
	}
	return ""
}

// GetRole extracts the token role from context
func GetRole(ctx context.Context) model.Role {
	if v, ok := ctx.Value(RoleKey).(model.Role); ok {
		return v
	}
	return ""
}

// GetToken returns the raw bearer token the request was authenticated with
func GetToken(ctx context.Context) string {
	if v, ok := ctx.Value(TokenKey).(string); ok {
		return v
	}
	return ""
}

// ExtractBearerToken reads the token from an "Authorization: Bearer" header
func ExtractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "UNAUTHORIZED"})
}
