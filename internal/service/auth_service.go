package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"questionflow/internal/cache"
	"questionflow/internal/config"
	"questionflow/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongRole          = errors.New("token role not allowed for this operation")
)

// AuthService issues, validates and revokes editor tokens
type AuthService struct {
	cfg       config.AuthConfig
	jwtSecret []byte
	tokens    cache.TokenCache
	now       func() time.Time
}

// NewAuthService creates a new auth service. tokens may be nil, in which
// case logout cannot revoke anything.
func NewAuthService(cfg config.AuthConfig, tokens cache.TokenCache) *AuthService {
	return &AuthService{
		cfg:       cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		tokens:    tokens,
		now:       time.Now,
	}
}

// HostIDFor derives a stable host id from a username so a host sees the
// same questionnaires after every login
func HostIDFor(username string) string {
	return "host_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(username)).String()[:8]
}

// Login validates credentials and returns a signed token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	var role model.Role
	switch {
	case username == s.cfg.HostUsername && password == s.cfg.HostPassword:
		role = model.RoleHost
	case s.cfg.AdminUsername != "" && username == s.cfg.AdminUsername && password == s.cfg.AdminPassword:
		role = model.RoleAdmin
	default:
		return nil, ErrInvalidCredentials
	}

	hostID := HostIDFor(username)
	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)

	claims := &model.HostClaims{
		HostID: hostID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   hostID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     tokenString,
		HostID:    hostID,
		Role:      role,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// ValidateToken parses a token and rejects revoked ones
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*model.HostClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.HostClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.HostClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Logout revokes a host token
func (s *AuthService) Logout(ctx context.Context, tokenString string) (*model.LogoutResponse, error) {
	return s.revoke(ctx, tokenString, model.RoleHost, "Logged out successfully")
}

// AdminLogout revokes an admin token
func (s *AuthService) AdminLogout(ctx context.Context, tokenString string) (*model.LogoutResponse, error) {
	return s.revoke(ctx, tokenString, model.RoleAdmin, "Admin logged out successfully")
}

func (s *AuthService) revoke(ctx context.Context, tokenString string, role model.Role, message string) (*model.LogoutResponse, error) {
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Role != role {
		return nil, ErrWrongRole
	}
	if s.tokens != nil {
		if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return nil, fmt.Errorf("revoke token: %w", err)
		}
	}
	return &model.LogoutResponse{
		Status:     "success",
		Message:    message,
		StatusCode: http.StatusOK,
		Data:       map[string]string{"hostId": claims.HostID},
	}, nil
}
