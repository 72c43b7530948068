package model

import "github.com/golang-jwt/jwt/v5"

// Role distinguishes questionnaire authors from administrators
type Role string

const (
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// HostClaims are JWT claims for editor authentication
type HostClaims struct {
	HostID string `json:"hostId"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token     string `json:"token"`
	HostID    string `json:"hostId"`
	Role      Role   `json:"role"`
	ExpiresAt int64  `json:"expiresAt"`
}

// LogoutResponse is the envelope returned by logout and admin logout
type LogoutResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}
