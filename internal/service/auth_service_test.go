package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questionflow/internal/cache"
	"questionflow/internal/config"
	"questionflow/internal/model"
)

func newAuth(t *testing.T) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewAuthService(config.Default().Auth, cache.NewTokenCache(client)), s
}

func TestLogin_HostAndAdmin(t *testing.T) {
	auth, _ := newAuth(t)
	cfg := config.Default().Auth

	host, err := auth.Login(cfg.HostUsername, cfg.HostPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleHost, host.Role)
	assert.Equal(t, HostIDFor(cfg.HostUsername), host.HostID)
	assert.Greater(t, host.ExpiresAt, time.Now().Unix())

	admin, err := auth.Login(cfg.AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	_, err = auth.Login(cfg.HostUsername, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHostIDIsStable(t *testing.T) {
	assert.Equal(t, HostIDFor("alice"), HostIDFor("alice"))
	assert.NotEqual(t, HostIDFor("alice"), HostIDFor("bob"))
}

func TestValidateToken(t *testing.T) {
	auth, _ := newAuth(t)
	cfg := config.Default().Auth
	ctx := context.Background()

	resp, err := auth.Login(cfg.HostUsername, cfg.HostPassword)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.HostID, claims.HostID)
	assert.NotEmpty(t, claims.ID)

	_, err = auth.ValidateToken(ctx, resp.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewAuthService(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}, nil)
	_, err = other.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	auth, _ := newAuth(t)
	cfg := config.Default().Auth

	resp, err := auth.Login(cfg.HostUsername, cfg.HostPassword)
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(cfg.TokenTTL + time.Minute) }
	_, err = auth.ValidateToken(context.Background(), resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesToken(t *testing.T) {
	auth, _ := newAuth(t)
	cfg := config.Default().Auth
	ctx := context.Background()

	resp, err := auth.Login(cfg.HostUsername, cfg.HostPassword)
	require.NoError(t, err)

	out, err := auth.Logout(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, 200, out.StatusCode)

	_, err = auth.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "revoked tokens are rejected")

	_, err = auth.Logout(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RoleMustMatch(t *testing.T) {
	auth, _ := newAuth(t)
	cfg := config.Default().Auth
	ctx := context.Background()

	host, err := auth.Login(cfg.HostUsername, cfg.HostPassword)
	require.NoError(t, err)
	admin, err := auth.Login(cfg.AdminUsername, cfg.AdminPassword)
	require.NoError(t, err)

	_, err = auth.AdminLogout(ctx, host.Token)
	assert.ErrorIs(t, err, ErrWrongRole)
	_, err = auth.Logout(ctx, admin.Token)
	assert.ErrorIs(t, err, ErrWrongRole)

	out, err := auth.AdminLogout(ctx, admin.Token)
	require.NoError(t, err)
	assert.Equal(t, "Admin logged out successfully", out.Message)

	_, err = auth.ValidateToken(ctx, host.Token)
	assert.NoError(t, err, "host token unaffected by admin logout")
}
