package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache remembers revoked token ids until the tokens would have
// expired anyway
type TokenCache interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenCache struct {
	client *redis.Client
}

// NewTokenCache creates a revocation list backed by Redis
func NewTokenCache(client *redis.Client) TokenCache {
	return &tokenCache{client: client}
}

func (c *tokenCache) key(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

func (c *tokenCache) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return c.client.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *tokenCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(jti)).Result()
	return n > 0, err
}
