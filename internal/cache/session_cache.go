package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"questionflow/internal/model"
)

var (
	ErrSessionNotFound = errors.New("editor session not found or expired")
	ErrSessionBusy     = errors.New("editor session changed concurrently")
)

const maxUpdateAttempts = 5

// SessionCache stores open editor sessions. Get returns nil, nil for a
// missing session. Update is an optimistic read-modify-write: fn sees the
// current value and its error aborts the write.
type SessionCache interface {
	Set(ctx context.Context, session *model.EditorSession) error
	Get(ctx context.Context, id string) (*model.EditorSession, error)
	Update(ctx context.Context, id string, fn func(*model.EditorSession) error) (*model.EditorSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates an editor session cache; every write refreshes ttl
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) key(id string) string {
	return fmt.Sprintf("editor:%s", id)
}

func (c *sessionCache) Set(ctx context.Context, session *model.EditorSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.EditorSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.EditorSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Update(ctx context.Context, id string, fn func(*model.EditorSession) error) (*model.EditorSession, error) {
	key := c.key(id)
	var result *model.EditorSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		var session model.EditorSession
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return err
		}
		out, err := json.Marshal(&session)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, c.ttl)
			return nil
		})
		if err == nil {
			result = &session
		}
		return err
	}

	for i := 0; i < maxUpdateAttempts; i++ {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrSessionBusy
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
