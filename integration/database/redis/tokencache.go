package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/coomb/chatkit/core/session"
)

// Compile-time check that TokenCache implements the session cache contract.
var _ session.TokenCache = (*TokenCache)(nil)

// tokenKeyPrefix namespaces the session slot so it cannot collide with
// other values (auth tokens, cached profiles) sharing the same Redis.
const tokenKeyPrefix = "coomb:anon_session:"

// redisCommands is the subset of the go-redis client the cache needs.
// Tests substitute a fake built from redis.NewStringResult and friends.
type redisCommands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TokenCache is a Redis-backed session.TokenCache: one durable slot per
// client holding the current anonymous session id. It serves browserless
// clients (CLI, bots) that have no local storage of their own.
type TokenCache struct {
	client redisCommands
	key    string
	ttl    time.Duration
}

// TokenCacheOption configures a TokenCache.
type TokenCacheOption func(*TokenCache)

// WithTokenTTL bounds how long an unused slot survives. Zero, the default,
// keeps the slot until cleared; the session's own expiry still governs
// whether the cached id is usable.
func WithTokenTTL(ttl time.Duration) TokenCacheOption {
	return func(c *TokenCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewTokenCache creates a token cache for the given client id.
func NewTokenCache(client redisCommands, clientID string, opts ...TokenCacheOption) (*TokenCache, error) {
	if clientID == "" {
		return nil, fmt.Errorf("redis: token cache requires a client id")
	}
	c := &TokenCache{
		client: client,
		key:    tokenKeyPrefix + clientID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached session id, or session.ErrNotCached when the slot
// is empty.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	id, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrNotCached
	}
	if err != nil {
		return "", fmt.Errorf("redis: failed to read session slot: %w", err)
	}
	if id == "" {
		return "", session.ErrNotCached
	}
	return id, nil
}

// Set stores the session id in the slot.
func (c *TokenCache) Set(ctx context.Context, id string) error {
	if err := c.client.Set(ctx, c.key, id, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to write session slot: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an already empty slot is not an error.
func (c *TokenCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis: failed to clear session slot: %w", err)
	}
	return nil
}
