package session

import (
	"context"
	"sync"
)

// TokenCache is the durable client-side slot holding the current anonymous
// session id. At most one value lives in the slot at any time; a present
// value does not guarantee the session is still valid server-side.
//
// The cache is an injected dependency rather than ambient global state so
// tests can substitute an in-memory fake and assert the read/write/clear
// sequence directly. Implementations share their storage mechanism with
// other client-side values (auth token, cached profile) and must namespace
// their key so writes never clobber sibling entries.
type TokenCache interface {
	// Get returns the cached session id, or ErrNotCached when the slot is
	// empty.
	Get(ctx context.Context) (string, error)

	// Set stores id in the slot, replacing any previous value.
	Set(ctx context.Context, id string) error

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear(ctx context.Context) error
}

// MemoryCache is an in-process TokenCache for tests and short-lived clients
// that do not need the slot to survive a restart.
type MemoryCache struct {
	mu sync.Mutex
	id string
}

// NewMemoryCache creates an empty in-memory token cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get implements TokenCache.
func (c *MemoryCache) Get(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		return "", ErrNotCached
	}
	return c.id, nil
}

// Set implements TokenCache.
func (c *MemoryCache) Set(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	return nil
}

// Clear implements TokenCache.
func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = ""
	return nil
}
