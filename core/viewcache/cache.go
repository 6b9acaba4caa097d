package viewcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/coomb/chatkit/core/logger"
)

// ErrRefetch is returned when a mutation committed but the forced refetch of
// the affected view failed. The backing mutation is durable; only the local
// view may be stale.
var ErrRefetch = errors.New("viewcache: refetch after mutation failed")

// Fetcher loads the current value of a view from the backing store.
type Fetcher[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Snapshot is the immutable read result of a view.
type Snapshot[V any] struct {
	Data      V
	IsLoading bool
	Err       error
}

// Cache is a keyed cache-and-revalidate store: reads return cached data,
// mutations force a synchronous refetch of the affected key before they are
// considered complete. Each key owns a mutation lock, so mutate-then-refetch
// sequences never interleave for one key while distinct keys proceed
// concurrently.
type Cache[K comparable, V any] struct {
	mu     sync.Mutex
	views  map[K]*view[V]
	fetch  Fetcher[K, V]
	logger *slog.Logger
}

type view[V any] struct {
	// queueMu serializes every fetch, invalidation, and mutate-then-refetch
	// sequence for this key. A refetch therefore always observes all prior
	// committed mutations and can never clobber a newer result.
	queueMu sync.Mutex

	stateMu  sync.Mutex
	data     V
	err      error
	loaded   bool
	inflight bool
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithLogger sets the logger for fetch diagnostics.
// If not set, logging is disabled.
func WithLogger[K comparable, V any](logger *slog.Logger) Option[K, V] {
	return func(c *Cache[K, V]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache backed by the given fetcher.
func New[K comparable, V any](fetch Fetcher[K, V], opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		views:  make(map[K]*view[V]),
		fetch:  fetch,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache[K, V]) viewFor(key K) *view[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[key]
	if !ok {
		v = &view[V]{}
		c.views[key] = v
	}
	return v
}

// Get returns the view for key, fetching it on first access. Subsequent
// reads are served from cache until the key is invalidated or mutated.
// A failed fetch is not cached: the next Get retries.
func (c *Cache[K, V]) Get(ctx context.Context, key K) Snapshot[V] {
	v := c.viewFor(key)

	v.stateMu.Lock()
	if v.loaded {
		snap := Snapshot[V]{Data: v.data, Err: v.err}
		v.stateMu.Unlock()
		return snap
	}
	v.stateMu.Unlock()

	v.queueMu.Lock()
	defer v.queueMu.Unlock()

	// Another caller may have completed the fetch while we waited.
	v.stateMu.Lock()
	if v.loaded {
		snap := Snapshot[V]{Data: v.data, Err: v.err}
		v.stateMu.Unlock()
		return snap
	}
	v.stateMu.Unlock()

	return c.refetch(ctx, key, v)
}

// Peek returns the current state of the view without triggering a fetch.
// IsLoading is true while a first fetch is in flight.
func (c *Cache[K, V]) Peek(key K) Snapshot[V] {
	v := c.viewFor(key)
	v.stateMu.Lock()
	defer v.stateMu.Unlock()
	return Snapshot[V]{
		Data:      v.data,
		IsLoading: v.inflight && !v.loaded,
		Err:       v.err,
	}
}

// Invalidate forces a synchronous refetch of the key. On fetch failure the
// last known-good data is kept and the error is recorded on the view and
// returned.
func (c *Cache[K, V]) Invalidate(ctx context.Context, key K) error {
	v := c.viewFor(key)
	v.queueMu.Lock()
	defer v.queueMu.Unlock()
	return c.refetch(ctx, key, v).Err
}

// Update runs the backing mutation and, if it succeeds, refetches the key
// before returning, so a caller awaiting Update observes a consistent view.
// A mutation error is returned as-is and skips the refetch, leaving the view
// at its last known-good state. A refetch error after a committed mutation
// is wrapped in ErrRefetch.
func (c *Cache[K, V]) Update(ctx context.Context, key K, mutate func(ctx context.Context) error) error {
	v := c.viewFor(key)
	v.queueMu.Lock()
	defer v.queueMu.Unlock()

	if err := mutate(ctx); err != nil {
		return err
	}

	if snap := c.refetch(ctx, key, v); snap.Err != nil {
		return errors.Join(ErrRefetch, snap.Err)
	}
	return nil
}

// Forget drops the view for key entirely. The next Get starts from scratch.
func (c *Cache[K, V]) Forget(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, key)
}

// refetch must be called with v.queueMu held.
func (c *Cache[K, V]) refetch(ctx context.Context, key K, v *view[V]) Snapshot[V] {
	v.stateMu.Lock()
	v.inflight = true
	v.stateMu.Unlock()

	data, err := c.fetch(ctx, key)

	v.stateMu.Lock()
	defer v.stateMu.Unlock()
	v.inflight = false
	if err != nil {
		// Keep last known-good data; record the error for readers.
		v.err = err
		c.logger.DebugContext(ctx, "view fetch failed", slog.Any("key", key), logger.Error(err))
		return Snapshot[V]{Data: v.data, Err: err}
	}
	v.data = data
	v.err = nil
	v.loaded = true
	return Snapshot[V]{Data: data}
}
