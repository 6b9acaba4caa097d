package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/coomb/chatkit/core/logger"
)

// DefaultSource is the origin tag used when no source is configured.
const DefaultSource = "web"

// Manager ensures that, while no authenticated principal exists, exactly one
// valid anonymous session id is available, reusing a cached one when still
// valid and creating a new one otherwise.
type Manager struct {
	store     Store
	cache     TokenCache
	source    string
	principal func() uuid.UUID
	logger    *slog.Logger

	// mu serializes resolutions so two concurrent Resolve calls cannot both
	// miss the cache and create two sessions.
	mu sync.Mutex
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSource sets the origin tag attached to created sessions.
func WithSource(source string) ManagerOption {
	return func(m *Manager) {
		if source != "" {
			m.source = source
		}
	}
}

// WithPrincipalSource wires a live view of the current principal, typically
// authstate.Subject.Current. Resolve rechecks it inside its critical section,
// so a resolution that started with a stale unauthenticated principal cannot
// create a session after a concurrent sign-in cleared the token cache.
func WithPrincipalSource(fn func() uuid.UUID) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.principal = fn
		}
	}
}

// WithManagerLogger sets the logger for resolution diagnostics.
// If not set, logging is disabled.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager over the given store and token cache.
func NewManager(store Store, cache TokenCache, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		cache:  cache,
		source: DefaultSource,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Resolve returns the anonymous session id for the current principal.
//
// When userID is non-nil (an authenticated principal exists) it returns ""
// immediately without touching the store or the cache: anonymous sessions
// are never resolved while authenticated, even if Resolve runs concurrently
// with an in-flight transfer.
//
// When unauthenticated, a cached id is revalidated against the store and
// reused if the session has not expired; any validation failure degrades to
// recreation, never surfaces to the caller. Only a failed creation is fatal
// for the resolution, reported as ErrSessionUnavailable.
func (m *Manager) Resolve(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID != uuid.Nil {
		return "", nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.authenticated() {
		return "", nil
	}

	if cached, err := m.cache.Get(ctx); err == nil && cached != "" {
		sess, err := m.store.Get(ctx, cached)
		if err == nil && !sess.IsExpired() {
			return cached, nil
		}
		// Unknown, expired, or unreachable: treat the cached id as invalid
		// and recreate.
		m.logger.DebugContext(ctx, "cached session invalid, recreating",
			logger.SessionID(cached), logger.Error(err))
		if err := m.cache.Clear(ctx); err != nil {
			m.logger.WarnContext(ctx, "failed to clear token cache", logger.Error(err))
		}
	}

	// A sign-in may have happened while validating: the subject swaps the
	// principal before the coordinator clears the cache, so an empty slot
	// after authentication must not be repopulated.
	if m.authenticated() {
		return "", nil
	}

	sess, err := m.store.Create(ctx, m.source)
	if err != nil {
		return "", errors.Join(ErrSessionUnavailable, err)
	}

	// The create call can outlast a sign-in too. Leave the orphaned session
	// to expire server-side rather than cache an id while authenticated.
	if m.authenticated() {
		return "", nil
	}

	if err := m.cache.Set(ctx, sess.ID); err != nil {
		// The session exists server-side; a cache write failure only costs
		// reuse after restart.
		m.logger.WarnContext(ctx, "failed to cache session id",
			logger.SessionID(sess.ID), logger.Error(err))
	}

	return sess.ID, nil
}

func (m *Manager) authenticated() bool {
	return m.principal != nil && m.principal() != uuid.Nil
}
