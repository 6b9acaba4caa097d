package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/coomb/chatkit/core/logger"
)

// OutcomeStatus classifies the result of a transfer attempt.
type OutcomeStatus int

const (
	// OutcomeNoSession means no cached session id existed; nothing to
	// transfer and no store call was made.
	OutcomeNoSession OutcomeStatus = iota

	// OutcomeTransferred means the session's chat history now belongs to
	// the authenticated user.
	OutcomeTransferred

	// OutcomeFailed means the transfer store call failed. The failure is
	// swallowed and never retried; the token cache is empty regardless.
	OutcomeFailed
)

// String implements fmt.Stringer.
func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeNoSession:
		return "no_session"
	case OutcomeTransferred:
		return "transferred"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the transient result of TransferOnAuth.
type Outcome struct {
	Status OutcomeStatus

	// ChatID is the reassigned chat id when Status is OutcomeTransferred.
	// Empty when the session had no chat yet; the chat is then created on
	// the user's next interaction.
	ChatID string
}

// Observer is notified about swallowed transfer failures. It must not
// retry the transfer; the no-retry behavior is part of the protocol.
type Observer func(ctx context.Context, err error)

// Coordinator moves ownership of an anonymous session's chat history to a
// newly authenticated user, exactly once per authentication event, and
// guarantees the token cache is left empty afterwards regardless of outcome.
type Coordinator struct {
	store    Store
	cache    TokenCache
	logger   *slog.Logger
	observer Observer

	// mu makes the read-transfer-clear sequence atomic with respect to
	// concurrent TransferOnAuth calls, e.g. a duplicate auth event.
	mu sync.Mutex
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithObserver registers a hook invoked with every swallowed transfer
// failure. The user-visible behavior (silent, no retry) is unchanged.
func WithObserver(fn Observer) CoordinatorOption {
	return func(c *Coordinator) {
		if fn != nil {
			c.observer = fn
		}
	}
}

// WithCoordinatorLogger sets the logger for transfer diagnostics.
// If not set, logging is disabled.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a Coordinator over the given store and token cache.
// The cache must be the same instance the Manager writes to.
func NewCoordinator(store Store, cache TokenCache, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:  store,
		cache:  cache,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TransferOnAuth attempts the one-time ownership transfer. It is invoked by
// the authentication flow after login or registration succeeds.
//
// With an empty cache slot it is a no-op returning OutcomeNoSession, so
// duplicate invocations are safe. Otherwise the store transfer is attempted
// and the cache slot is cleared unconditionally: success and failure both
// leave the slot empty, which is what makes the operation idempotent.
//
// A transfer failure is swallowed: the user's login must not be blocked by a
// best-effort data migration. Failures reach the configured Observer and the
// debug log only.
func (c *Coordinator) TransferOnAuth(ctx context.Context) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.cache.Get(ctx)
	if err != nil || id == "" {
		if err != nil && !errors.Is(err, ErrNotCached) {
			// A broken cache read means we cannot know the session id;
			// treat as nothing to transfer but surface it to the observer.
			c.observe(ctx, err)
		}
		return Outcome{Status: OutcomeNoSession}
	}

	chatID, transferErr := c.store.Transfer(ctx, id)

	// Guaranteed cleanup: the slot must never hold a stale id after a
	// transfer attempt, whichever way the store call went.
	if clearErr := c.cache.Clear(ctx); clearErr != nil {
		c.logger.WarnContext(ctx, "failed to clear token cache after transfer",
			logger.SessionID(id), logger.Error(clearErr))
	}

	if transferErr != nil {
		c.logger.DebugContext(ctx, "session transfer failed",
			logger.SessionID(id), logger.Error(transferErr))
		c.observe(ctx, transferErr)
		return Outcome{Status: OutcomeFailed}
	}

	c.logger.DebugContext(ctx, "session transferred",
		logger.SessionID(id), logger.ChatID(chatID))
	return Outcome{Status: OutcomeTransferred, ChatID: chatID}
}

func (c *Coordinator) observe(ctx context.Context, err error) {
	if c.observer != nil {
		c.observer(ctx, err)
	}
}
