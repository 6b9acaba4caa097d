package session

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/coomb/chatkit/core/authstate"
	"github.com/coomb/chatkit/core/logger"
)

// Tracker wires the Manager and the Coordinator to authentication-state
// transitions and exposes the resulting reactive session state.
//
// Transitions are delivered by authstate.Subject synchronously and
// serialized, and the Tracker handles each one completely before the next
// begins: on sign-in the transfer runs first and only then is local state
// updated, so a session re-resolution can never race an in-flight transfer
// for the same context. On sign-out a fresh anonymous session is resolved.
type Tracker struct {
	subject     *authstate.Subject
	manager     *Manager
	coordinator *Coordinator
	logger      *slog.Logger

	mu           sync.Mutex
	sessionID    string
	lastTransfer Outcome

	unsubscribe func()
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithTrackerLogger sets the logger for lifecycle diagnostics.
// If not set, logging is disabled.
func WithTrackerLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker creates a Tracker and subscribes it to the subject. Call Start
// to resolve the initial session state, and Close to unsubscribe.
func NewTracker(subject *authstate.Subject, manager *Manager, coordinator *Coordinator, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		subject:     subject,
		manager:     manager,
		coordinator: coordinator,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.unsubscribe = subject.Subscribe(t.onTransition)
	return t
}

// Start resolves the session state for the current principal. For an
// unauthenticated context this loads or creates the anonymous session; for
// an authenticated one it is a no-op. Returns ErrSessionUnavailable when no
// session could be created; the caller should degrade to a sessionless
// experience rather than fail.
func (t *Tracker) Start(ctx context.Context) error {
	id, err := t.manager.Resolve(ctx, t.subject.Current())
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.sessionID = id
	t.mu.Unlock()
	return nil
}

// Close detaches the Tracker from the subject.
func (t *Tracker) Close() {
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
}

// SessionID returns the current anonymous session id, "" when none is
// active (authenticated, cleared, or unavailable).
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// IsAnonymous reports whether chat usage is currently backed by an
// anonymous session rather than an authenticated principal.
func (t *Tracker) IsAnonymous() bool {
	if t.subject.IsAuthenticated() {
		return false
	}
	return t.SessionID() != ""
}

// LastTransfer returns the outcome of the most recent sign-in transfer.
func (t *Tracker) LastTransfer() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTransfer
}

// ClearSession drops the anonymous session locally: the token cache slot is
// emptied and the reactive session id becomes "". The server-side session is
// left to expire on its own.
func (t *Tracker) ClearSession(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.manager.cache.Clear(ctx); err != nil {
		return err
	}
	t.sessionID = ""
	return nil
}

func (t *Tracker) onTransition(ctx context.Context, tr authstate.Transition) {
	switch {
	case tr.To != uuid.Nil:
		// Transfer strictly before any further session resolution. Covers
		// both sign-in and a direct user switch.
		outcome := t.coordinator.TransferOnAuth(ctx)
		t.mu.Lock()
		t.lastTransfer = outcome
		t.sessionID = ""
		t.mu.Unlock()
		t.logger.DebugContext(ctx, "auth transition handled",
			slog.String("outcome", outcome.Status.String()),
			logger.ChatID(outcome.ChatID))

	case tr.SignedOut():
		id, err := t.manager.Resolve(ctx, uuid.Nil)
		if err != nil {
			// Degrade to a sessionless anonymous experience.
			t.logger.WarnContext(ctx, "failed to resolve session after sign-out", logger.Error(err))
			id = ""
		}
		t.mu.Lock()
		t.sessionID = id
		t.mu.Unlock()
	}
}
