package authstate

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Transition describes a single change of the current principal.
// From and To are never equal; uuid.Nil means no authenticated user.
type Transition struct {
	From uuid.UUID
	To   uuid.UUID
}

// SignedIn reports whether the transition moved from anonymous to an
// authenticated principal.
func (t Transition) SignedIn() bool {
	return t.From == uuid.Nil && t.To != uuid.Nil
}

// SignedOut reports whether the transition moved from an authenticated
// principal back to anonymous.
func (t Transition) SignedOut() bool {
	return t.From != uuid.Nil && t.To == uuid.Nil
}

// Subscriber receives principal transitions. Subscribers are invoked
// synchronously, exactly once per transition, in subscription order; the
// second subscriber for a transition runs only after the first returned.
type Subscriber func(ctx context.Context, t Transition)

// Subject tracks the current authentication principal and notifies
// subscribers about transitions. It is the single source of truth for
// "who is signed in" consumed by the session manager and the transfer
// coordinator, replacing incidental scheduling order with an explicit
// ordering contract.
type Subject struct {
	// notifyMu serializes whole transitions: a Set call owns it from the
	// state swap until the last subscriber returned, so two overlapping
	// transitions can never interleave their notification passes.
	notifyMu sync.Mutex

	mu          sync.Mutex
	current     uuid.UUID
	subscribers []subscription
	nextID      int

	logger *slog.Logger
}

type subscription struct {
	id int
	fn Subscriber
}

// SubjectOption configures a Subject.
type SubjectOption func(*Subject)

// WithLogger sets the logger for transition diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) SubjectOption {
	return func(s *Subject) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSubject creates a Subject with no authenticated principal.
func NewSubject(opts ...SubjectOption) *Subject {
	s := &Subject{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the current principal, uuid.Nil when anonymous.
// Safe to call from within a Subscriber.
func (s *Subject) Current() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsAuthenticated reports whether an authenticated principal is present.
func (s *Subject) IsAuthenticated() bool {
	return s.Current() != uuid.Nil
}

// Subscribe registers fn for future transitions and returns an unsubscribe
// function. Subscription order defines notification order.
func (s *Subject) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Set updates the current principal. Subscribers are notified only when the
// principal actually changes, so polling the same value repeatedly produces
// no duplicate events. Overlapping Set calls are serialized: every subscriber
// observes one transition completely before the next transition begins.
func (s *Subject) Set(ctx context.Context, userID uuid.UUID) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.current == userID {
		s.mu.Unlock()
		return
	}
	t := Transition{From: s.current, To: userID}
	s.current = userID
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "principal changed",
		slog.String("from", t.From.String()),
		slog.String("to", t.To.String()),
	)

	for _, sub := range subs {
		sub.fn(ctx, t)
	}
}
