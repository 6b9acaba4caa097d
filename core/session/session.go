package session

import "time"

// Session represents an anonymous chat session issued by the session store.
// It is a temporary identity that lets a visitor use the chat before
// creating an account; its chat history is reassigned to the user on
// transfer.
type Session struct {
	// ID is the opaque unique identifier issued by the store.
	ID string

	// ExpiresAt is the absolute expiry instant. The session is invalid
	// strictly after it.
	ExpiresAt time.Time

	// Source is a free-text origin tag (e.g. "web", "cli"), set once at
	// creation and never mutated.
	Source string
}

// IsExpired reports whether the session is no longer valid. A session whose
// ExpiresAt equals the current instant is already invalid.
func (s Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}
