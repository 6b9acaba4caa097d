package session

import "errors"

var (
	// ErrNotFound is returned by a Store when the session is unknown or was
	// already discarded server-side.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned by a Store when the session exists but is past
	// its expiry instant.
	ErrExpired = errors.New("session has expired")

	// ErrAlreadyTransferred is returned by a Store when the session's chat
	// history was already reassigned to a user.
	ErrAlreadyTransferred = errors.New("session already transferred")

	// ErrSessionUnavailable is returned by Manager.Resolve when no anonymous
	// session could be created. Chat features that require a session should
	// be disabled, not crashed.
	ErrSessionUnavailable = errors.New("anonymous session unavailable")

	// ErrNotCached is returned by a TokenCache when the slot is empty.
	ErrNotCached = errors.New("no session id cached")
)
