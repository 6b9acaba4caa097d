package chat

import "errors"

var (
	// ErrChatNotFound is returned when the referenced chat does not exist or
	// is not visible to the current principal.
	ErrChatNotFound = errors.New("chat: chat not found")

	// ErrStoreUnavailable marks transport or backend failures of the backing
	// store so callers can distinguish them from domain errors.
	ErrStoreUnavailable = errors.New("chat: store unavailable")
)
