package session

import "context"

// Store defines the session backing service consumed by the Manager and the
// Coordinator. Implementations must handle concurrent access safely.
type Store interface {
	// Create issues a new anonymous session tagged with source.
	Create(ctx context.Context, source string) (Session, error)

	// Get fetches a session by id. Returns ErrNotFound when the session is
	// unknown or was discarded server-side.
	Get(ctx context.Context, id string) (Session, error)

	// Transfer reassigns the session's chat history to the authenticated
	// caller, exactly once. Returns the reassigned chat id, or "" when the
	// session had no chat yet. Fails with ErrNotFound, ErrExpired, or
	// ErrAlreadyTransferred.
	Transfer(ctx context.Context, id string) (chatID string, err error)
}
