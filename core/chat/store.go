package chat

import "context"

// Store is the backing chat/message service. Implementations include the
// HTTP API client and the Postgres store; tests substitute a mock.
type Store interface {
	// ListChats returns all chats visible to the current principal.
	ListChats(ctx context.Context) ([]Chat, error)

	// CreateChat creates a new chat and returns it.
	CreateChat(ctx context.Context, params CreateChatParams) (Chat, error)

	// UpdateChatTitle renames a chat and returns the updated record.
	// Returns ErrChatNotFound when the chat does not exist.
	UpdateChatTitle(ctx context.Context, chatID string, params UpdateTitleParams) (Chat, error)

	// DeleteChat removes a chat and all of its messages.
	// Returns ErrChatNotFound when the chat does not exist.
	DeleteChat(ctx context.Context, chatID string) error

	// ListMessages returns the chat's messages in creation order.
	ListMessages(ctx context.Context, chatID string) ([]Message, error)

	// CreateMessage appends a message to the chat and returns it.
	CreateMessage(ctx context.Context, chatID string, params CreateMessageParams) (Message, error)

	// SearchMessages returns the chat's messages matching the query.
	SearchMessages(ctx context.Context, chatID string, params SearchParams) ([]Message, error)
}
