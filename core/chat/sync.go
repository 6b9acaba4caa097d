package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/coomb/chatkit/core/logger"
	"github.com/coomb/chatkit/core/viewcache"
)

// chatListKey is the fixed collection key for the chat list view.
const chatListKey = "chats"

// Sync presents the chat list and per-chat message lists as cached views
// over a Store. Reads are served from cache; every mutation forces a
// synchronous refetch of the affected view before returning, so a caller
// awaiting a mutation never observes a stale view. Mutations on the same
// view key are strictly serialized; distinct keys proceed concurrently.
//
// The enabled gate models feature availability (for example anonymous
// browsing without a session): while it reports false, reads return empty
// snapshots, mutations return neutral zero values, and the Store is never
// called.
type Sync struct {
	store   Store
	enabled func() bool
	logger  *slog.Logger

	chats    *viewcache.Cache[string, []Chat]
	messages *viewcache.Cache[string, []Message]
}

// SyncOption configures a Sync.
type SyncOption func(*Sync)

// WithEnabled sets the feature gate. The function is consulted on every
// operation, so the gate may flip at runtime (for example when a session
// appears or the user signs out). If not set, the feature is always enabled.
func WithEnabled(fn func() bool) SyncOption {
	return func(s *Sync) {
		if fn != nil {
			s.enabled = fn
		}
	}
}

// WithSyncLogger sets the logger for fetch diagnostics.
// If not set, logging is disabled.
func WithSyncLogger(logger *slog.Logger) SyncOption {
	return func(s *Sync) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSync creates a Sync over the given store.
func NewSync(store Store, opts ...SyncOption) *Sync {
	s := &Sync{
		store:   store,
		enabled: func() bool { return true },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.chats = viewcache.New(func(ctx context.Context, _ string) ([]Chat, error) {
		return s.store.ListChats(ctx)
	}, viewcache.WithLogger[string, []Chat](s.logger))

	s.messages = viewcache.New(func(ctx context.Context, chatID string) ([]Message, error) {
		return s.store.ListMessages(ctx, chatID)
	}, viewcache.WithLogger[string, []Message](s.logger))

	return s
}

// Chats returns the chat list view, fetching it on first access.
// While the feature is disabled it returns an empty snapshot without
// touching the store.
func (s *Sync) Chats(ctx context.Context) viewcache.Snapshot[[]Chat] {
	if !s.enabled() {
		return viewcache.Snapshot[[]Chat]{}
	}
	return s.chats.Get(ctx, chatListKey)
}

// Messages returns the message list view for chatID, fetching it on first
// access. While the feature is disabled it returns an empty snapshot without
// touching the store.
func (s *Sync) Messages(ctx context.Context, chatID string) viewcache.Snapshot[[]Message] {
	if !s.enabled() || chatID == "" {
		return viewcache.Snapshot[[]Message]{}
	}
	return s.messages.Get(ctx, chatID)
}

// CreateChat creates a chat and refetches the chat list before returning.
// A store failure leaves the list at its last known-good state and is
// returned to the caller.
func (s *Sync) CreateChat(ctx context.Context, params CreateChatParams) (Chat, error) {
	if !s.enabled() {
		return Chat{}, nil
	}

	var created Chat
	err := s.chats.Update(ctx, chatListKey, func(ctx context.Context) error {
		c, err := s.store.CreateChat(ctx, params)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	return created, err
}

// UpdateChatTitle renames a chat and refetches the chat list before
// returning.
func (s *Sync) UpdateChatTitle(ctx context.Context, chatID string, params UpdateTitleParams) (Chat, error) {
	if !s.enabled() || chatID == "" {
		return Chat{}, nil
	}

	var updated Chat
	err := s.chats.Update(ctx, chatListKey, func(ctx context.Context) error {
		c, err := s.store.UpdateChatTitle(ctx, chatID, params)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	return updated, err
}

// DeleteChat removes a chat, refetches the chat list and drops the chat's
// message view. The message view is dropped whenever the delete committed,
// even if the list refetch afterwards failed.
func (s *Sync) DeleteChat(ctx context.Context, chatID string) error {
	if !s.enabled() || chatID == "" {
		return nil
	}

	err := s.chats.Update(ctx, chatListKey, func(ctx context.Context) error {
		return s.store.DeleteChat(ctx, chatID)
	})
	if err == nil || errors.Is(err, viewcache.ErrRefetch) {
		s.messages.Forget(chatID)
	}
	if errors.Is(err, viewcache.ErrRefetch) {
		s.logger.DebugContext(ctx, "chat list stale after delete",
			logger.ChatID(chatID), logger.Error(err))
	}
	return err
}

// CreateMessage appends a message to the chat and refetches the chat's
// message view before returning, so a subsequent read includes the new
// message.
func (s *Sync) CreateMessage(ctx context.Context, chatID string, params CreateMessageParams) (Message, error) {
	if !s.enabled() || chatID == "" {
		return Message{}, nil
	}

	var created Message
	err := s.messages.Update(ctx, chatID, func(ctx context.Context) error {
		m, err := s.store.CreateMessage(ctx, chatID, params)
		if err != nil {
			return err
		}
		created = m
		return nil
	})
	return created, err
}

// SearchMessages queries the chat's messages. Search is read-only: it never
// touches the cached message view and its results are not cached.
func (s *Sync) SearchMessages(ctx context.Context, chatID string, params SearchParams) ([]Message, error) {
	if !s.enabled() || chatID == "" {
		return nil, nil
	}
	return s.store.SearchMessages(ctx, chatID, params)
}

// InvalidateChats forces a synchronous refetch of the chat list. Callers
// use it after an ownership change, for example when a transfer completes.
func (s *Sync) InvalidateChats(ctx context.Context) error {
	if !s.enabled() {
		return nil
	}
	return s.chats.Invalidate(ctx, chatListKey)
}

// InvalidateMessages forces a synchronous refetch of the chat's message view.
func (s *Sync) InvalidateMessages(ctx context.Context, chatID string) error {
	if !s.enabled() || chatID == "" {
		return nil
	}
	return s.messages.Invalidate(ctx, chatID)
}
