package chat_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coomb/chatkit/core/chat"
	"github.com/coomb/chatkit/core/viewcache"
)

// memStore is an in-memory chat.Store recording per-operation call counts
// and supporting injected failures.
type memStore struct {
	mu       sync.Mutex
	chats    []chat.Chat
	messages map[string][]chat.Message
	calls    map[string]int
	fail     map[string]error
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		messages: make(map[string][]chat.Message),
		calls:    make(map[string]int),
		fail:     make(map[string]error),
	}
}

func (s *memStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *memStore) failWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, op)
		return
	}
	s.fail[op] = err
}

func (s *memStore) enter(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.fail[op]
}

func (s *memStore) ListChats(_ context.Context) ([]chat.Chat, error) {
	if err := s.enter("ListChats"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Chat, len(s.chats))
	copy(out, s.chats)
	return out, nil
}

func (s *memStore) CreateChat(_ context.Context, params chat.CreateChatParams) (chat.Chat, error) {
	if err := s.enter("CreateChat"); err != nil {
		return chat.Chat{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := chat.Chat{ID: fmt.Sprintf("chat-%d", s.nextID), Title: params.Title}
	s.chats = append(s.chats, c)
	return c, nil
}

func (s *memStore) UpdateChatTitle(_ context.Context, chatID string, params chat.UpdateTitleParams) (chat.Chat, error) {
	if err := s.enter("UpdateChatTitle"); err != nil {
		return chat.Chat{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats[i].Title = params.Title
			return s.chats[i], nil
		}
	}
	return chat.Chat{}, chat.ErrChatNotFound
}

func (s *memStore) DeleteChat(_ context.Context, chatID string) error {
	if err := s.enter("DeleteChat"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.chats {
		if s.chats[i].ID == chatID {
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			delete(s.messages, chatID)
			return nil
		}
	}
	return chat.ErrChatNotFound
}

func (s *memStore) ListMessages(_ context.Context, chatID string) ([]chat.Message, error) {
	if err := s.enter("ListMessages"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.messages[chatID]))
	copy(out, s.messages[chatID])
	return out, nil
}

func (s *memStore) CreateMessage(_ context.Context, chatID string, params chat.CreateMessageParams) (chat.Message, error) {
	if err := s.enter("CreateMessage"); err != nil {
		return chat.Message{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m := chat.Message{
		ID:        fmt.Sprintf("msg-%d", s.nextID),
		ChatID:    chatID,
		Role:      params.Role,
		Content:   params.Content,
		PDFURL:    params.PDFURL,
		CreatedAt: time.Now(),
	}
	s.messages[chatID] = append(s.messages[chatID], m)
	return m, nil
}

func (s *memStore) SearchMessages(_ context.Context, chatID string, params chat.SearchParams) ([]chat.Message, error) {
	if err := s.enter("SearchMessages"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chat.Message
	for _, m := range s.messages[chatID] {
		if params.Query == "" || strings.Contains(strings.ToLower(m.Content), strings.ToLower(params.Query)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func TestSyncChats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fetches once and serves from cache", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		_, err := store.CreateChat(ctx, chat.CreateChatParams{Title: "resume review"})
		require.NoError(t, err)
		sync := chat.NewSync(store)

		snap := sync.Chats(ctx)
		require.NoError(t, snap.Err)
		require.Len(t, snap.Data, 1)
		assert.Equal(t, "resume review", snap.Data[0].Title)

		sync.Chats(ctx)
		sync.Chats(ctx)
		assert.Equal(t, 1, store.count("ListChats"))
	})

	t.Run("create refetches the list before returning", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)

		created, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "cover letter"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		snap := sync.Chats(ctx)
		require.NoError(t, snap.Err)
		require.Len(t, snap.Data, 1)
		assert.Equal(t, created.ID, snap.Data[0].ID)
		// The refetch happened inside CreateChat, not on the read.
		assert.Equal(t, 1, store.count("ListChats"))
	})

	t.Run("rename refetches the list", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)
		created, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "draft"})
		require.NoError(t, err)

		updated, err := sync.UpdateChatTitle(ctx, created.ID, chat.UpdateTitleParams{Title: "final"})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)

		snap := sync.Chats(ctx)
		require.Len(t, snap.Data, 1)
		assert.Equal(t, "final", snap.Data[0].Title)
	})
}

func TestSyncMessages(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create message is visible to the next read", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)
		c, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
		require.NoError(t, err)

		// Prime the view so the mutation refetches rather than first-loads.
		require.NoError(t, sync.Messages(ctx, c.ID).Err)

		msg, err := sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{
			Role:    chat.RoleUser,
			Content: "hello",
		})
		require.NoError(t, err)

		snap := sync.Messages(ctx, c.ID)
		require.NoError(t, snap.Err)
		require.Len(t, snap.Data, 1)
		assert.Equal(t, msg.ID, snap.Data[0].ID)
		// Initial load plus the forced refetch; the read after was cached.
		assert.Equal(t, 2, store.count("ListMessages"))
	})

	t.Run("mutation failure keeps last known-good view", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)
		c, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
		require.NoError(t, err)
		_, err = sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{Role: chat.RoleUser, Content: "first"})
		require.NoError(t, err)

		storeErr := errors.New("backend down")
		store.failWith("CreateMessage", storeErr)
		listCalls := store.count("ListMessages")

		_, err = sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{Role: chat.RoleUser, Content: "second"})
		require.ErrorIs(t, err, storeErr)

		// Failed mutation skips the refetch and the view still holds the
		// committed message.
		assert.Equal(t, listCalls, store.count("ListMessages"))
		snap := sync.Messages(ctx, c.ID)
		require.Len(t, snap.Data, 1)
		assert.Equal(t, "first", snap.Data[0].Content)
	})

	t.Run("refetch failure after commit is reported distinctly", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)
		c, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
		require.NoError(t, err)
		require.NoError(t, sync.Messages(ctx, c.ID).Err)

		store.failWith("ListMessages", errors.New("timeout"))
		_, err = sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{Role: chat.RoleUser, Content: "hello"})
		require.ErrorIs(t, err, viewcache.ErrRefetch)

		// The message is durable server-side even though the view is stale.
		assert.Equal(t, 1, store.count("CreateMessage"))
	})

	t.Run("delete chat drops its message view", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		sync := chat.NewSync(store)
		c, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
		require.NoError(t, err)
		_, err = sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{Role: chat.RoleUser, Content: "hi"})
		require.NoError(t, err)

		require.NoError(t, sync.DeleteChat(ctx, c.ID))
		assert.Empty(t, sync.Chats(ctx).Data)

		// The forgotten view reloads from scratch and comes back empty.
		listCalls := store.count("ListMessages")
		snap := sync.Messages(ctx, c.ID)
		require.NoError(t, snap.Err)
		assert.Empty(t, snap.Data)
		assert.Equal(t, listCalls+1, store.count("ListMessages"))
	})
}

func TestSyncSearchIsReadOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStore()
	sync := chat.NewSync(store)
	c, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
	require.NoError(t, err)
	_, err = sync.CreateMessage(ctx, c.ID, chat.CreateMessageParams{Role: chat.RoleUser, Content: "improve my skills section"})
	require.NoError(t, err)
	listCalls := store.count("ListMessages")

	results, err := sync.SearchMessages(ctx, c.ID, chat.SearchParams{Query: "skills"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Search never invalidates or refetches the cached message view.
	assert.Equal(t, 1, store.count("SearchMessages"))
	assert.Equal(t, listCalls, store.count("ListMessages"))
}

func TestSyncDisabled(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStore()
	sync := chat.NewSync(store, chat.WithEnabled(func() bool { return false }))

	snap := sync.Chats(ctx)
	assert.Empty(t, snap.Data)
	assert.False(t, snap.IsLoading)
	assert.NoError(t, snap.Err)

	msgs := sync.Messages(ctx, "chat-1")
	assert.Empty(t, msgs.Data)
	assert.False(t, msgs.IsLoading)

	created, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "t"})
	assert.NoError(t, err)
	assert.Zero(t, created)

	msg, err := sync.CreateMessage(ctx, "chat-1", chat.CreateMessageParams{Role: chat.RoleUser, Content: "x"})
	assert.NoError(t, err)
	assert.Zero(t, msg)

	results, err := sync.SearchMessages(ctx, "chat-1", chat.SearchParams{Query: "x"})
	assert.NoError(t, err)
	assert.Nil(t, results)

	assert.NoError(t, sync.DeleteChat(ctx, "chat-1"))
	assert.NoError(t, sync.InvalidateChats(ctx))

	for _, op := range []string{"ListChats", "CreateChat", "CreateMessage", "ListMessages", "SearchMessages", "DeleteChat"} {
		assert.Zero(t, store.count(op), "unexpected %s call while disabled", op)
	}
}

func TestSyncGateFlips(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newMemStore()
	var mu sync.Mutex
	enabled := false
	sync := chat.NewSync(store, chat.WithEnabled(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return enabled
	}))

	assert.Empty(t, sync.Chats(ctx).Data)
	assert.Zero(t, store.count("ListChats"))

	mu.Lock()
	enabled = true
	mu.Unlock()

	_, err := sync.CreateChat(ctx, chat.CreateChatParams{Title: "now live"})
	require.NoError(t, err)
	assert.Len(t, sync.Chats(ctx).Data, 1)
}
