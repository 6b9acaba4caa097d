package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coomb/chatkit/core/chat"
	"github.com/coomb/chatkit/core/session"
	"github.com/coomb/chatkit/integration/api"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...api.Option) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := api.New(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, opts...)
	require.NoError(t, err)
	return client
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires base URL", func(t *testing.T) {
		t.Parallel()
		_, err := api.New(api.Config{})
		assert.ErrorIs(t, err, api.ErrInvalidConfig)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		t.Parallel()
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/chats", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]chat.Chat{})
		}))
		_, err := client.ListChats(context.Background())
		require.NoError(t, err)
	})
}

func TestSessionEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create posts the source", func(t *testing.T) {
		t.Parallel()

		expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v1/sessions/anonymous", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "web", body["source"])

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"session_id": "sess-1",
				"expires_at": expires,
				"source":     "web",
			})
		}))

		sess, err := client.Create(ctx, "web")
		require.NoError(t, err)
		assert.Equal(t, "sess-1", sess.ID)
		assert.True(t, sess.ExpiresAt.Equal(expires))
		assert.Equal(t, "web", sess.Source)
	})

	t.Run("get maps 404 to not found", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/sessions/sess-gone", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.Get(ctx, "sess-gone")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("transfer sends the bearer token", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/sessions/transfer", r.URL.Path)
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "sess-1", body["session_id"])

			_ = json.NewEncoder(w).Encode(map[string]any{"chat_id": "chat-1"})
		}), api.WithTokenSource(func() string { return "user-token" }))

		chatID, err := client.Transfer(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, "chat-1", chatID)
	})

	t.Run("transfer with no chat returns empty id", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"chat_id": nil})
		}))

		chatID, err := client.Transfer(ctx, "sess-1")
		require.NoError(t, err)
		assert.Empty(t, chatID)
	})

	t.Run("transfer error statuses map to sentinels", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			status int
			want   error
		}{
			{http.StatusNotFound, session.ErrNotFound},
			{http.StatusConflict, session.ErrAlreadyTransferred},
			{http.StatusBadRequest, session.ErrExpired},
		}
		for _, tc := range cases {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			_, err := client.Transfer(ctx, "sess-1")
			assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		}
	})
}

func TestChatEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("list chats", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/api/v1/chats", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]chat.Chat{
				{ID: "chat-1", Title: "resume review", LastMessage: "thanks"},
			})
		}))

		chats, err := client.ListChats(ctx)
		require.NoError(t, err)
		require.Len(t, chats, 1)
		assert.Equal(t, "resume review", chats[0].Title)
	})

	t.Run("update title uses PATCH on the chat path", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPatch, r.Method)
			require.Equal(t, "/api/v1/chats/chat-1", r.URL.Path)
			_ = json.NewEncoder(w).Encode(chat.Chat{ID: "chat-1", Title: "renamed"})
		}))

		updated, err := client.UpdateChatTitle(ctx, "chat-1", chat.UpdateTitleParams{Title: "renamed"})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
	})

	t.Run("delete accepts 204", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(http.StatusNoContent)
		}))

		assert.NoError(t, client.DeleteChat(ctx, "chat-1"))
	})

	t.Run("missing chat maps to not found", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		_, err := client.ListMessages(ctx, "chat-gone")
		assert.ErrorIs(t, err, chat.ErrChatNotFound)
	})

	t.Run("backend failure maps to store unavailable", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))

		_, err := client.ListChats(ctx)
		assert.ErrorIs(t, err, chat.ErrStoreUnavailable)
	})

	t.Run("create message round-trips payload", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/chats/chat-1/messages", r.URL.Path)

			var params chat.CreateMessageParams
			require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			assert.Equal(t, chat.RoleUser, params.Role)

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(chat.Message{
				ID: "msg-1", ChatID: "chat-1", Role: params.Role, Content: params.Content,
			})
		}))

		msg, err := client.CreateMessage(ctx, "chat-1", chat.CreateMessageParams{
			Role: chat.RoleUser, Content: "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, "msg-1", msg.ID)
	})

	t.Run("search passes the query", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/v1/chats/chat-1/messages/search", r.URL.Path)
			assert.Equal(t, "skills section", r.URL.Query().Get("q"))
			_ = json.NewEncoder(w).Encode([]chat.Message{{ID: "msg-2"}})
		}))

		results, err := client.SearchMessages(ctx, "chat-1", chat.SearchParams{Query: "skills section"})
		require.NoError(t, err)
		require.Len(t, results, 1)
	})

	t.Run("unauthorized responses map to a sentinel", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.ListChats(ctx)
		assert.ErrorIs(t, err, api.ErrUnauthorized)
	})
}
