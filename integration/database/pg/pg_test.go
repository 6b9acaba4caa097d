package pg_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coomb/chatkit/core/chat"
	"github.com/coomb/chatkit/core/resume"
	"github.com/coomb/chatkit/core/session"
	"github.com/coomb/chatkit/integration/database/pg"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty connection string", func(t *testing.T) {
		t.Parallel()
		_, err := pg.Connect(context.Background(), pg.Config{})
		assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
	})

	t.Run("rejects malformed connection string", func(t *testing.T) {
		t.Parallel()
		_, err := pg.Connect(context.Background(), pg.Config{
			ConnectionString: "not-a-postgres-url with spaces",
		})
		assert.ErrorIs(t, err, pg.ErrFailedToParseConfig)
	})
}

func TestMigrate(t *testing.T) {
	t.Parallel()

	t.Run("missing migrations dir", func(t *testing.T) {
		t.Parallel()
		err := pg.Migrate(context.Background(), nil, pg.Config{
			MigrationsPath: t.TempDir() + "/does-not-exist",
		}, nil)
		assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)
	})
}

func TestTxContext(t *testing.T) {
	t.Parallel()

	t.Run("nil tx leaves context unchanged", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		assert.Equal(t, ctx, pg.WithTx(ctx, nil))
		_, ok := pg.TxFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("nil context is safe", func(t *testing.T) {
		t.Parallel()
		_, ok := pg.TxFromContext(nil) //nolint:staticcheck
		assert.False(t, ok)
	})
}

// Invalid identifiers must map to the domain sentinels before any query is
// issued, so these paths are exercisable without a database.
func TestIdentifierValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("session store rejects malformed ids", func(t *testing.T) {
		t.Parallel()
		store := pg.NewSessionStore(nil)

		_, err := store.Get(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, session.ErrNotFound)

		_, err = store.Transfer(ctx, "not-a-uuid", uuid.New())
		assert.ErrorIs(t, err, session.ErrNotFound)

		err = store.SaveResume(ctx, "not-a-uuid", resume.Snapshot{Summary: "senior gopher"})
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("transfer requires an authenticated user", func(t *testing.T) {
		t.Parallel()
		store := pg.NewSessionStore(nil)
		_, err := store.Transfer(ctx, uuid.NewString(), uuid.Nil)
		require.Error(t, err)
		assert.NotErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("chat store rejects malformed chat ids", func(t *testing.T) {
		t.Parallel()
		store := pg.NewChatStore(nil)
		owner := pg.UserPrincipal(uuid.New())

		_, err := store.ListMessages(ctx, owner, "not-a-uuid")
		assert.ErrorIs(t, err, chat.ErrChatNotFound)

		err = store.DeleteChat(ctx, owner, "not-a-uuid")
		assert.ErrorIs(t, err, chat.ErrChatNotFound)
	})

	t.Run("chat store rejects ambiguous principals", func(t *testing.T) {
		t.Parallel()
		store := pg.NewChatStore(nil)

		_, err := store.ListChats(ctx, pg.Principal{})
		assert.Error(t, err)

		both := pg.Principal{UserID: uuid.New(), SessionID: uuid.New()}
		_, err = store.ListChats(ctx, both)
		assert.Error(t, err)
	})
}
