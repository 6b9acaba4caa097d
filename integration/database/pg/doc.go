// Package pg provides PostgreSQL connection management and the server-side
// stores for anonymous sessions, chats, and messages.
//
// # Connection Management
//
// Connect creates a pgxpool with retry logic and verifies connectivity
// before returning. Migrate applies the goose SQL migrations, bridging the
// pool into database/sql via the pgx stdlib adapter. Healthcheck returns a
// probe function for readiness endpoints.
//
//	cfg := pg.Config{ConnectionString: os.Getenv("PG_CONN_URL")}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//		log.Fatal(err)
//	}
//
// # Session Store
//
// SessionStore persists anonymous sessions and performs the one-time
// transfer to an authenticated user:
//
//	store := pg.NewSessionStore(pool, pg.WithSessionTTL(7*24*time.Hour))
//
//	sess, err := store.CreateAnonymous(ctx, "web")
//
//	chatID, err := store.Transfer(ctx, sess.ID, userID)
//	switch {
//	case errors.Is(err, session.ErrAlreadyTransferred):
//		// a previous transfer won; nothing to do
//	case errors.Is(err, session.ErrExpired):
//		// session outlived its TTL before the user registered
//	}
//
// Transfer locks the session row, reassigns its chat, and marks the session
// converted in one transaction, so concurrent transfer attempts resolve to
// exactly one winner. Resume data captured during the anonymous period is
// imported to the user after commit; an import failure is logged, never
// surfaced, because the transfer itself already succeeded.
//
// # Chat Store
//
// ChatStore scopes every query to a Principal, either an authenticated user
// or an anonymous session, so chat data never leaks across owners:
//
//	chats := pg.NewChatStore(pool)
//	list, err := chats.ListChats(ctx, pg.UserPrincipal(userID))
//
// # Error Handling
//
// Store methods translate database conditions into the core sentinel errors
// (session.ErrNotFound, chat.ErrChatNotFound and friends). The package also
// exposes IsNotFound, IsUniqueViolation, and IsForeignKeyViolation for code
// that works with the pool directly.
//
// # Transactions
//
// WithTx and TxFromContext propagate a pgx.Tx through context so callers can
// compose several store operations into one transaction.
package pg
