package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coomb/chatkit/core/logger"
	"github.com/coomb/chatkit/core/resume"
	"github.com/coomb/chatkit/core/session"
)

// DefaultSessionTTL is how long an anonymous session stays valid unless
// configured otherwise.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionStore is the server-side persistence for anonymous sessions and
// their one-time transfer to authenticated users.
type SessionStore struct {
	pool   *pgxpool.Pool
	ttl    time.Duration
	logger *slog.Logger
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSessionTTL sets the anonymous session lifetime.
func WithSessionTTL(ttl time.Duration) SessionStoreOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionStoreLogger sets the logger.
// If not set, logging is disabled.
func WithSessionStoreLogger(logger *slog.Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSessionStore creates a SessionStore over the given pool.
func NewSessionStore(pool *pgxpool.Pool, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		pool:   pool,
		ttl:    DefaultSessionTTL,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAnonymous inserts a new anonymous session with the configured TTL.
func (s *SessionStore) CreateAnonymous(ctx context.Context, source string) (session.Session, error) {
	var (
		id        uuid.UUID
		expiresAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (source, expires_at)
		 VALUES ($1, now() + $2)
		 RETURNING id, expires_at`,
		source, s.ttl,
	).Scan(&id, &expiresAt)
	if err != nil {
		return session.Session{}, fmt.Errorf("pg: failed to create session: %w", err)
	}
	return session.Session{ID: id.String(), ExpiresAt: expiresAt, Source: source}, nil
}

// Get returns the session by id. Unknown, already transferred, and expired
// sessions all surface as session.ErrNotFound: from the client's point of
// view none of them is a reusable anonymous session.
func (s *SessionStore) Get(ctx context.Context, id string) (session.Session, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return session.Session{}, session.ErrNotFound
	}

	var (
		expiresAt time.Time
		source    string
		converted bool
	)
	err = s.pool.QueryRow(ctx,
		`SELECT expires_at, source, converted_at IS NOT NULL
		 FROM sessions WHERE id = $1`,
		sessionID,
	).Scan(&expiresAt, &source, &converted)
	if IsNotFound(err) {
		return session.Session{}, session.ErrNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("pg: failed to load session: %w", err)
	}
	if converted || !time.Now().Before(expiresAt) {
		return session.Session{}, session.ErrNotFound
	}
	return session.Session{ID: id, ExpiresAt: expiresAt, Source: source}, nil
}

// Transfer reassigns the anonymous session's chat and resume data to userID,
// exactly once. The chat reassignment and the conversion mark commit in one
// transaction; the resume import runs after commit and its failure never
// fails the transfer. Returns the reassigned chat id, empty when the session
// had no chat.
func (s *SessionStore) Transfer(ctx context.Context, id string, userID uuid.UUID) (string, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return "", session.ErrNotFound
	}
	if userID == uuid.Nil {
		return "", fmt.Errorf("pg: transfer requires an authenticated user")
	}

	var (
		chatID     string
		resumeData []byte
	)
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			expiresAt time.Time
			converted bool
		)
		err := tx.QueryRow(ctx,
			`SELECT expires_at, converted_at IS NOT NULL, COALESCE(resume_data, 'null'::jsonb)
			 FROM sessions WHERE id = $1 FOR UPDATE`,
			sessionID,
		).Scan(&expiresAt, &converted, &resumeData)
		if IsNotFound(err) {
			return session.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("pg: failed to lock session: %w", err)
		}
		if converted {
			return session.ErrAlreadyTransferred
		}
		if !time.Now().Before(expiresAt) {
			return session.ErrExpired
		}

		var reassigned uuid.UUID
		err = tx.QueryRow(ctx,
			`UPDATE chats SET user_id = $1, session_id = NULL, updated_at = now()
			 WHERE session_id = $2
			 RETURNING id`,
			userID, sessionID,
		).Scan(&reassigned)
		switch {
		case IsNotFound(err):
			// The visitor never sent a message; nothing to reassign.
		case err != nil:
			return fmt.Errorf("pg: failed to reassign chat: %w", err)
		default:
			chatID = reassigned.String()
		}

		if _, err := tx.Exec(ctx,
			`UPDATE sessions SET converted_at = now(), converted_user_id = $1
			 WHERE id = $2`,
			userID, sessionID,
		); err != nil {
			return fmt.Errorf("pg: failed to mark session converted: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.importResume(ctx, userID, resumeData)
	return chatID, nil
}

// importResume copies the session's resume snapshot to the user unless the
// user already has one. Failures are logged only: the transfer has already
// committed and must not be reported as failed.
func (s *SessionStore) importResume(ctx context.Context, userID uuid.UUID, data []byte) {
	if len(data) == 0 || string(data) == "null" {
		return
	}

	var snap resume.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.WarnContext(ctx, "failed to decode session resume data",
			logger.UserID(userID.String()), logger.Error(err))
		return
	}
	if snap.IsEmpty() {
		return
	}

	// ON CONFLICT DO NOTHING keeps an existing resume authoritative.
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO resumes (user_id, data) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, data,
	); err != nil {
		s.logger.WarnContext(ctx, "failed to import session resume",
			logger.UserID(userID.String()), logger.Error(err))
	}
}

// LinkChat attaches a chat to an anonymous session. This happens when the
// visitor's first message implicitly creates a chat.
func (s *SessionStore) LinkChat(ctx context.Context, id, chatID string) error {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return session.ErrNotFound
	}
	chatUUID, err := uuid.Parse(chatID)
	if err != nil {
		return fmt.Errorf("pg: invalid chat id %q", chatID)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE chats SET session_id = $1, updated_at = now() WHERE id = $2`,
		sessionID, chatUUID,
	)
	if err != nil {
		return fmt.Errorf("pg: failed to link chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// SaveResume stores the session's current resume snapshot.
func (s *SessionStore) SaveResume(ctx context.Context, id string, snap resume.Snapshot) error {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return session.ErrNotFound
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("pg: failed to encode resume snapshot: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET resume_data = $1 WHERE id = $2 AND converted_at IS NULL`,
		data, sessionID,
	)
	if err != nil {
		return fmt.Errorf("pg: failed to save resume snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired removes expired sessions that were never converted, together
// with their orphaned chats. Returns the number of sessions removed.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE converted_at IS NULL AND expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("pg: failed to delete expired sessions: %w", err)
	}
	removed := tag.RowsAffected()
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired anonymous sessions removed", slog.Int64("count", removed))
	}
	return removed, nil
}

// ConversionStats summarizes how many anonymous sessions converted to
// registered accounts.
type ConversionStats struct {
	Total     int64
	Converted int64
	Rate      float64
}

// Stats returns conversion counters over all sessions.
func (s *SessionStore) Stats(ctx context.Context) (ConversionStats, error) {
	var stats ConversionStats
	err := s.pool.QueryRow(ctx,
		`SELECT count(*), count(converted_at) FROM sessions`,
	).Scan(&stats.Total, &stats.Converted)
	if err != nil {
		return ConversionStats{}, fmt.Errorf("pg: failed to load conversion stats: %w", err)
	}
	if stats.Total > 0 {
		stats.Rate = float64(stats.Converted) / float64(stats.Total)
	}
	return stats, nil
}
