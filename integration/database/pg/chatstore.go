package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coomb/chatkit/core/chat"
)

// querier is the subset of pgxpool.Pool and pgx.Tx the stores need, so
// every method can run against either the pool or an ambient transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Principal identifies a chat owner on the server side: an authenticated
// user or an anonymous session, never both.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// UserPrincipal returns a principal for an authenticated user.
func UserPrincipal(userID uuid.UUID) Principal {
	return Principal{UserID: userID}
}

// SessionPrincipal returns a principal for an anonymous session.
func SessionPrincipal(sessionID uuid.UUID) Principal {
	return Principal{SessionID: sessionID}
}

func (p Principal) valid() bool {
	return (p.UserID != uuid.Nil) != (p.SessionID != uuid.Nil)
}

// ownerClause returns the WHERE fragment and argument selecting the
// principal's chats. Placeholders start at $1.
func (p Principal) ownerClause() (string, any) {
	if p.UserID != uuid.Nil {
		return "user_id = $1", p.UserID
	}
	return "session_id = $1", p.SessionID
}

// ChatStore is the server-side persistence for chats and messages, scoped to
// a principal on every call so one owner can never read another's data.
type ChatStore struct {
	pool *pgxpool.Pool
}

// NewChatStore creates a ChatStore over the given pool.
func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

// q returns the transaction attached to ctx via WithTx, or the pool.
func (c *ChatStore) q(ctx context.Context) querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return c.pool
}

// ListChats returns the principal's chats, most recently updated first, with
// each chat's latest message content as the preview.
func (c *ChatStore) ListChats(ctx context.Context, p Principal) ([]chat.Chat, error) {
	if !p.valid() {
		return nil, fmt.Errorf("pg: invalid principal")
	}
	clause, owner := p.ownerClause()

	rows, err := c.q(ctx).Query(ctx,
		`SELECT c.id, c.title,
		        COALESCE((SELECT m.content FROM messages m
		                  WHERE m.chat_id = c.id
		                  ORDER BY m.created_at DESC LIMIT 1), '')
		 FROM chats c
		 WHERE `+clause+`
		 ORDER BY c.updated_at DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("pg: failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		var (
			id uuid.UUID
			ch chat.Chat
		)
		if err := rows.Scan(&id, &ch.Title, &ch.LastMessage); err != nil {
			return nil, fmt.Errorf("pg: failed to scan chat: %w", err)
		}
		ch.ID = id.String()
		chats = append(chats, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: failed to read chats: %w", err)
	}
	return chats, nil
}

// CreateChat creates a chat owned by the principal.
func (c *ChatStore) CreateChat(ctx context.Context, p Principal, params chat.CreateChatParams) (chat.Chat, error) {
	if !p.valid() {
		return chat.Chat{}, fmt.Errorf("pg: invalid principal")
	}

	var userID, sessionID *uuid.UUID
	if p.UserID != uuid.Nil {
		userID = &p.UserID
	} else {
		sessionID = &p.SessionID
	}

	var id uuid.UUID
	err := c.q(ctx).QueryRow(ctx,
		`INSERT INTO chats (user_id, session_id, title) VALUES ($1, $2, $3) RETURNING id`,
		userID, sessionID, params.Title,
	).Scan(&id)
	if err != nil {
		return chat.Chat{}, fmt.Errorf("pg: failed to create chat: %w", err)
	}
	return chat.Chat{ID: id.String(), Title: params.Title}, nil
}

// UpdateChatTitle renames the principal's chat.
func (c *ChatStore) UpdateChatTitle(ctx context.Context, p Principal, chatID string, params chat.UpdateTitleParams) (chat.Chat, error) {
	id, err := c.ownedChatID(p, chatID)
	if err != nil {
		return chat.Chat{}, err
	}
	clause, owner := p.ownerClause()

	tag, err := c.q(ctx).Exec(ctx,
		`UPDATE chats SET title = $2, updated_at = now() WHERE id = $3 AND `+clause,
		owner, params.Title, id,
	)
	if err != nil {
		return chat.Chat{}, fmt.Errorf("pg: failed to rename chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.Chat{}, chat.ErrChatNotFound
	}
	return chat.Chat{ID: chatID, Title: params.Title}, nil
}

// DeleteChat removes the principal's chat; messages cascade.
func (c *ChatStore) DeleteChat(ctx context.Context, p Principal, chatID string) error {
	id, err := c.ownedChatID(p, chatID)
	if err != nil {
		return err
	}
	clause, owner := p.ownerClause()

	tag, err := c.q(ctx).Exec(ctx,
		`DELETE FROM chats WHERE id = $2 AND `+clause,
		owner, id,
	)
	if err != nil {
		return fmt.Errorf("pg: failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrChatNotFound
	}
	return nil
}

// ListMessages returns the chat's messages in creation order.
func (c *ChatStore) ListMessages(ctx context.Context, p Principal, chatID string) ([]chat.Message, error) {
	id, err := c.ownedChatID(p, chatID)
	if err != nil {
		return nil, err
	}
	clause, owner := p.ownerClause()

	rows, err := c.q(ctx).Query(ctx,
		`SELECT m.id, m.role, m.content, COALESCE(m.pdf_url, ''), COALESCE(m.citations, '[]'::jsonb), m.created_at
		 FROM messages m
		 JOIN chats c ON c.id = m.chat_id
		 WHERE m.chat_id = $2 AND `+clause+`
		 ORDER BY m.created_at ASC`,
		owner, id,
	)
	if err != nil {
		return nil, fmt.Errorf("pg: failed to list messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows, chatID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		// Distinguish an empty chat from a foreign or missing one.
		if err := c.assertChatExists(ctx, p, id); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

// CreateMessage appends a message to the principal's chat.
func (c *ChatStore) CreateMessage(ctx context.Context, p Principal, chatID string, params chat.CreateMessageParams) (chat.Message, error) {
	id, err := c.ownedChatID(p, chatID)
	if err != nil {
		return chat.Message{}, err
	}
	if err := c.assertChatExists(ctx, p, id); err != nil {
		return chat.Message{}, err
	}

	var pdfURL *string
	if params.PDFURL != "" {
		pdfURL = &params.PDFURL
	}

	var (
		msgID     uuid.UUID
		createdAt time.Time
	)
	err = c.q(ctx).QueryRow(ctx,
		`INSERT INTO messages (chat_id, role, content, pdf_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		id, string(params.Role), params.Content, pdfURL,
	).Scan(&msgID, &createdAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return chat.Message{}, chat.ErrChatNotFound
		}
		return chat.Message{}, fmt.Errorf("pg: failed to create message: %w", err)
	}

	// Bump the chat so the list orders by recent activity.
	_, _ = c.q(ctx).Exec(ctx, `UPDATE chats SET updated_at = now() WHERE id = $1`, id)

	return chat.Message{
		ID:        msgID.String(),
		ChatID:    chatID,
		Role:      params.Role,
		Content:   params.Content,
		PDFURL:    params.PDFURL,
		CreatedAt: createdAt,
	}, nil
}

// SearchMessages returns the chat's messages whose content matches the query
// case-insensitively, in creation order.
func (c *ChatStore) SearchMessages(ctx context.Context, p Principal, chatID string, params chat.SearchParams) ([]chat.Message, error) {
	id, err := c.ownedChatID(p, chatID)
	if err != nil {
		return nil, err
	}
	if err := c.assertChatExists(ctx, p, id); err != nil {
		return nil, err
	}
	clause, owner := p.ownerClause()

	rows, err := c.q(ctx).Query(ctx,
		`SELECT m.id, m.role, m.content, COALESCE(m.pdf_url, ''), COALESCE(m.citations, '[]'::jsonb), m.created_at
		 FROM messages m
		 JOIN chats c ON c.id = m.chat_id
		 WHERE m.chat_id = $2 AND m.content ILIKE '%' || $3 || '%' AND `+clause+`
		 ORDER BY m.created_at ASC`,
		owner, id, params.Query,
	)
	if err != nil {
		return nil, fmt.Errorf("pg: failed to search messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows, chatID)
}

func (c *ChatStore) ownedChatID(p Principal, chatID string) (uuid.UUID, error) {
	if !p.valid() {
		return uuid.Nil, fmt.Errorf("pg: invalid principal")
	}
	id, err := uuid.Parse(chatID)
	if err != nil {
		return uuid.Nil, chat.ErrChatNotFound
	}
	return id, nil
}

func (c *ChatStore) assertChatExists(ctx context.Context, p Principal, id uuid.UUID) error {
	clause, owner := p.ownerClause()
	var exists bool
	err := c.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chats WHERE id = $2 AND `+clause+`)`,
		owner, id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("pg: failed to check chat: %w", err)
	}
	if !exists {
		return chat.ErrChatNotFound
	}
	return nil
}

func scanMessages(rows pgx.Rows, chatID string) ([]chat.Message, error) {
	var messages []chat.Message
	for rows.Next() {
		var (
			id        uuid.UUID
			role      string
			citations []byte
			msg       chat.Message
		)
		if err := rows.Scan(&id, &role, &msg.Content, &msg.PDFURL, &citations, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("pg: failed to scan message: %w", err)
		}
		msg.ID = id.String()
		msg.ChatID = chatID
		msg.Role = chat.Role(role)
		if err := json.Unmarshal(citations, &msg.Citations); err != nil {
			return nil, fmt.Errorf("pg: failed to decode citations: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: failed to read messages: %w", err)
	}
	return messages, nil
}
