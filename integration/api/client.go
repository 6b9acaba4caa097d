package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coomb/chatkit/core/chat"
	"github.com/coomb/chatkit/core/session"
)

// Compile-time checks that Client satisfies both store contracts.
var (
	_ session.Store = (*Client)(nil)
	_ chat.Store    = (*Client)(nil)
)

// Client is a typed HTTP client for the coomb REST API. It implements
// session.Store and chat.Store, translating HTTP statuses into the core
// sentinel errors so callers use errors.Is instead of inspecting responses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      func() string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. Useful for proxies, custom TLS,
// or httptest transports. If not set, a client with Config.Timeout is used.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTokenSource sets the bearer token supplier for authenticated requests.
// The function is consulted per request; returning an empty string sends the
// request unauthenticated, which is the normal state for anonymous traffic.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.token = fn
		}
	}
}

// WithLogger sets the logger for request diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an API client from the given config.
func New(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		baseURL: base,
		token:   func() string { return "" },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c, nil
}

type createSessionRequest struct {
	Source string `json:"source"`
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Source    string    `json:"source,omitempty"`
}

type transferRequest struct {
	SessionID string `json:"session_id"`
}

type transferResponse struct {
	ChatID *string `json:"chat_id"`
}

// Create requests a new anonymous session.
func (c *Client) Create(ctx context.Context, source string) (session.Session, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions/anonymous", createSessionRequest{Source: source}, &resp, nil)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{ID: resp.SessionID, ExpiresAt: resp.ExpiresAt, Source: resp.Source}, nil
}

// Get fetches a session by id. Unknown or server-side expired sessions map
// to session.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (session.Session, error) {
	var resp sessionResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/sessions/"+url.PathEscape(id), nil, &resp, func(status int) error {
		if status == http.StatusNotFound {
			return session.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{ID: resp.SessionID, ExpiresAt: resp.ExpiresAt, Source: resp.Source}, nil
}

// Transfer reassigns the anonymous session's data to the authenticated
// principal. The bearer token source must produce the principal's token.
// Returns the reassigned chat id, empty when the session had no chat.
func (c *Client) Transfer(ctx context.Context, id string) (string, error) {
	var resp transferResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/sessions/transfer", transferRequest{SessionID: id}, &resp, func(status int) error {
		switch status {
		case http.StatusNotFound:
			return session.ErrNotFound
		case http.StatusConflict:
			return session.ErrAlreadyTransferred
		case http.StatusBadRequest:
			return session.ErrExpired
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if resp.ChatID == nil {
		return "", nil
	}
	return *resp.ChatID, nil
}

// ListChats returns the principal's chats.
func (c *Client) ListChats(ctx context.Context) ([]chat.Chat, error) {
	var chats []chat.Chat
	if err := c.do(ctx, http.MethodGet, "/api/v1/chats", nil, &chats, chatStatus); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat creates a chat.
func (c *Client) CreateChat(ctx context.Context, params chat.CreateChatParams) (chat.Chat, error) {
	var created chat.Chat
	if err := c.do(ctx, http.MethodPost, "/api/v1/chats", params, &created, chatStatus); err != nil {
		return chat.Chat{}, err
	}
	return created, nil
}

// UpdateChatTitle renames a chat.
func (c *Client) UpdateChatTitle(ctx context.Context, chatID string, params chat.UpdateTitleParams) (chat.Chat, error) {
	var updated chat.Chat
	path := "/api/v1/chats/" + url.PathEscape(chatID)
	if err := c.do(ctx, http.MethodPatch, path, params, &updated, chatStatus); err != nil {
		return chat.Chat{}, err
	}
	return updated, nil
}

// DeleteChat removes a chat and its messages.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	path := "/api/v1/chats/" + url.PathEscape(chatID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, chatStatus)
}

// ListMessages returns the chat's messages in creation order.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]chat.Message, error) {
	var messages []chat.Message
	path := "/api/v1/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &messages, chatStatus); err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateMessage appends a message to the chat.
func (c *Client) CreateMessage(ctx context.Context, chatID string, params chat.CreateMessageParams) (chat.Message, error) {
	var created chat.Message
	path := "/api/v1/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, params, &created, chatStatus); err != nil {
		return chat.Message{}, err
	}
	return created, nil
}

// SearchMessages queries the chat's messages.
func (c *Client) SearchMessages(ctx context.Context, chatID string, params chat.SearchParams) ([]chat.Message, error) {
	var messages []chat.Message
	path := "/api/v1/chats/" + url.PathEscape(chatID) + "/messages/search?q=" + url.QueryEscape(params.Query)
	if err := c.do(ctx, http.MethodGet, path, nil, &messages, chatStatus); err != nil {
		return nil, err
	}
	return messages, nil
}

func chatStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return chat.ErrChatNotFound
	case status >= http.StatusInternalServerError:
		return chat.ErrStoreUnavailable
	}
	return nil
}

// do issues one request. mapStatus translates endpoint-specific error
// statuses into domain sentinels; remaining non-2xx statuses fall back to the
// shared mapping.
func (c *Client) do(ctx context.Context, method, path string, body, out any, mapStatus func(int) error) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.DebugContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))
		if mapStatus != nil {
			if mapped := mapStatus(resp.StatusCode); mapped != nil {
				return mapped
			}
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrUnauthorized
		}
		return fmt.Errorf("%w: %s %s returned %d", ErrUnexpectedStatus, method, path, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeResponse, err)
	}
	return nil
}
