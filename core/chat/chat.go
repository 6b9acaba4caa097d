package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Chat is a single conversation owned by a principal (an authenticated user
// or an anonymous session before transfer).
type Chat struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	LastMessage string `json:"last_message,omitempty"`
}

// Citation is a source reference attached to an assistant message.
type Citation struct {
	URL string `json:"url"`
}

// Message is a single entry in a chat transcript. PDFURL is set on assistant
// messages that carry a generated resume document.
type Message struct {
	ID        string     `json:"id"`
	ChatID    string     `json:"chat_id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	PDFURL    string     `json:"pdf_url,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateChatParams carries the fields for creating a chat.
type CreateChatParams struct {
	Title string `json:"title"`
}

// UpdateTitleParams carries the fields for renaming a chat.
type UpdateTitleParams struct {
	Title string `json:"title"`
}

// CreateMessageParams carries the fields for appending a message to a chat.
type CreateMessageParams struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	PDFURL  string `json:"pdf_url,omitempty"`
}

// SearchParams carries a full-text query over a chat's messages.
type SearchParams struct {
	Query string `json:"query"`
}
