package ai

import (
	"context"

	"github.com/coomb/chatkit/core/chat"
)

// systemPrompt steers every provider toward the resume-optimization
// assistant role.
const systemPrompt = `You are a professional resume optimization assistant.
Help the user improve their resume: strengthen wording, quantify impact,
tailor content to target roles, and point out gaps or redundancies.
Ask clarifying questions when the request is ambiguous. Keep answers
concise and actionable.`

// Responder produces the assistant reply for a user message given the chat
// history so far.
type Responder interface {
	// Respond returns the assistant message for userMessage. The history is
	// ordered oldest first and must not include userMessage itself.
	Respond(ctx context.Context, history []chat.Message, userMessage string) (chat.Message, error)
}
