package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/coomb/chatkit/core/chat"
)

// Google model constants.
const (
	GoogleGemini20Flash = "gemini-2.0-flash"
	GoogleGemini15Pro   = "gemini-1.5-pro"
)

// Google implements the Responder interface using Google's Generative AI API.
type Google struct {
	client   *genai.Client
	model    string
	backend  genai.Backend
	project  string
	location string
}

// GoogleOption is a functional option for configuring Google.
type GoogleOption func(*Google)

// WithGoogleModel sets the model to use.
func WithGoogleModel(model string) GoogleOption {
	return func(g *Google) {
		g.model = model
	}
}

// WithGoogleBackend sets the backend to use (Gemini API or Vertex AI).
func WithGoogleBackend(backend genai.Backend) GoogleOption {
	return func(g *Google) {
		g.backend = backend
	}
}

// WithGoogleProject sets the GCP project ID for Vertex AI.
func WithGoogleProject(project string) GoogleOption {
	return func(g *Google) {
		g.project = project
	}
}

// WithGoogleLocation sets the GCP location/region for Vertex AI.
func WithGoogleLocation(location string) GoogleOption {
	return func(g *Google) {
		g.location = location
	}
}

// NewGoogle creates a new Google responder with API key authentication.
func NewGoogle(ctx context.Context, apiKey string, opts ...GoogleOption) (*Google, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	g := &Google{
		model:   GoogleGemini20Flash,
		backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(g)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:   apiKey,
		Backend:  g.backend,
		Project:  g.project,
		Location: g.location,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientCreationFailed, err)
	}
	g.client = client
	return g, nil
}

// Respond returns the assistant reply for userMessage.
func (g *Google) Respond(ctx context.Context, history []chat.Message, userMessage string) (chat.Message, error) {
	if strings.TrimSpace(userMessage) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		switch m.Role {
		case chat.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		case chat.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("ai: generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return chat.Message{}, ErrNoResponse
	}
	return chat.Message{
		Role:      chat.RoleAssistant,
		Content:   text,
		CreatedAt: time.Now(),
	}, nil
}
