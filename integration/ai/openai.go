package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/coomb/chatkit/core/chat"
)

// OpenAI model constants.
const (
	OpenAIGPT4oMini = "gpt-4o-mini"
	OpenAIGPT4o     = "gpt-4o"
)

// OpenAI implements the Responder interface using OpenAI's chat completions.
type OpenAI struct {
	client     openai.Client
	model      string
	httpClient *http.Client
	baseURL    string
}

// OpenAIOption is a functional option for configuring OpenAI.
type OpenAIOption func(*OpenAI)

// WithOpenAIModel sets the model to use.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		o.model = model
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client. The configured API key
// still authenticates requests sent through it.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithOpenAIBaseURL overrides the API endpoint, for proxies and tests.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAI) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// NewOpenAI creates a new OpenAI responder.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	o := &OpenAI{
		model: OpenAIGPT4oMini, // Cheapest model with adequate quality for resume advice
	}
	for _, opt := range opts {
		opt(o)
	}

	switch o.model {
	case OpenAIGPT4oMini, OpenAIGPT4o:
	default:
		return nil, fmt.Errorf("%w: %s", ErrModelNotSupported, o.model)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	o.client = openai.NewClient(reqOpts...)
	return o, nil
}

// Respond returns the assistant reply for userMessage.
func (o *OpenAI) Respond(ctx context.Context, history []chat.Message, userMessage string) (chat.Message, error) {
	if strings.TrimSpace(userMessage) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case chat.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case chat.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(userMessage))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return chat.Message{}, fmt.Errorf("ai: completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return chat.Message{}, ErrNoResponse
	}

	return chat.Message{
		Role:      chat.RoleAssistant,
		Content:   resp.Choices[0].Message.Content,
		CreatedAt: time.Now(),
	}, nil
}
