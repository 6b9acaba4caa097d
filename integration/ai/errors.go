package ai

import "errors"

var (
	// ErrInvalidAPIKey indicates an invalid or missing API key.
	ErrInvalidAPIKey = errors.New("ai: invalid or missing API key")

	// ErrModelNotSupported indicates the model is not supported.
	ErrModelNotSupported = errors.New("ai: model not supported")

	// ErrEmptyMessage indicates the user message was empty.
	ErrEmptyMessage = errors.New("ai: empty user message")

	// ErrNoResponse indicates the provider returned no completion.
	ErrNoResponse = errors.New("ai: no response returned")

	// ErrClientCreationFailed indicates a failure in creating the API client.
	ErrClientCreationFailed = errors.New("ai: failed to create API client")
)
