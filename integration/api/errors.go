package api

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is unusable.
	ErrInvalidConfig = errors.New("api: invalid config")

	// ErrUnauthorized is returned on 401/403 responses.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrUnexpectedStatus wraps responses no endpoint-specific mapping covers.
	ErrUnexpectedStatus = errors.New("api: unexpected response status")

	// ErrDecodeResponse is returned when a response body cannot be decoded.
	ErrDecodeResponse = errors.New("api: failed to decode response")
)
