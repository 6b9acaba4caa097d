package redis

import "errors"

// Stable error types for retry logic and user-facing messages; check with
// errors.Is.
var (
	ErrFailedToParseRedisConnString = errors.New("redis: failed to parse connection string")
	ErrRedisNotReady                = errors.New("redis: not ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("redis: empty connection URL")
	ErrHealthcheckFailed            = errors.New("redis: healthcheck failed")
)
