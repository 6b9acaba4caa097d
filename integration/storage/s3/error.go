package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidConfig is returned when the store configuration is unusable.
	ErrInvalidConfig = errors.New("s3: invalid config")

	// ErrDocumentNotFound is returned when the requested PDF does not exist.
	ErrDocumentNotFound = errors.New("s3: document not found")

	// ErrAccessDenied is returned on bucket permission failures.
	ErrAccessDenied = errors.New("s3: access denied")

	// ErrServiceUnavailable is returned on retryable backend failures.
	ErrServiceUnavailable = errors.New("s3: service unavailable")

	// ErrOperationTimeout is returned when the operation exceeded its deadline.
	ErrOperationTimeout = errors.New("s3: operation timeout")
)

// classifyError converts S3 failures into the package sentinels so callers
// can branch with errors.Is instead of unwrapping AWS types.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrOperationTimeout, operation)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", ErrDocumentNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrDocumentNotFound, err)
		case "AccessDenied":
			return fmt.Errorf("%w: %s", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s", ErrServiceUnavailable, operation)
		}
		return fmt.Errorf("s3: %s failed (code: %s): %w", operation, apiErr.ErrorCode(), err)
	}

	return fmt.Errorf("s3: %s failed: %w", operation, err)
}
