package llmclient

import (
	"context"
	"strings"

	"github.com/wayfarerhq/pilot/internal/backoff"
)

// WithRetry runs fn up to maxAttempts times using the shared LLM backoff
// policy, stopping immediately on a non-retryable error rather than
// consuming the full attempt budget.
func WithRetry[T any](ctx context.Context, maxAttempts int, fn func(attempt int) (T, error)) (T, error) {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	policy := backoff.LLMRetryPolicy()

	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		value, err := fn(attempt)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt >= maxAttempts {
			return zero, err
		}
		if err := backoff.SleepWithBackoff(ctx, policy, attempt); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// classifyHTTPStatus maps an HTTP status code to an error classification
// consistent across providers.
func classifyHTTPStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrConfiguration
	case status == 400 || status == 404:
		return ErrPermanent
	case status == 429 || status >= 500:
		return ErrTransient
	default:
		return ErrPermanent
	}
}

// looksTransient classifies a transport-layer error by message, for cases
// where no HTTP status is available (connection refused, DNS failure, etc).
func looksTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"timeout", "deadline exceeded", "connection reset", "connection refused", "no such host", "eof"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
