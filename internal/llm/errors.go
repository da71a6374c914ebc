package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit indicates the backend returned a rate limit response (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ProviderError wraps a transport or HTTP failure with the provider identity
// so the caller can report which backend failed.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrEmptyCompletion indicates the backend answered 2xx but carried no usable
// text (no choices, no candidates, empty content).
var ErrEmptyCompletion = errors.New("empty completion")

// retryable reports whether an error is worth another attempt. Rate limits
// are handled separately by the retry decorator; this covers server-side and
// network transients.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode >= 500:
			return true
		case pe.StatusCode >= 400:
			return false
		}
	}
	// Network-level failures without a status are treated as transient.
	return true
}
