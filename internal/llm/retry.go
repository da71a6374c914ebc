package llm

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryConfig tunes the retry decorator. Rate-limit responses get the long
// exponential schedule; other transient failures get a short bounded one.
type RetryConfig struct {
	// RateLimitAttempts is the attempt budget for 429 responses.
	RateLimitAttempts int

	// RateLimitBase is the base of the 2^attempt backoff on 429.
	RateLimitBase time.Duration

	// TransientAttempts is the attempt budget for 5xx/network failures.
	TransientAttempts int

	// TransientDelay is the fixed pause between transient retries.
	TransientDelay time.Duration
}

// DefaultRetryConfig mirrors the limits the strictest backends require:
// up to 5 attempts with 5s, 10s, 20s... waits on 429, and 3 quick attempts
// for everything else retryable.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		RateLimitAttempts: 5,
		RateLimitBase:     5 * time.Second,
		TransientAttempts: 3,
		TransientDelay:    2 * time.Second,
	}
}

// RetryProvider decorates a Provider with per-call timeout and retry.
type RetryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry wraps a Provider with the retry policy. Name and Policy pass
// through to the wrapped adapter.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, cfg: cfg}
}

func (r *RetryProvider) Name() string { return r.inner.Name() }

func (r *RetryProvider) Policy() DispatchPolicy { return r.inner.Policy() }

func (r *RetryProvider) Invoke(ctx context.Context, req Request) (string, error) {
	if t := r.inner.Policy().CallTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	var lastErr error
	rateLimited, transient := 0, 0

	for {
		raw, err := r.inner.Invoke(ctx, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var wait time.Duration
		var rl *ErrRateLimit
		switch {
		case errors.As(err, &rl):
			rateLimited++
			if rateLimited >= r.cfg.RateLimitAttempts {
				return "", lastErr
			}
			wait = r.rateLimitBackoff(rateLimited, rl)
		case retryable(err):
			transient++
			if transient >= r.cfg.TransientAttempts {
				return "", lastErr
			}
			wait = r.cfg.TransientDelay
		default:
			return "", lastErr
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *RetryProvider) rateLimitBackoff(attempt int, rl *ErrRateLimit) time.Duration {
	if rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return time.Duration(math.Pow(2, float64(attempt-1))) * r.cfg.RateLimitBase
}
