package llm

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
)

// RetryConfig configures retry behavior for LLM calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts including the initial
	// one. A value of 0 or 1 means no retries.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// BackoffMultiplier is the growth factor per retry.
	BackoffMultiplier float64
	// Jitter adds +/- randomness to each backoff; 0.2 means up to 20%.
	Jitter float64
}

// DefaultRetryConfig is the standard policy: two retries with exponential
// backoff from 500ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.2,
	}
}

// ExhaustedError is returned when all retry attempts failed.
type ExhaustedError struct {
	Attempts  int
	LastError error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastError
}

// IsRetryable reports whether an error may succeed on retry: timeouts and
// transient provider unavailability do, cancellations never do.
func IsRetryable(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindTimeout, apperr.KindUnavailable:
		return true
	default:
		return false
	}
}

// RetryingClient wraps a ChatClient with per-call timeouts and retries.
type RetryingClient struct {
	inner       ChatClient
	cfg         RetryConfig
	callTimeout time.Duration

	// onRetry, when set, observes each retry. Used by tests and telemetry.
	onRetry func(attempt int, err error)
}

// NewRetryingClient wraps inner. callTimeout bounds each individual
// attempt; zero disables the per-attempt deadline.
func NewRetryingClient(inner ChatClient, cfg RetryConfig, callTimeout time.Duration) *RetryingClient {
	return &RetryingClient{inner: inner, cfg: cfg, callTimeout: callTimeout}
}

// OnRetry registers a retry observer.
func (c *RetryingClient) OnRetry(fn func(attempt int, err error)) {
	c.onRetry = fn
}

// Complete implements ChatClient.
func (c *RetryingClient) Complete(ctx context.Context, req Request) (*Response, error) {
	maxAttempts := c.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The caller's context ending is final even when the error kind
		// itself would be retriable.
		if ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}
		if attempt >= maxAttempts {
			break
		}

		if c.onRetry != nil {
			c.onRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil, apperr.FromContext(ctx)
		case <-time.After(c.backoff(attempt)):
		}
	}

	return nil, &ExhaustedError{Attempts: maxAttempts, LastError: lastErr}
}

func (c *RetryingClient) attempt(ctx context.Context, req Request) (*Response, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return c.inner.Complete(ctx, req)
}

func (c *RetryingClient) backoff(attempt int) time.Duration {
	backoff := float64(c.cfg.InitialBackoff) * math.Pow(c.cfg.BackoffMultiplier, float64(attempt-1))
	if limit := float64(c.cfg.MaxBackoff); c.cfg.MaxBackoff > 0 && backoff > limit {
		backoff = limit
	}
	if c.cfg.Jitter > 0 {
		backoff += backoff * c.cfg.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(backoff)
}
