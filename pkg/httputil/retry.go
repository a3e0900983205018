package httputil

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, connection errors, 5xx responses)
// with this type so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// RateLimitError indicates the server answered 429. It is retryable, and when
// RetryAfter is set (from the Retry-After response header) that duration takes
// precedence over the computed exponential delay.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Backoff describes the retry policy used by [Retry].
//
// Delays grow as BaseDelay * 2^attempt, jittered by Jitter (a fraction in
// [0,1]; the delay is drawn uniformly from [d*(1-j), d*(1+j)]) and capped
// at MaxDelay. MaxRetries counts retries after the first attempt, so a
// policy with MaxRetries=3 issues at most 4 calls.
type Backoff struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64

	// Sleep replaces the real clock when set. Tests inject a recorder here;
	// production leaves it nil and Retry waits on a context-aware timer.
	Sleep func(time.Duration)

	// OnRetry is invoked before each sleep with the attempt index (0-based)
	// and the chosen delay.
	OnRetry func(attempt int, delay time.Duration)
}

// DefaultBackoff returns the policy used by all integrations unless
// overridden in settings: 3 retries, 1s base, 30s cap, 20% jitter.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Jitter:     0.2,
	}
}

// Delay computes the backoff delay for the given 0-based attempt.
// The exponential value is capped at MaxDelay before jitter is applied,
// and the jittered result never exceeds MaxDelay.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.BaseDelay << uint(attempt)
	if d <= 0 || (b.MaxDelay > 0 && d > b.MaxDelay) {
		d = b.MaxDelay
	}
	if b.Jitter > 0 {
		spread := 1 - b.Jitter + 2*b.Jitter*rand.Float64()
		d = time.Duration(float64(d) * spread)
		if b.MaxDelay > 0 && d > b.MaxDelay {
			d = b.MaxDelay
		}
	}
	return d
}

// Retry executes fn, retrying transient failures per the policy.
//
// Only errors wrapped in [RetryableError] or [RateLimitError] trigger a
// retry; anything else is returned immediately. A RateLimitError carrying a
// Retry-After duration sleeps exactly that long regardless of the attempt
// count. Returns the last error once retries are exhausted, or ctx.Err()
// if the context is cancelled while waiting.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	retries := max(b.MaxRetries, 0)
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if attempt >= retries {
			return lastErr
		}

		delay := b.Delay(attempt)
		var rle *RateLimitError
		if errors.As(lastErr, &rle) && rle.RetryAfter > 0 {
			delay = rle.RetryAfter
		}
		if b.OnRetry != nil {
			b.OnRetry(attempt, delay)
		}
		if err := b.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (b Backoff) sleep(ctx context.Context, d time.Duration) error {
	if b.Sleep != nil {
		b.Sleep(d)
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// IsRetryable reports whether err should trigger another attempt.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError)) || errors.As(err, new(*RateLimitError))
}
