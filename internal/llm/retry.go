package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries calls that failed because the vendor was rate
// limited or unreachable. Each retry is a fresh grading call, so only
// failures that produced no verdict are retried.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic. Retrying is opt-in: with
// MaxAttempts of 1 or less the provider is returned unwrapped and a failed
// call surfaces immediately.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	wait := r.config.InitialWait
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil || attempt >= r.config.MaxAttempts || !Transient(err) {
			return resp, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(jitter(wait)):
		}
		wait = min(time.Duration(float64(wait)*r.config.Multiplier), r.config.MaxWait)
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// Transient reports whether err came from a rate limit or an unreachable
// vendor. Cancellation, deadlines and malformed replies are final.
func Transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rl *ErrRateLimit
	var unavail *ErrProviderUnavailable
	return errors.As(err, &rl) || errors.As(err, &unavail)
}

// jitter spreads d by up to 20% either way.
func jitter(d time.Duration) time.Duration {
	return max(0, time.Duration(float64(d)*(0.8+0.4*rand.Float64())))
}
