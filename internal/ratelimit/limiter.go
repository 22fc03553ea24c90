// Package ratelimit provides a single explicit-injected token bucket used
// to keep regulator API traffic under the host's published rate, without
// the auto-tuning behavior the fedsync crawler uses for best-effort feeds.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter blocks callers until a token is available. Unlike an
// adaptive limiter, its rate never changes based on observed responses:
// the regulator's published rate is a hard ceiling, not a starting guess.
type Limiter struct {
	inner *rate.Limiter
}

// New creates a Limiter that allows up to rps requests per second, with
// burst capacity for short bursts above the steady rate.
func New(rps float64, burst int) *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Acquire blocks until n tokens are available or ctx is done.
func (l *Limiter) Acquire(ctx context.Context, n int) error {
	return l.inner.WaitN(ctx, n)
}

// Limit reports the current configured rate in requests per second.
func (l *Limiter) Limit() float64 {
	return float64(l.inner.Limit())
}
