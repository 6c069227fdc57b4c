// Package ratelimit provides the token-bucket admission gate shared by every
// request a client dispatches.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces requests using a token bucket: capacity burst, refilled at
// rps tokens per second. A limiter built with rps <= 0 is disabled and admits
// every request immediately, so call sites stay uniform. Limiter is safe for
// concurrent use and its configuration cannot change after construction.
type Limiter struct {
	bucket *rate.Limiter // nil when disabled
}

// NewLimiter creates a rate limiter with the specified RPS and burst
// capacity. Burst is floored at one token: a bucket that can never hold a
// whole token would block forever. rps <= 0 disables pacing entirely.
func NewLimiter(rps float64, burst int) *Limiter {
	if rps <= 0 {
		return &Limiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Enabled reports whether the limiter actually paces requests.
func (l *Limiter) Enabled() bool {
	return l.bucket != nil
}

// Allow consumes a token immediately if one is available and reports whether
// it was. A disabled limiter always allows.
func (l *Limiter) Allow() bool {
	if l.bucket == nil {
		return true
	}
	return l.bucket.Allow()
}

// Wait blocks until a token is granted or the context is done. Token grants
// are atomic under concurrency: parallel waiters never overdraw the bucket,
// they queue on the refill schedule instead.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.bucket == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}

// Stats returns a point-in-time snapshot of the bucket. Because tokens
// refill continuously the snapshot is advisory only.
func (l *Limiter) Stats() LimiterStats {
	if l.bucket == nil {
		return LimiterStats{}
	}

	// Probe the delay a request would incur right now, then return the
	// token so the probe has no side effect on admission.
	reservation := l.bucket.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()

	return LimiterStats{
		Enabled:         true,
		RPS:             float64(l.bucket.Limit()),
		Burst:           l.bucket.Burst(),
		TokensAvailable: l.bucket.Tokens(),
		Delay:           delay,
	}
}

// LimiterStats represents a snapshot of a limiter's state.
type LimiterStats struct {
	Enabled         bool          `json:"enabled"`
	RPS             float64       `json:"rps"`
	Burst           int           `json:"burst"`
	TokensAvailable float64       `json:"tokens_available"`
	Delay           time.Duration `json:"delay"`
}

// IsThrottled returns true if a request dispatched now would have to wait.
func (s *LimiterStats) IsThrottled() bool {
	return s.Delay > 0
}
