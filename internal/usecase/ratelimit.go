package usecase

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// ProbeLimiter spaces outbound probes so the store never sees more than one
// request per delay window, no matter how many items are watched or how many
// manual checks run. One instance is shared by the monitor and the command
// handlers.
type ProbeLimiter struct {
	limiter *rate.Limiter
}

// NewProbeLimiter builds a limiter with the given minimum delay between
// probes. A zero delay disables pacing.
func NewProbeLimiter(delay time.Duration) *ProbeLimiter {
	if delay <= 0 {
		return &ProbeLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &ProbeLimiter{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Acquire blocks until the delay window since the previous acquire has
// elapsed, or the context is done.
func (l *ProbeLimiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
