// Package ratelimit throttles emitted objects.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative perSecond for no rate limiting.
func New(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	// Burst of 1: the first object passes immediately, the rest are spaced.
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
