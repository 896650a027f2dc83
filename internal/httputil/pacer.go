// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces successive calls at least Interval apart. The first call never
// waits, so a loop that calls Wait before every request gets "delay between
// requests, none before the first" for free. A nil Pacer never waits.
type Pacer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer returns a pacer with the given spacing. A non-positive interval
// disables waiting.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{interval: interval, limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Interval returns the configured spacing.
func (p *Pacer) Interval() time.Duration {
	if p == nil {
		return 0
	}
	return p.interval
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
