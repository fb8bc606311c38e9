package ingest

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle bounds how fast a synthetic or benchmark delta producer may
// submit to the engine, per SPEC_FULL.md §12.3. Real venue adapters
// are bound by the venue's own rate, so Throttle is only used by
// cmd/bookbench and tests that need to simulate backpressure.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle constructs a Throttle allowing up to ratePerSecond
// submissions per second, with a burst allowance of burst.
func NewThrottle(ratePerSecond float64, burst int) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until the throttle permits one more submission, or ctx
// is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// Allow reports, without blocking, whether a submission is permitted
// right now.
func (t *Throttle) Allow() bool {
	return t.limiter.Allow()
}
