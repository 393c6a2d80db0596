package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// QueryLimiter paces queries toward the single remote search host. It is
// shared across all workers; rate.Limiter is safe for concurrent use.
type QueryLimiter struct {
	limiter *rate.Limiter
}

// NewQueryLimiter creates a limiter allowing requestsPerSecond with the
// given burst.
func NewQueryLimiter(requestsPerSecond float64, burst int) *QueryLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &QueryLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until the next query is allowed or ctx is done.
func (l *QueryLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
