// Package throttle provides the transport policies applied to every
// marketplace request: a FIFO minimum-interval rate limiter and a retry
// policy with exponential backoff over transient HTTP statuses.
package throttle

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter serializes calls so that consecutive starts are spaced at least
// a minimum interval apart. Waiters are served in FIFO order; a waiter
// cancelled via its context gives its slot back without advancing the clock.
type Limiter struct {
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewLimiter creates a limiter with the given minimum spacing between call
// starts.
func NewLimiter(minInterval time.Duration, logger *zap.Logger) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logger,
	}
}

// Wait blocks until the caller may start its call, or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()

	err := l.limiter.Wait(ctx)
	if err != nil {
		return err
	}

	waited := time.Since(start)
	if waited > time.Millisecond {
		ThrottleWaitSeconds.Observe(waited.Seconds())
		l.logger.Debug("throttle-waited", zap.Duration("waited", waited))
	}

	return nil
}
