package throttle

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/types"
)

// Transient statuses worth retrying. Anything else fails immediately.
var transientStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Retryer retries an operation with exponential backoff and jitter.
// Attempt n sleeps initialDelay * 2^(n-1) plus jitter in [0, 10% of the
// base delay). Retries stop on success, on a non-transient status, when
// attempts are exhausted, or when the total sleep budget is spent. The
// returned error is always the last one observed.
type Retryer struct {
	maxAttempts  int
	initialDelay time.Duration
	timeout      time.Duration // total sleep budget
	logger       *zap.Logger

	// jitter is swapped in tests for determinism.
	jitter func(base time.Duration) time.Duration
}

// NewRetryer creates a retry policy. timeout bounds the cumulative sleep
// time, not the operation itself.
func NewRetryer(maxAttempts int, initialDelay, timeout time.Duration, logger *zap.Logger) *Retryer {
	return &Retryer{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		timeout:      timeout,
		logger:       logger,
		jitter: func(base time.Duration) time.Duration {
			return time.Duration(rand.Float64() * 0.1 * float64(base))
		},
	}
}

// Do runs op until it succeeds or the policy gives up.
func (r *Retryer) Do(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	var waited time.Duration

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		status, ok := types.StatusOf(lastErr)
		if !ok || !transientStatuses[status] {
			return lastErr
		}
		if waited >= r.timeout {
			break
		}

		base := r.initialDelay * (1 << attempt)
		sleep := base + r.jitter(base)
		if remaining := r.timeout - waited; sleep > remaining {
			sleep = remaining
		}

		RetriesTotal.Inc()
		r.logger.Warn("retrying-request",
			zap.Int("attempt", attempt+1),
			zap.Int("status", status),
			zap.Duration("sleep", sleep))

		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return ctx.Err()
		}
		waited += sleep
	}

	return lastErr
}
