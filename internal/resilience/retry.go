// Package resilience retries transient failures with exponential backoff.
package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff controls how often and how patiently an operation is retried.
type Backoff struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int
	// Initial is the delay before the first retry.
	Initial time.Duration
	// Max caps any single delay.
	Max time.Duration
	// Jitter spreads each delay by up to this fraction in either direction.
	Jitter float64
}

// NoRetry tries an operation exactly once.
var NoRetry = Backoff{Attempts: 1}

// PageBackoff returns the backoff used for page fetches.
func PageBackoff(retries int) Backoff {
	return Backoff{
		Attempts: retries + 1,
		Initial:  250 * time.Millisecond,
		Max:      2 * time.Second,
		Jitter:   0.2,
	}
}

// delay returns the wait before retry number attempt (0-based).
func (b Backoff) delay(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(2, float64(attempt))
	if b.Max > 0 {
		d = math.Min(d, float64(b.Max))
	}
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

// Retry calls fn until it succeeds, returns a non-transient error, the
// attempts run out, or ctx is done. The last error is returned as is.
func Retry[T any](ctx context.Context, b Backoff, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(b.Attempts, 1)

	var (
		zero T
		err  error
	)
	for attempt := range attempts {
		var val T
		if val, err = fn(ctx); err == nil {
			return val, nil
		}
		if ctx.Err() != nil || !IsTransient(err) || attempt == attempts-1 {
			return zero, err
		}

		wait := b.delay(attempt)
		zap.L().Debug("resilience: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
	return zero, err
}
