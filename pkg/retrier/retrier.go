// Package retrier re-runs failed quote fetches with capped exponential backoff.
package retrier

import (
	"context"
	"math/rand"
	"time"
)

const (
	defaultInitialInterval = 200 * time.Millisecond
	defaultMaxInterval     = 2 * time.Second
	defaultMaxRetries      = 2
	jitterFraction         = 0.1
)

// Retrier decides how often and how long to wait before fetching again.
type Retrier struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxRetries      int
	retryIf         func(error) bool
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithInitialInterval sets the wait before the first retry. Each later wait doubles.
func WithInitialInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.initialInterval = d
	}
}

// WithMaxInterval caps the wait between two fetches.
func WithMaxInterval(d time.Duration) Option {
	return func(r *Retrier) {
		r.maxInterval = d
	}
}

// WithMaxRetries sets how many fetches follow the first failed one.
func WithMaxRetries(n int) Option {
	return func(r *Retrier) {
		r.maxRetries = n
	}
}

// WithRetryIf limits retries to errors accepted by fn. Other errors are returned immediately.
func WithRetryIf(fn func(error) bool) Option {
	return func(r *Retrier) {
		r.retryIf = fn
	}
}

// New creates a Retrier tuned for interactive quotes: two retries, 200ms then 400ms.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		initialInterval: defaultInitialInterval,
		maxInterval:     defaultMaxInterval,
		maxRetries:      defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backoff returns the base wait before retry number n (1-based), without jitter.
func (r *Retrier) Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := r.initialInterval
	for i := 1; i < n && d < r.maxInterval; i++ {
		d *= 2
	}
	if d > r.maxInterval {
		d = r.maxInterval
	}
	return d
}

// Do calls fetch until it succeeds, returns a non-retryable error, runs out
// of retries or ctx is done. The last error is returned.
func (r *Retrier) Do(ctx context.Context, fetch func(ctx context.Context) error) error {
	err := fetch(ctx)
	for retry := 1; err != nil && retry <= r.maxRetries; retry++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if r.retryIf != nil && !r.retryIf(err) {
			return err
		}
		if waitErr := wait(ctx, jittered(r.Backoff(retry))); waitErr != nil {
			return waitErr
		}
		err = fetch(ctx)
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Fetch is Do for calls that return a value, e.g. a quote.
func Fetch[T any](ctx context.Context, r *Retrier, fetch func(ctx context.Context) (T, error)) (T, error) {
	var value T
	err := r.Do(ctx, func(ctx context.Context) error {
		var err error
		value, err = fetch(ctx)
		return err
	})
	return value, err
}

func jittered(d time.Duration) time.Duration {
	spread := (rand.Float64()*2 - 1) * jitterFraction * float64(d)
	if j := time.Duration(float64(d) + spread); j > 0 {
		return j
	}
	return 0
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
