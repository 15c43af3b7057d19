package netx

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryOptions configures opt-in retries of transient HTTP failures.
//
// Retries counts attempts after the first one; zero sends every request once.
// Waits double from BaseDelay up to MaxDelay with up to 25% jitter, unless the
// server asked for a specific wait with Retry-After.
type RetryOptions struct {
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (o RetryOptions) normalized() RetryOptions {
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 300 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 2 * time.Second
	}
	return o
}

// statusError is a 5xx or 429 response worth another attempt.
type statusError struct {
	status     int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("retryable status: %d", e.status)
}

// newStatusError reads a delay-seconds Retry-After header. HTTP-date values
// are ignored in favour of the backoff schedule.
func newStatusError(resp *http.Response) *statusError {
	e := &statusError{status: resp.StatusCode}
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
		e.retryAfter = time.Duration(s) * time.Second
	}
	return e
}

// wait returns the pause before retry number attempt+1.
func (o RetryOptions) wait(attempt int, err error) time.Duration {
	var se *statusError
	if errors.As(err, &se) && se.retryAfter > 0 {
		return min(se.retryAfter, o.MaxDelay)
	}
	d := o.BaseDelay << attempt
	if d <= 0 || d > o.MaxDelay {
		d = o.MaxDelay
	}
	return d + rand.N(d/4+1)
}

// RetryOperation runs fn until it succeeds, fails with a permanentError, runs
// out of retries or ctx is done, and returns fn's last error.
func RetryOperation[T any](ctx context.Context, opts RetryOptions, fn func() (T, error)) (T, error) {
	opts = opts.normalized()
	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) || attempt >= opts.Retries {
			return zero, err
		}

		wait := opts.wait(attempt, err)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
