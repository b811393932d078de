package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/log"
)

// RetryPolicy bounds remote calls. Every attempt gets its own Timeout;
// only reads use more than one attempt.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	Timeout   time.Duration
}

// DefaultRetryPolicy returns the policy used by NewClient.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  constants.ReadAttempts,
		BaseDelay: constants.RetryBaseDelay,
		Timeout:   constants.RemoteCallTimeout,
	}
}

// read runs fn with a per-attempt timeout, retrying retryable failures
// with exponential backoff.
func (p RetryPolicy) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = p.once(ctx, fn)
		if err == nil || !isRetryable(ctx, err) || attempt == attempts {
			return err
		}

		log.Debug("retrying GitHub call", "op", op, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// write runs fn exactly once with a timeout.
func (p RetryPolicy) write(ctx context.Context, fn func(ctx context.Context) error) error {
	return p.once(ctx, fn)
}

func (p RetryPolicy) once(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Timeout <= 0 {
		return asRateLimited(fn(ctx))
	}
	callCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()
	return asRateLimited(fn(callCtx))
}

// asRateLimited marks the go-github rate limit errors, including the ones
// it returns without sending a request, as ErrRateLimited.
func asRateLimited(err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		if !errors.Is(err, ErrRateLimited) {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
	return err
}

// isRetryable reports whether err is a transient network or server failure.
// Cancellation of the parent context, rate limiting and client errors are final.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return false
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return true
}
