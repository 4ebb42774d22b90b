package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// maxAttempts bounds how many times a single upstream call is issued.
	maxAttempts = 2
	// retryBackoff is the wait before the second attempt.
	retryBackoff = 500 * time.Millisecond
)

// StatusError reports a non-2xx response from an upstream API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether an upstream failure is transient enough to retry.
// Rate limits, server-side errors and timeouts qualify. Client errors such as
// a rejected request body are surfaced immediately.
func retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// doWithRetry runs fn up to maxAttempts times, backing off between attempts.
// It returns the last error if all attempts fail.
func doWithRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

// IsTimeout reports whether err was caused by an upstream deadline rather
// than a provider-side failure. Callers use it to pick the error kind they
// surface.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
