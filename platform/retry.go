package platform

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Retry policy for outbound platform calls: up to MaxAttempts attempts,
// exponential backoff (BaseDelay * 2^attempt) plus random jitter up to
// MaxJitter so simultaneous callers don't retry in lockstep. Non-retriable
// failures abort immediately without consuming remaining attempts.

var nonRetriableStatus = map[int]bool{
	400: true, 401: true, 403: true, 404: true, 405: true, 409: true, 422: true,
}

var retriableStatus = map[int]bool{
	408: true, 429: true, 500: true, 501: true, 502: true, 503: true,
	504: true, 507: true, 508: true, 510: true, 511: true,
}

var nonRetriableHints = []string{
	"unauthorized", "forbidden", "permission denied", "invalid credentials",
	"authentication failed", "not found", "bad request", "method not allowed",
}

var retriableHints = []string{
	"network error", "timeout", "connection", "server error", "gateway",
	"unavailable",
}

// Retriable classifies a platform failure. Unclassified failures default to
// retriable: an optimistic retry beats a silent permanent failure.
func Retriable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if nonRetriableStatus[apiErr.Status] {
			return false
		}
		if retriableStatus[apiErr.Status] {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	for _, hint := range nonRetriableHints {
		if strings.Contains(message, hint) {
			return false
		}
	}
	for _, hint := range retriableHints {
		if strings.Contains(message, hint) {
			return true
		}
	}
	return true
}

// Retrier runs outbound calls under the retry policy.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration
}

// NewRetrier returns a Retrier with the production policy.
func NewRetrier() *Retrier {
	return &Retrier{MaxAttempts: 3, BaseDelay: time.Second, MaxJitter: time.Second}
}

// Do runs fn until it succeeds, fails non-retriably, exhausts attempts, or
// the context ends.
func (r *Retrier) Do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.BaseDelay * (1 << attempt)
			if r.MaxJitter > 0 {
				delay += rand.N(r.MaxJitter)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, ctx.Err())
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if !Retriable(err) {
			return err
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, r.MaxAttempts, err)
}
