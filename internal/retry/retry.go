package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/uxradar/internal/model"
)

// Retrier re-runs an operation a bounded number of times when it fails with
// an error the retryable predicate accepts. The delay between attempts is fixed.
type Retrier struct {
	maxRetries int
	delay      time.Duration
	retryable  func(error) bool
	logger     *slog.Logger

	// OnRetry, when set, is called before each wait.
	OnRetry func(attempt int, err error)
}

// NewRetrier builds a Retrier. maxRetries counts attempts after the first.
func NewRetrier(maxRetries int, delay time.Duration, retryable func(error) bool, logger *slog.Logger) *Retrier {
	return &Retrier{
		maxRetries: maxRetries,
		delay:      delay,
		retryable:  retryable,
		logger:     logger,
	}
}

// Do runs op, retrying while the error is retryable and attempts remain.
// The last error is returned unchanged so callers can inspect it.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil || !r.retryable(err) {
		return err
	}

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		r.logger.Warn("retrying after retryable error",
			"attempt", attempt,
			"max_retries", r.maxRetries,
			"delay", r.delay,
			"error", err,
		)
		if r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(r.delay):
		}

		err = op(ctx)
		if err == nil || !r.retryable(err) {
			return err
		}
	}

	return err
}

// IsRateLimited reports whether err carries an HTTP 429.
func IsRateLimited(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *model.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}
