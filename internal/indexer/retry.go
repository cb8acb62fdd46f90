package indexer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds the retries of a single embedding or upsert call.
type RetryPolicy struct {
	MaxAttempts     int           // Total attempts including the first one
	InitialInterval time.Duration // Delay before the second attempt; doubles afterwards
}

// DefaultRetryPolicy returns 3 attempts starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: 500 * time.Millisecond}
}

// transient is implemented by errors that know whether a retry can help,
// such as llm.StatusError.
type transient interface {
	Transient() bool
}

// permanentError reports errors that retrying cannot fix.
func permanentError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t transient
	if errors.As(err, &t) {
		return !t.Transient()
	}
	return false
}

// withRetry runs fn until it succeeds, fails permanently or the policy
// runs out of attempts. The last error is returned.
func withRetry[T any](ctx context.Context, policy RetryPolicy, logger *slog.Logger, op string, fn func() (T, error)) (T, error) {
	attempts := max(policy.MaxAttempts, 1)

	b := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		b.InitialInterval = policy.InitialInterval
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		result, err := fn()
		if err != nil && permanentError(err) {
			return result, backoff.Permanent(err)
		}
		return result, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.WarnContext(ctx, "retrying after error",
				"op", op,
				"attempt", attempt,
				"max_attempts", attempts,
				"next_delay", next,
				"error", err)
		}),
	)
}
