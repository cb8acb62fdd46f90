package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"
)

func TestWithRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	got, err := withRetry(context.Background(), RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond}, slog.Default(), "test",
		func() (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("temporary")
			}
			return 42, nil
		})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if got != 42 {
		t.Errorf("withRetry() = %d, want 42", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")
	_, err := withRetry(context.Background(), RetryPolicy{MaxAttempts: 2, InitialInterval: time.Millisecond}, slog.Default(), "test",
		func() (int, error) {
			calls++
			return 0, sentinel
		})
	if !errors.Is(err, sentinel) {
		t.Errorf("withRetry() error = %v, want %v", err, sentinel)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWithRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, _ = withRetry(context.Background(), RetryPolicy{}, slog.Default(), "test", func() (int, error) {
		calls++
		return 0, errors.New("fail")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_PermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "non-transient status", err: fmt.Errorf("wrapped: %w", nonTransientError{})},
		{name: "context canceled", err: context.Canceled},
		{name: "deadline exceeded", err: fmt.Errorf("call: %w", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := withRetry(context.Background(), RetryPolicy{MaxAttempts: 5, InitialInterval: time.Millisecond}, slog.Default(), "test",
				func() (int, error) {
					calls++
					return 0, tt.err
				})
			if !errors.Is(err, tt.err) {
				t.Errorf("withRetry() error = %v, want %v", err, tt.err)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	}
}

func TestPermanentError(t *testing.T) {
	if permanentError(errors.New("network")) {
		t.Error("plain errors should be retried")
	}
	if !permanentError(nonTransientError{}) {
		t.Error("non-transient errors should not be retried")
	}
}
