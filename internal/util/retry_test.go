package util

import (
	"context"
	"errors"
	"testing"
)

func TestRetryWithContext_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	got, err := RetryWithContext(context.Background(), 3, func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RetryWithContext() error = %v", err)
	}
	if got != 42 {
		t.Fatalf("RetryWithContext() got = %d, want 42", got)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithContext_ReturnsLastError(t *testing.T) {
	wantErr := errors.New("still broken")
	attempts := 0
	_, err := RetryWithContext(context.Background(), 2, func(ctx context.Context) (string, error) {
		attempts++
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RetryWithContext() error = %v, want %v", err, wantErr)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}

func TestRetryWithContext_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := RetryWithContext(ctx, 5, func(ctx context.Context) (int, error) {
		attempts++
		cancel()
		return 0, context.Canceled
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RetryWithContext() error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (cancellation is not retried)", attempts)
	}
}

func TestRetryWithContext_ZeroTriesDefaultsToOne(t *testing.T) {
	attempts := 0
	_, err := RetryWithContext(context.Background(), 0, func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("boom")
	})
	if err == nil {
		t.Fatal("RetryWithContext() expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestRetryErrWithContext_Succeeds(t *testing.T) {
	attempts := 0
	err := RetryErrWithContext(context.Background(), 3, func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryErrWithContext() error = %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
}
