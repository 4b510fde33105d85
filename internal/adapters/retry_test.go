package adapters

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"testing"
)

type fakeNetError struct{ error }

func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

var _ net.Error = fakeNetError{}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"bad conn", driver.ErrBadConn, true},
		{"net error", fakeNetError{errors.New("dial tcp: timeout")}, true},
		{"plain error", errors.New("syntax error near SELECT"), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsRetryable(c.err); got != c.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestExecuteWithRetry_FailsWithoutRetryingNonRetryableError(t *testing.T) {
	attempts := 0
	result := ExecuteWithRetry(context.Background(), DefaultRetryConfig(), func() error {
		attempts++
		return errors.New("permanent failure")
	})
	if result.Success {
		t.Fatal("expected failure")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestExecuteWithRetry_RetriesTransientFailureThenSucceeds(t *testing.T) {
	attempts := 0
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: 0, MaxDelay: 0, BackoffMultiplier: 2}
	result := ExecuteWithRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 2 {
			return fakeNetError{errors.New("dial tcp: connection refused")}
		}
		return nil
	})
	if !result.Success {
		t.Fatalf("expected eventual success, got %v", result.LastError)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetryResult_String(t *testing.T) {
	r := RetryResult{Attempts: 1, Success: true}
	if r.String() != "succeeded on first attempt" {
		t.Fatalf("got %q", r.String())
	}
	r = RetryResult{Attempts: 2, Success: true}
	if r.String() != "succeeded after 2 attempts" {
		t.Fatalf("got %q", r.String())
	}
	r = RetryResult{Attempts: 3, Success: false, LastError: errors.New("boom")}
	if r.String() != "failed after 3 attempts: boom" {
		t.Fatalf("got %q", r.String())
	}
}
