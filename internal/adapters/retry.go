// Retry logic for transient connection failures when an adapter opens
// its database/sql handle. Deliberately not used on query execution
// itself — a query that fails once is retried only by the caller, never
// silently, and this utility returns a RetryResult that always shows
// whether a retry happened and what the prior attempts' errors were.
package adapters

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including first try).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the initial delay between retries.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 5s
	MaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	// Default: 2.0
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryResult contains the result of a retry operation.
type RetryResult struct {
	// Attempts is the number of attempts made.
	Attempts int

	// LastError is the last error encountered (nil if successful).
	LastError error

	// Errors contains all errors from each attempt.
	Errors []error

	// Success indicates whether the operation ultimately succeeded.
	Success bool
}

// String provides a human-readable summary of the retry result.
func (r RetryResult) String() string {
	if r.Success {
		if r.Attempts == 1 {
			return "succeeded on first attempt"
		}
		return fmt.Sprintf("succeeded after %d attempts", r.Attempts)
	}
	return fmt.Sprintf("failed after %d attempts: %v", r.Attempts, r.LastError)
}

// RetryableError wraps an error with retry information.
// This allows callers to see both the original error and retry context.
type RetryableError struct {
	Result RetryResult
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Result.Attempts, e.Result.LastError)
}

func (e *RetryableError) Unwrap() error {
	return e.Result.LastError
}

// IsRetryable determines if an error is likely transient and worth retrying.
// Semantic errors (bad SQL, auth failures) are never retryable — only
// connection-level failures are.
//
// Returns true for:
//   - Connection timeouts
//   - Network errors
//   - Temporary unavailability
//
// Returns false for:
//   - Authentication errors
//   - Authorization errors
//   - Syntax errors
//   - Semantic validation errors
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// A caller-driven cancellation/deadline means the caller gave up -
	// retrying it would ignore that signal, so it's NOT retryable.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// database/sql reports a dead pooled connection this way; the next
	// attempt opens a fresh one, so it's always worth one more try.
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	// A driver-level network error (dial timeout, connection refused,
	// temporary DNS failure) is exactly the "connection timeouts /
	// network errors / temporary unavailability" case this function's
	// doc promises retries for.
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Conservatively return false for anything not explicitly recognized
	// above: an unsure case should surface as a failure, not a retry.
	return false
}

// ExecuteWithRetry executes a function with retry logic.
//
// The function is NOT hidden or automatic - callers explicitly choose
// to use retry logic and receive full information about what happened.
//
// Usage (SQLProducer's actual call, retrying the first ping of a fresh
// connection):
//
//	result := adapters.ExecuteWithRetry(ctx, adapters.DefaultRetryConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
//	if !result.Success {
//	    return nil, errs.NewProducerFailed(table, &adapters.RetryableError{Result: result})
//	}
func ExecuteWithRetry(ctx context.Context, config RetryConfig, fn func() error) RetryResult {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}

	result := RetryResult{
		Errors: make([]error, 0, config.MaxAttempts),
	}

	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result.Attempts = attempt

		// Check context before each attempt
		if ctx.Err() != nil {
			result.LastError = ctx.Err()
			result.Errors = append(result.Errors, ctx.Err())
			return result
		}

		// Execute the function
		err := fn()
		if err == nil {
			result.Success = true
			return result
		}

		result.LastError = err
		result.Errors = append(result.Errors, err)

		// Check if error is retryable
		if !IsRetryable(err) {
			return result
		}

		// Don't sleep after last attempt
		if attempt < config.MaxAttempts {
			select {
			case <-ctx.Done():
				result.LastError = ctx.Err()
				result.Errors = append(result.Errors, ctx.Err())
				return result
			case <-time.After(delay):
				// Apply exponential backoff
				delay = time.Duration(float64(delay) * config.BackoffMultiplier)
				if delay > config.MaxDelay {
					delay = config.MaxDelay
				}
			}
		}
	}

	return result
}
