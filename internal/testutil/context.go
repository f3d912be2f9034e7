package testutil

import (
	"context"
	"errors"
	"time"
)

// CancelResult holds the result of running a function with cancellation.
type CancelResult struct {
	// Err is the error returned by the function (may be nil).
	Err error
	// WasCancelled is true if the error is context.Canceled.
	WasCancelled bool
	// Completed is true if the function returned before the timeout.
	Completed bool
	// Duration is how long the function ran.
	Duration time.Duration
}

// RunWithCancel runs a function with a cancellable context. It cancels the
// context after cancelAfter and waits up to timeout for the function to
// return.
//
// Example:
//
//	result := testutil.RunWithCancel(func(ctx context.Context) error {
//	    return client.WaitReady(ctx, time.Minute)
//	}, 50*time.Millisecond, 1*time.Second)
//
//	if !result.WasCancelled {
//	    t.Error("function did not respect cancellation")
//	}
func RunWithCancel(fn func(context.Context) error, cancelAfter, timeout time.Duration) CancelResult {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)

	go func() {
		errCh <- fn(ctx)
	}()

	time.Sleep(cancelAfter)
	cancel()

	select {
	case err := <-errCh:
		return CancelResult{
			Err:          err,
			WasCancelled: errors.Is(err, context.Canceled),
			Completed:    true,
			Duration:     time.Since(start),
		}
	case <-time.After(timeout):
		return CancelResult{
			Err:          nil,
			WasCancelled: false,
			Completed:    false,
			Duration:     time.Since(start),
		}
	}
}

// RunWithTimeout runs a function with a timeout context and reports whether
// it completed in time.
func RunWithTimeout(fn func(context.Context) error, timeout time.Duration) CancelResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)

	go func() {
		errCh <- fn(ctx)
	}()

	select {
	case err := <-errCh:
		return CancelResult{
			Err:          err,
			WasCancelled: errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded),
			Completed:    true,
			Duration:     time.Since(start),
		}
	case <-time.After(timeout + 100*time.Millisecond): // Small buffer
		return CancelResult{
			Err:          nil,
			WasCancelled: false,
			Completed:    false,
			Duration:     time.Since(start),
		}
	}
}

// WaitForCondition polls a condition function until it returns true or the
// timeout elapses. Useful for waiting on async state changes in tests.
//
// Example:
//
//	ok := testutil.WaitForCondition(func() bool {
//	    runs, _ := h.DB.ListRuns(1)
//	    return len(runs) > 0
//	}, 50*time.Millisecond, 2*time.Second)
func WaitForCondition(condition func() bool, pollInterval, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(pollInterval)
	}
	return false
}
