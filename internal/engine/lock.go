// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLockTimeout is the sentinel error wrapped by LockTimeoutError.
var ErrLockTimeout = errors.New("package database lock timeout")

// LockTimeoutError is returned when the package-database lock stayed held
// through every retry attempt.
type LockTimeoutError struct {
	Attempts int
}

// Error implements the error interface.
func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("package database still locked after %d attempts", e.Attempts)
}

// Unwrap returns ErrLockTimeout for errors.Is detection.
func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }

// LockRetry bounds the wait for the shared package-database lock. The
// package manager owns that lock; all upkeep can do is poll with linear
// backoff (attempt n sleeps n times the base interval) up to a fixed
// attempt ceiling, then fail the run.
type LockRetry struct {
	// Attempts is the maximum number of invocations, minimum 1.
	Attempts int
	// Backoff is the base sleep interval between attempts.
	Backoff time.Duration
}

// DefaultLockRetry matches the conventional five-attempt, five-second ramp.
func DefaultLockRetry() LockRetry {
	return LockRetry{Attempts: 5, Backoff: 5 * time.Second}
}

// runWithLockRetry invokes argv through runner, retrying while the output
// indicates lock contention. Exhausting the attempts returns a
// LockTimeoutError; any other outcome, success or failure, is returned to
// the caller for classification.
func runWithLockRetry(ctx context.Context, runner CommandRunner, argv []string, lockHeld func(string) bool, policy LockRetry) (*Result, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		res := runner.Run(ctx, argv)
		if res.Err != nil || res.ExitCode == 0 || !lockHeld(res.Combined()) {
			return res, nil
		}

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * policy.Backoff):
		}
	}

	return nil, &LockTimeoutError{Attempts: attempts}
}
