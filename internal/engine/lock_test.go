// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// sequenceRunner returns its results in order, repeating the last one.
type sequenceRunner struct {
	results []*Result
	calls   int
}

func (s *sequenceRunner) Run(context.Context, []string) *Result {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]
}

func lockHeld(text string) bool {
	return strings.Contains(text, "locked")
}

func TestRunWithLockRetry(t *testing.T) {
	locked := &Result{ErrOutput: "database locked by another process\n", ExitCode: 1}
	ok := &Result{Output: "done\n"}
	failed := &Result{ErrOutput: "some other error\n", ExitCode: 2}

	tests := []struct {
		name      string
		results   []*Result
		attempts  int
		wantCalls int
		wantErr   bool
		wantExit  int
	}{
		{"immediate success", []*Result{ok}, 3, 1, false, 0},
		{"lock clears on second attempt", []*Result{locked, ok}, 3, 2, false, 0},
		{"non-lock failure returned without retry", []*Result{failed}, 3, 1, false, 2},
		{"lock held throughout is fatal", []*Result{locked}, 3, 3, true, 0},
		{"attempt floor of one", []*Result{locked}, 0, 1, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &sequenceRunner{results: tt.results}
			policy := LockRetry{Attempts: tt.attempts, Backoff: time.Millisecond}

			res, err := runWithLockRetry(context.Background(), runner, []string{"pkg", "op"}, lockHeld, policy)

			if runner.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", runner.calls, tt.wantCalls)
			}
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected lock timeout, got result %+v", res)
				}
				if !errors.Is(err, ErrLockTimeout) {
					t.Errorf("error %v does not wrap ErrLockTimeout", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.ExitCode != tt.wantExit {
				t.Errorf("ExitCode = %d, want %d", res.ExitCode, tt.wantExit)
			}
		})
	}
}

func TestRunWithLockRetry_ContextCanceled(t *testing.T) {
	locked := &Result{ErrOutput: "database locked\n", ExitCode: 1}
	runner := &sequenceRunner{results: []*Result{locked}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runWithLockRetry(ctx, runner, []string{"pkg", "op"}, lockHeld, LockRetry{Attempts: 5, Backoff: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
