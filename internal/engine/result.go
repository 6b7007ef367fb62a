// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

type (
	// Result captures one external command invocation: both output streams,
	// the exit code, and any infrastructure error (command missing, context
	// canceled). A non-zero exit with Err == nil is a normal process
	// outcome, not an infrastructure failure.
	Result struct {
		Output    string
		ErrOutput string
		ExitCode  int
		Err       error
	}

	// CommandRunner invokes an external command and captures its output.
	// The production implementation shells out; tests substitute fakes so
	// phases can be exercised against fixture text.
	CommandRunner interface {
		Run(ctx context.Context, argv []string) *Result
	}

	execRunner struct{}
)

// Combined returns both output streams for classification. Package managers
// split diagnostics across stdout and stderr inconsistently, so the
// classifier always scans both.
func (r *Result) Combined() string {
	return r.Output + r.ErrOutput
}

// Failed reports whether the invocation failed, either at the
// infrastructure level or with a non-zero exit.
func (r *Result) Failed() bool {
	return r.Err != nil || r.ExitCode != 0
}

// NewExecRunner creates the production CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

// Run executes argv with captured output. The environment forces the C
// locale so the classification patterns see untranslated tool output, and
// disables interactive package-manager prompts.
func (execRunner) Run(ctx context.Context, argv []string) *Result {
	if len(argv) == 0 {
		return &Result{ExitCode: 1, Err: fmt.Errorf("empty command")}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		"LANG=C",
		"LC_ALL=C",
		"DEBIAN_FRONTEND=noninteractive",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Err = fmt.Errorf("failed to execute %s: %w", argv[0], err)
		}
	}

	return result
}
