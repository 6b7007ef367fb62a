// SPDX-License-Identifier: MPL-2.0

// Package hooks runs user-defined pre- and post-update hook scripts with the
// embedded POSIX interpreter (mvdan/sh), so hooks behave identically across
// distributions regardless of which /bin/sh the host ships.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// HookError is returned when a hook script fails. It carries the script's
// exit code for the CLI layer.
type HookError struct {
	Name     string
	ExitCode int
	Cause    error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hook %s failed: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("hook %s failed with exit code %d", e.Name, e.ExitCode)
}

// Unwrap returns the underlying cause, if any.
func (e *HookError) Unwrap() error { return e.Cause }

// Runner executes hook scripts with a fixed I/O configuration.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// NewRunner creates a hook Runner writing to the given streams. The hook
// environment is the process environment plus the provided KEY=VALUE extras
// (used to pass run facts like UPKEEP_DRY_RUN to the scripts).
func NewRunner(stdout, stderr io.Writer, extraEnv ...string) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		env:    append(os.Environ(), extraEnv...),
	}
}

// Run parses and executes one hook script. name identifies the hook in
// error messages ("pre-update", "post-update").
func (r *Runner) Run(ctx context.Context, name, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), name)
	if err != nil {
		return &HookError{Name: name, ExitCode: 1, Cause: fmt.Errorf("syntax error: %w", err)}
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(nil, r.stdout, r.stderr),
	)
	if err != nil {
		return &HookError{Name: name, ExitCode: 1, Cause: err}
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &HookError{Name: name, ExitCode: int(exitStatus)}
		}
		return &HookError{Name: name, ExitCode: 1, Cause: err}
	}

	return nil
}
