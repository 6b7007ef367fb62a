// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"upkeep-cli/internal/dialect"
	"upkeep-cli/internal/engine"
	"upkeep-cli/internal/hooks"
	"upkeep-cli/internal/issue"
)

// classifyRunError maps update-run failures to issue catalog IDs and returns
// a styled message for CLI rendering. It preserves actionable error details.
func classifyRunError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	issueID = issue.UpdateFailedId

	switch {
	case errors.Is(err, dialect.ErrToolMissing):
		issueID = issue.PackageManagerNotFoundId
	case errors.Is(err, dialect.ErrUnsupportedHost):
		issueID = issue.UnsupportedHostId
	case errors.Is(err, engine.ErrLockTimeout):
		issueID = issue.LockTimeoutId
	case errors.Is(err, engine.ErrAlreadyRunning):
		issueID = issue.AnotherInstanceRunningId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.PermissionDeniedId
	default:
		var he *hooks.HookError
		if errors.As(err, &he) {
			issueID = issue.HookFailedId
			break
		}
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			switch ae.Operation {
			case "load configuration", "validate configuration":
				issueID = issue.ConfigLoadFailedId
			case "load rules":
				issueID = issue.RulesLoadFailedId
			}
		}
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// reportFatal renders the issue card for a fatal error to stderr, followed
// by the styled error detail, and returns an ExitError carrying code.
func reportFatal(err error, code int) error {
	issueID, styledMsg := classifyRunError(err, verbose)
	rendered, _ := issue.Get(issueID).Render("dark")
	fmt.Fprint(os.Stderr, rendered)
	fmt.Fprint(os.Stderr, styledMsg)
	return &ExitError{Code: code, Err: err}
}
