// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one declarative classification pattern. Dialects declare their
// built-in tables as ordered []Rule slices; user drop-in rules are appended
// after the built-ins so built-in matches win the per-line overlap guard.
type Rule struct {
	// Category assigned to Findings produced by this rule.
	Category Category
	// Pattern is matched against the captured text. When it contains a
	// capture group, one Finding is emitted per distinct first-group capture;
	// otherwise a single summary Finding is emitted if the pattern matches
	// at least once.
	Pattern *regexp.Regexp
	// Severity is the baseline tier; the escalation keywords may raise it
	// one tier at Finding-creation time.
	Severity Severity
	// Summary is the Finding message. For capture-group rules it must
	// contain a single %s verb that receives the captured identifier.
	Summary string
}

// hasCapture reports whether the rule emits per-identifier Findings.
func (r Rule) hasCapture() bool {
	return r.Pattern.NumSubexp() > 0
}

// message renders the Finding message for a captured identifier, or the
// plain summary for capture-less rules.
func (r Rule) message(capture string) string {
	if capture == "" {
		return r.Summary
	}
	if strings.Contains(r.Summary, "%s") {
		return fmt.Sprintf(r.Summary, capture)
	}
	return r.Summary + ": " + capture
}

// MustRule compiles pattern and returns the assembled Rule. It panics on an
// invalid pattern and is intended for the static dialect tables.
func MustRule(category Category, pattern string, severity Severity, summary string) Rule {
	return Rule{
		Category: category,
		Pattern:  regexp.MustCompile(pattern),
		Severity: severity,
		Summary:  summary,
	}
}
