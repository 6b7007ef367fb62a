// SPDX-License-Identifier: MPL-2.0

package classify

import "strings"

type (
	// Category identifies what kind of follow-up action a Finding calls for.
	Category string

	// Severity orders Findings for presentation. Higher values are more urgent.
	// The zero value is SeverityOptional.
	Severity int

	// Finding is one classified diagnostic fact derived from package-manager
	// output or a system probe. Findings are immutable once created; the
	// aggregator only groups and orders, it never rewrites Message.
	Finding struct {
		// Category is the semantic bucket (config conflict, reboot, ...).
		Category Category
		// Severity is assigned once, at creation time, by the rule that
		// produced the Finding. It is never re-derived downstream.
		Severity Severity
		// Message is the human-readable description. For capture-group rules
		// it names the specific file or package involved.
		Message string
		// Source tags the probe or operation that produced the Finding
		// (e.g. "apt-upgrade", "reboot-marker", "dpkg-audit").
		Source string
	}
)

const (
	// CategoryConfigConflict flags a configuration file the package manager
	// could not merge (dpkg-new/rpmnew style backups, conffile prompts).
	CategoryConfigConflict Category = "config-conflict"
	// CategoryRebootRequired flags that the system must be rebooted for the
	// applied updates to take full effect.
	CategoryRebootRequired Category = "reboot-required"
	// CategoryBrokenPackage flags broken dependencies or an interrupted
	// package database.
	CategoryBrokenPackage Category = "broken-package"
	// CategoryServiceRestart flags a running service using outdated libraries.
	CategoryServiceRestart Category = "service-restart"
	// CategoryOptionalSuggestion flags a non-blocking hint, such as a missing
	// optional tool or packages that were held back.
	CategoryOptionalSuggestion Category = "suggestion"
)

const (
	// SeverityOptional is informational; safe to ignore.
	SeverityOptional Severity = iota
	// SeverityRecommended should be acted on at the next convenient moment.
	SeverityRecommended
	// SeverityHigh needs attention before the system is considered healthy.
	SeverityHigh
	// SeverityCritical needs attention now (security-relevant or blocking).
	SeverityCritical
)

// escalationKeywords escalate a Finding one severity tier when they appear in
// its message: updates touching remote access, the kernel, or core system
// plumbing deserve a closer look than a stray backup file.
var escalationKeywords = []string{"ssh", "kernel", "systemd", "dbus", "libc", "grub"}

// String returns the presentation label for the severity tier.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityRecommended:
		return "RECOMMENDED"
	default:
		return "OPTIONAL"
	}
}

// Tiers returns all severity tiers in presentation order, most urgent first.
func Tiers() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityRecommended, SeverityOptional}
}

// EscalateSeverity raises base by one tier, capped at Critical, when the
// message mentions any escalation keyword. Matching is case-insensitive.
func EscalateSeverity(base Severity, message string) Severity {
	lower := strings.ToLower(message)
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			if base >= SeverityCritical {
				return SeverityCritical
			}
			return base + 1
		}
	}
	return base
}
