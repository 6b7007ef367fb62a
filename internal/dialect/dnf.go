// SPDX-License-Identifier: MPL-2.0

package dialect

import (
	"regexp"
	"strings"

	"upkeep-cli/internal/classify"
)

// Dnf implements Dialect for RPM-based distributions using dnf (Fedora,
// RHEL, CentOS Stream and derivatives).
type Dnf struct{}

// pendingLine matches one row of `dnf check-update` output:
// name.arch  version-release  repo
var pendingLine = regexp.MustCompile(`^\S+\.\S+\s+\S+\s+\S+\s*$`)

// Name implements Dialect.
func (Dnf) Name() string { return "dnf" }

// Tool implements Dialect.
func (Dnf) Tool() string { return "dnf" }

// Refresh implements Dialect.
func (Dnf) Refresh() []string {
	return []string{"dnf", "-y", "-q", "makecache"}
}

// Simulate implements Dialect. check-update exits 100 when updates are
// pending; the engine treats that exit code as success for this dialect.
func (Dnf) Simulate(bool) []string {
	return []string{"dnf", "-q", "check-update"}
}

// Upgrade implements Dialect.
func (Dnf) Upgrade(dist bool) []string {
	if dist {
		return []string{"dnf", "-y", "distro-sync"}
	}
	return []string{"dnf", "-y", "upgrade"}
}

// Cleanup implements Dialect.
func (Dnf) Cleanup() [][]string {
	return [][]string{
		{"dnf", "-y", "-q", "autoremove"},
		{"dnf", "-q", "clean", "packages"},
	}
}

// Audit implements Dialect.
func (Dnf) Audit() []string {
	return []string{"dnf", "-q", "check"}
}

// ServiceCheck implements Dialect.
func (Dnf) ServiceCheck() []string {
	return []string{"dnf", "needs-restarting", "-s"}
}

// RebootCheck implements Dialect. needs-restarting -r prints an explicit
// verdict line that the rule table classifies.
func (Dnf) RebootCheck() []string {
	return []string{"dnf", "needs-restarting", "-r"}
}

// SimulateExitOK implements Dialect. 100 means updates are pending.
func (Dnf) SimulateExitOK(code int) bool { return code == 0 || code == 100 }

// CountPending implements Dialect.
func (Dnf) CountPending(simText string) int {
	n := 0
	for _, line := range strings.Split(simText, "\n") {
		if strings.HasPrefix(line, "Obsoleting") || strings.HasPrefix(line, "Security:") {
			continue
		}
		if pendingLine.MatchString(line) {
			n++
		}
	}
	return n
}

// LockHeld implements Dialect.
func (Dnf) LockHeld(text string) bool {
	return strings.Contains(text, "Waiting for process with pid") ||
		strings.Contains(text, "is another copy running") ||
		strings.Contains(text, "currently holding the yum lock")
}

// BackupSuffixes implements Dialect.
func (Dnf) BackupSuffixes() []string {
	return []string{".rpmnew", ".rpmsave", ".rpmorig"}
}

// RebootMarkers implements Dialect. RPM-family hosts have no marker file;
// RebootCheck covers the probe instead.
func (Dnf) RebootMarkers() []string { return nil }

// Rules implements Dialect.
func (Dnf) Rules() []classify.Rule {
	return []classify.Rule{
		classify.MustRule(classify.CategoryConfigConflict,
			`(/[^\s':]+\.(?:rpmnew|rpmsave|rpmorig))`,
			classify.SeverityHigh,
			"configuration conflict, review backup file %s"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`(?m)^Problem`,
			classify.SeverityCritical,
			"dependency problems reported, review the transaction output"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`conflicting requests`,
			classify.SeverityCritical,
			"conflicting package requests, resolve them before the next run"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`(?m)^Error:`,
			classify.SeverityCritical,
			"dnf reported an error, review the transaction output"),
		classify.MustRule(classify.CategoryRebootRequired,
			`(?m)^Reboot is required`,
			classify.SeverityHigh,
			"reboot required to fully apply updates"),
		classify.MustRule(classify.CategoryRebootRequired,
			`Core libraries or services have been updated`,
			classify.SeverityHigh,
			"core libraries or services were updated, reboot recommended"),
		classify.MustRule(classify.CategoryServiceRestart,
			`(?m)^(\S+\.service)\b`,
			classify.SeverityRecommended,
			"service %s is running outdated libraries, restart it"),
	}
}
