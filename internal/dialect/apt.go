// SPDX-License-Identifier: MPL-2.0

package dialect

import (
	"strings"

	"upkeep-cli/internal/classify"
)

// Apt implements Dialect for apt/dpkg-based distributions (Debian, Ubuntu
// and derivatives).
type Apt struct{}

// confold keeps existing config files on conflict; dpkg writes the packaged
// version next to them with a .dpkg-* suffix, which the classifier picks up.
const confold = "Dpkg::Options::=--force-confold"

// Name implements Dialect.
func (Apt) Name() string { return "apt" }

// Tool implements Dialect.
func (Apt) Tool() string { return "apt-get" }

// Refresh implements Dialect.
func (Apt) Refresh() []string {
	return []string{"apt-get", "-q", "update"}
}

// Simulate implements Dialect.
func (Apt) Simulate(dist bool) []string {
	return []string{"apt-get", "-s", "-q", aptUpgradeVerb(dist)}
}

// Upgrade implements Dialect.
func (Apt) Upgrade(dist bool) []string {
	return []string{"apt-get", "-y", "-q", "-o", confold, aptUpgradeVerb(dist)}
}

// Cleanup implements Dialect.
func (Apt) Cleanup() [][]string {
	return [][]string{
		{"apt-get", "-y", "-q", "autoremove", "--purge"},
		{"apt-get", "-q", "autoclean"},
	}
}

// Audit implements Dialect.
func (Apt) Audit() []string {
	return []string{"dpkg", "--audit"}
}

// ServiceCheck implements Dialect. needrestart is optional on the host;
// its absence degrades to a suggestion Finding.
func (Apt) ServiceCheck() []string {
	return []string{"needrestart", "-b"}
}

// RebootCheck implements Dialect. Debian-family hosts signal pending
// reboots through the marker file instead.
func (Apt) RebootCheck() []string { return nil }

// SimulateExitOK implements Dialect.
func (Apt) SimulateExitOK(code int) bool { return code == 0 }

// CountPending implements Dialect by counting "Inst " lines in apt-get's
// simulation output.
func (Apt) CountPending(simText string) int {
	n := 0
	for _, line := range strings.Split(simText, "\n") {
		if strings.HasPrefix(line, "Inst ") {
			n++
		}
	}
	return n
}

// LockHeld implements Dialect.
func (Apt) LockHeld(text string) bool {
	return strings.Contains(text, "Could not get lock") ||
		strings.Contains(text, "Unable to acquire the dpkg frontend lock") ||
		strings.Contains(text, "is another process using it")
}

// BackupSuffixes implements Dialect.
func (Apt) BackupSuffixes() []string {
	return []string{".dpkg-new", ".dpkg-old", ".dpkg-dist", ".ucf-dist"}
}

// RebootMarkers implements Dialect.
func (Apt) RebootMarkers() []string {
	return []string{"/var/run/reboot-required", "/run/reboot-required"}
}

// Rules implements Dialect. Order matters: the backup-suffix rule claims
// conffile lines before the broader conffile-prompt rule sees them.
func (Apt) Rules() []classify.Rule {
	return []classify.Rule{
		classify.MustRule(classify.CategoryConfigConflict,
			`(/[^\s':]+\.(?:dpkg-new|dpkg-old|dpkg-dist|ucf-dist))`,
			classify.SeverityHigh,
			"configuration conflict, review backup file %s"),
		classify.MustRule(classify.CategoryConfigConflict,
			`(?m)^Configuration file '([^']+)'`,
			classify.SeverityHigh,
			"configuration file %s needs a merge decision"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`unmet dependencies`,
			classify.SeverityCritical,
			"packages with unmet dependencies, run 'apt-get -f install'"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`dpkg was interrupted`,
			classify.SeverityCritical,
			"package database left inconsistent, run 'dpkg --configure -a'"),
		classify.MustRule(classify.CategoryBrokenPackage,
			`unpacked but not yet configured`,
			classify.SeverityCritical,
			"packages unpacked but not configured, run 'dpkg --configure -a'"),
		classify.MustRule(classify.CategoryRebootRequired,
			`\*\*\* System restart required \*\*\*`,
			classify.SeverityHigh,
			"system restart required by the distribution"),
		classify.MustRule(classify.CategoryServiceRestart,
			`(?m)^NEEDRESTART-SVC:\s+(\S+)`,
			classify.SeverityRecommended,
			"service %s is running outdated libraries, restart it"),
		classify.MustRule(classify.CategoryOptionalSuggestion,
			`(?m)^The following packages have been kept back`,
			classify.SeverityRecommended,
			"some packages were held back, review them with 'apt list --upgradable'"),
	}
}

func aptUpgradeVerb(dist bool) string {
	if dist {
		return "dist-upgrade"
	}
	return "upgrade"
}
