// SPDX-License-Identifier: MPL-2.0

// Package dialect abstracts the differences between package-manager families
// (apt-based vs RPM-based) behind a single capability interface: command
// argv for each operation, lock-contention detection, pending-update
// counting, and the classification rule table with that family's
// conflict-marker conventions.
package dialect

import (
	"errors"

	"upkeep-cli/internal/classify"
)

// ErrUnsupportedHost is returned when no supported package manager can be
// detected on the host.
var ErrUnsupportedHost = errors.New("no supported package manager found on this host")

// ErrToolMissing is returned when the host identifies as a supported
// distribution family but its package manager binary is not on PATH.
var ErrToolMissing = errors.New("package manager binary not found on PATH")

// Dialect supplies everything the update engine needs that varies by
// package-manager family. Implementations are stateless values.
type Dialect interface {
	// Name identifies the dialect ("apt", "dnf").
	Name() string

	// Tool is the primary binary that must be present on PATH.
	Tool() string

	// Refresh is the argv for refreshing package indexes.
	Refresh() []string

	// Simulate is the argv for a non-mutating upgrade simulation.
	// dist selects the full distribution upgrade variant.
	Simulate(dist bool) []string

	// Upgrade is the argv for applying pending upgrades non-interactively.
	Upgrade(dist bool) []string

	// Cleanup is the sequence of argvs for removing orphans and pruning
	// the package cache, in execution order.
	Cleanup() [][]string

	// Audit is the argv for the package-database consistency check,
	// or nil when the family has none.
	Audit() []string

	// ServiceCheck is the argv listing services running outdated
	// libraries, or nil. The tool is optional on the host.
	ServiceCheck() []string

	// RebootCheck is the argv for an explicit reboot-necessity probe,
	// or nil when the family signals reboots through a marker file.
	RebootCheck() []string

	// SimulateExitOK reports whether an exit code from the simulation
	// command is a normal outcome. dnf's check-update exits 100 when
	// updates are pending.
	SimulateExitOK(code int) bool

	// CountPending parses simulation output and returns the number of
	// packages that would be upgraded. Unparseable text counts as zero.
	CountPending(simText string) int

	// LockHeld reports whether output indicates the package database lock
	// is held by another process.
	LockHeld(text string) bool

	// Rules is the ordered classification table for this family's output.
	Rules() []classify.Rule

	// BackupSuffixes are the config-backup filename suffixes this family's
	// tools leave behind on conflicts.
	BackupSuffixes() []string

	// RebootMarkers are filesystem paths whose existence means a reboot
	// is pending. May be empty.
	RebootMarkers() []string
}
