// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"time"

	"upkeep-cli/internal/classify"
)

// UpdateRun is the envelope for one execution: counts, the ordered Finding
// sequence accumulated across all phases, and the latched reboot flag. It is
// created at the start of a run, populated as each phase completes, and
// consumed exactly once by the reporter.
type UpdateRun struct {
	// StartedAt is when the run began.
	StartedAt time.Time
	// Dialect names the package-manager family driving the run.
	Dialect string
	// DryRun records whether mutating phases were skipped.
	DryRun bool
	// PackagesAvailable is the pending-update count from the simulation.
	PackagesAvailable int
	// PackagesApplied is the count actually applied (0 in dry-run mode).
	PackagesApplied int

	findings []classify.Finding
	seen     map[findingKey]bool
	reboot   bool
}

type findingKey struct {
	category classify.Category
	message  string
}

// NewUpdateRun creates the envelope for one execution.
func NewUpdateRun(dialect string, dryRun bool) *UpdateRun {
	return &UpdateRun{
		StartedAt: time.Now(),
		Dialect:   dialect,
		DryRun:    dryRun,
		seen:      make(map[findingKey]bool),
	}
}

// AddFinding appends a Finding in insertion order. The first Finding with
// category RebootRequired latches the reboot flag for the rest of the run.
func (r *UpdateRun) AddFinding(f classify.Finding) {
	r.seen[findingKey{f.Category, f.Message}] = true
	r.findings = append(r.findings, f)
	if f.Category == classify.CategoryRebootRequired {
		r.reboot = true
	}
}

// AddFindings appends each Finding via AddFinding.
func (r *UpdateRun) AddFindings(fs []classify.Finding) {
	for _, f := range fs {
		r.AddFinding(f)
	}
}

// AddFindingOnce appends the Finding unless one with the same category and
// message was already recorded. Probes that may be consulted several times
// in one run (the reboot-marker file, the /etc scan) use this so repeated
// checks never duplicate their Finding.
func (r *UpdateRun) AddFindingOnce(f classify.Finding) {
	if r.seen[findingKey{f.Category, f.Message}] {
		return
	}
	r.AddFinding(f)
}

// Findings returns the accumulated Findings in insertion order.
func (r *UpdateRun) Findings() []classify.Finding {
	return r.findings
}

// RebootRequired reports whether any RebootRequired Finding was recorded.
// The flag never resets within a run.
func (r *UpdateRun) RebootRequired() bool {
	return r.reboot
}

// Aggregate buckets the run's Findings into severity tiers.
func (r *UpdateRun) Aggregate() classify.Buckets {
	return classify.Aggregate(r.findings)
}
