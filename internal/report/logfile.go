// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"upkeep-cli/internal/classify"
	"upkeep-cli/internal/engine"
	"upkeep-cli/internal/issue"
)

// RunLog appends one plain-text record per run to a log file. The format is
// line-oriented and stable so it can be grepped from cron mail or shipped by
// a log collector.
type RunLog struct {
	path string
}

// NewRunLog creates a run log writing to path. An empty path disables
// logging; Append becomes a no-op.
func NewRunLog(path string) *RunLog {
	return &RunLog{path: path}
}

// Append writes the run record. The file is opened in append mode per call,
// so concurrent upkeep invocations (already excluded by the instance lock)
// and external rotation both stay safe.
func (l *RunLog) Append(run *engine.UpdateRun) error {
	if l.path == "" {
		return nil
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return issue.WrapWithContext(err, "write run log", l.path)
	}
	defer f.Close() //nolint:errcheck // write errors surface below

	if _, err := f.WriteString(Format(run)); err != nil {
		return issue.WrapWithContext(err, "write run log", l.path)
	}
	return nil
}

// Format renders the run record: a metadata header, the package counts,
// conflicts, remaining manual actions, and a final status line.
func Format(run *engine.UpdateRun) string {
	var b strings.Builder

	mode := "apply"
	if run.DryRun {
		mode = "dry-run"
	}

	fmt.Fprintf(&b, "==== upkeep run %s ====\n", run.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "dialect: %s\n", run.Dialect)
	fmt.Fprintf(&b, "mode: %s\n", mode)

	fmt.Fprintf(&b, "-- packages --\n")
	fmt.Fprintf(&b, "available: %d\n", run.PackagesAvailable)
	fmt.Fprintf(&b, "applied: %d\n", run.PackagesApplied)

	conflicts, actions := splitFindings(run.Findings())

	fmt.Fprintf(&b, "-- conflicts --\n")
	writeFindings(&b, conflicts)

	fmt.Fprintf(&b, "-- manual actions --\n")
	writeFindings(&b, actions)

	fmt.Fprintf(&b, "status: %s\n\n", statusWord(run))
	return b.String()
}

// splitFindings separates configuration conflicts from everything else,
// deduplicated the same way the console summary is.
func splitFindings(findings []classify.Finding) (conflicts, actions []classify.Finding) {
	buckets := classify.Aggregate(findings)
	for _, tier := range classify.Tiers() {
		for _, f := range buckets[tier] {
			if f.Category == classify.CategoryConfigConflict {
				conflicts = append(conflicts, f)
			} else {
				actions = append(actions, f)
			}
		}
	}
	return conflicts, actions
}

func writeFindings(b *strings.Builder, findings []classify.Finding) {
	if len(findings) == 0 {
		b.WriteString("none\n")
		return
	}
	for _, f := range findings {
		fmt.Fprintf(b, "[%s] %s: %s (%s)\n", f.Severity, f.Category, f.Message, f.Source)
	}
}

func statusWord(run *engine.UpdateRun) string {
	buckets := run.Aggregate()
	switch {
	case len(buckets[classify.SeverityCritical]) > 0:
		return "ACTION REQUIRED"
	case run.RebootRequired():
		return "REBOOT REQUIRED"
	case buckets.Total() > 0:
		return "FOLLOW-UP PENDING"
	default:
		return "OK"
	}
}
