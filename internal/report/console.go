// SPDX-License-Identifier: MPL-2.0

package report

import (
	"fmt"
	"io"

	"upkeep-cli/internal/classify"
	"upkeep-cli/internal/engine"
)

// Console writes the end-of-run summary to a terminal.
type Console struct {
	w io.Writer
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Summary renders the run: metadata, package counts, findings grouped by
// severity tier (most urgent first), and a single status line.
func (c *Console) Summary(run *engine.UpdateRun) {
	mode := "apply"
	if run.DryRun {
		mode = "dry-run"
	}

	fmt.Fprintln(c.w, TitleStyle.Render("upkeep summary"))
	fmt.Fprintln(c.w, SubtitleStyle.Render(fmt.Sprintf("%s · %s · started %s",
		run.Dialect, mode, run.StartedAt.Format("2006-01-02 15:04:05"))))
	fmt.Fprintln(c.w)

	if run.DryRun {
		fmt.Fprintf(c.w, "%d updates available (none applied, dry run)\n", run.PackagesAvailable)
	} else {
		fmt.Fprintf(c.w, "%d updates available, %d applied\n", run.PackagesAvailable, run.PackagesApplied)
	}

	buckets := run.Aggregate()
	for _, tier := range classify.Tiers() {
		findings := buckets[tier]
		if len(findings) == 0 {
			continue
		}

		fmt.Fprintln(c.w)
		fmt.Fprintln(c.w, tierStyle(tier).Render(fmt.Sprintf("%s (%d)", tier, len(findings))))
		for _, f := range findings {
			fmt.Fprintf(c.w, "  • [%s] %s %s\n", f.Category, f.Message, sourceStyle.Render("("+f.Source+")"))
		}
	}

	fmt.Fprintln(c.w)
	c.status(run, buckets)
}

// status prints exactly one line summarizing what the operator must do next.
func (c *Console) status(run *engine.UpdateRun, buckets classify.Buckets) {
	switch {
	case len(buckets[classify.SeverityCritical]) > 0:
		fmt.Fprintln(c.w, CriticalStyle.Render("✗ critical findings need attention now"))
	case run.RebootRequired():
		fmt.Fprintln(c.w, HighStyle.Render("↻ reboot required to finish applying updates"))
	case buckets.Total() > 0:
		fmt.Fprintln(c.w, HighStyle.Render("! follow-up actions pending, see above"))
	default:
		fmt.Fprintln(c.w, SuccessStyle.Render("✓ system is up to date"))
	}

	// The reboot notice still matters when criticals pushed it off the
	// status line.
	if run.RebootRequired() && len(buckets[classify.SeverityCritical]) > 0 {
		fmt.Fprintln(c.w, HighStyle.Render("↻ reboot required to finish applying updates"))
	}
}
