// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"upkeep-cli/internal/config"
	"upkeep-cli/internal/dialect"
	"upkeep-cli/internal/engine"
	"upkeep-cli/internal/hooks"
	"upkeep-cli/internal/issue"
	"upkeep-cli/internal/report"
	"upkeep-cli/internal/rules"
)

var (
	runDryRun      bool
	runDistUpgrade bool
	runSnap        bool
	runFlatpak     bool
	runFirmware    bool
	runYes         bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Refresh, upgrade and clean the system",
		Long: `Run the full update workflow: refresh package indexes, apply pending
upgrades, update enabled optional components, clean caches, and probe
the system for follow-up actions.

Mutating phases need root. Use --dry-run to simulate everything
unprivileged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd)
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "simulate every phase, mutate nothing")
	runCmd.Flags().BoolVar(&runDistUpgrade, "dist-upgrade", false, "allow installs/removals for held-back upgrades")
	runCmd.Flags().BoolVar(&runSnap, "snap", false, "also refresh snaps")
	runCmd.Flags().BoolVar(&runFlatpak, "flatpak", false, "also update flatpaks")
	runCmd.Flags().BoolVar(&runFirmware, "firmware", false, "also apply firmware updates via fwupdmgr")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the confirmation prompt")
}

func runUpdate(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return reportFatal(err, 1)
	}

	d, err := dialect.Detect()
	if err != nil {
		return reportFatal(err, 1)
	}

	// Mutating phases talk to the package database as root. Fail up front
	// instead of letting every phase error out mid-run.
	if !runDryRun {
		if err := requireRoot(os.Geteuid()); err != nil {
			return reportFatal(err, 1)
		}
	}

	if !runYes && !runDryRun {
		if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Apply updates via %s?", d.Name())) {
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("aborted, nothing changed"))
			return nil
		}
	}

	// One upkeep process at a time: two runs would race for the package
	// database. Dry runs don't mutate and skip the guard.
	if !runDryRun {
		lock, err := engine.AcquireInstanceLock()
		if err != nil {
			return reportFatal(err, 1)
		}
		defer lock.Release()
	}

	extraRules, err := rules.LoadDir(cfg.RulesDir)
	if err != nil {
		return reportFatal(issue.WrapWithContext(err, "load rules", cfg.RulesDir), 1)
	}

	opts := engineOptions(cmd, cfg)
	opts.DryRun = runDryRun

	hookEnv := []string{
		"UPKEEP_DIALECT=" + d.Name(),
		fmt.Sprintf("UPKEEP_DRY_RUN=%t", runDryRun),
	}
	hookRunner := hooks.NewRunner(cmd.OutOrStdout(), cmd.ErrOrStderr(), hookEnv...)

	// A failing pre hook aborts before anything mutates.
	if err := hookRunner.Run(ctx, "pre_update", cfg.Hooks.PreUpdate); err != nil {
		return reportFatal(err, 1)
	}

	eng := engine.New(d, engine.NewExecRunner(), engine.HostProbes{}, newRunLogger(), extraRules, opts)
	run, err := eng.Execute(ctx)
	if err != nil {
		return reportFatal(err, 1)
	}

	// The post hook sees the finished run but cannot un-apply it; its
	// failure is reported without discarding the summary.
	hookErr := hookRunner.Run(ctx, "post_update", cfg.Hooks.PostUpdate)

	report.NewConsole(cmd.OutOrStdout()).Summary(run)
	if err := report.NewRunLog(cfg.LogFile).Append(run); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	if hookErr != nil {
		return reportFatal(hookErr, 1)
	}
	return nil
}

// engineOptions merges component toggles: an explicitly set flag wins,
// otherwise the config value applies.
func engineOptions(cmd *cobra.Command, cfg *config.Config) engine.Options {
	opts := engine.Options{
		DistUpgrade: cfg.Components.DistUpgrade,
		Snap:        cfg.Components.Snap,
		Flatpak:     cfg.Components.Flatpak,
		Firmware:    cfg.Components.Firmware,
		Lock: engine.LockRetry{
			Attempts: cfg.Lock.Attempts,
			Backoff:  cfg.LockBackoff(),
		},
	}

	flags := cmd.Flags()
	if flags.Changed("dist-upgrade") {
		opts.DistUpgrade = runDistUpgrade
	}
	if flags.Changed("snap") {
		opts.Snap = runSnap
	}
	if flags.Changed("flatpak") {
		opts.Flatpak = runFlatpak
	}
	if flags.Changed("firmware") {
		opts.Firmware = runFirmware
	}
	return opts
}

// newRunLogger builds the engine's progress logger on stderr, keeping
// stdout clean for the summary.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Prefix:          "upkeep",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// requireRoot rejects unprivileged mutating runs. Dry runs and check skip
// it, they only read.
func requireRoot(euid int) error {
	if euid == 0 {
		return nil
	}
	return fmt.Errorf("mutating phases need root, running as uid %d: %w", euid, os.ErrPermission)
}

// confirm asks a yes/no question and returns whether the user agreed.
// Anything but an explicit yes declines.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
