// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"upkeep-cli/internal/dialect"
	"upkeep-cli/internal/engine"
	"upkeep-cli/internal/issue"
	"upkeep-cli/internal/report"
	"upkeep-cli/internal/rules"
)

var (
	checkDistUpgrade bool

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Report pending updates and system health, touch nothing",
		Long: `Simulate the upgrade to count pending updates and run the read-only
system probes (reboot marker, configuration backups, kernel check).

Nothing is refreshed, installed or removed, so check works without
root. The pending count reflects the last index refresh.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkDistUpgrade, "dist-upgrade", false, "simulate the full distribution upgrade variant")
}

func runCheck(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return reportFatal(err, 1)
	}

	d, err := dialect.Detect()
	if err != nil {
		return reportFatal(err, 1)
	}

	extraRules, err := rules.LoadDir(cfg.RulesDir)
	if err != nil {
		return reportFatal(issue.WrapWithContext(err, "load rules", cfg.RulesDir), 1)
	}

	opts := engine.Options{
		DryRun:      true,
		DistUpgrade: checkDistUpgrade || cfg.Components.DistUpgrade,
		Lock: engine.LockRetry{
			Attempts: cfg.Lock.Attempts,
			Backoff:  cfg.LockBackoff(),
		},
	}

	eng := engine.New(d, engine.NewExecRunner(), engine.HostProbes{}, newRunLogger(), extraRules, opts)
	run, err := eng.Check(cmd.Context())
	if err != nil {
		return reportFatal(err, 1)
	}

	report.NewConsole(cmd.OutOrStdout()).Summary(run)
	return nil
}
