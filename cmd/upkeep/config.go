// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"upkeep-cli/internal/config"
	"upkeep-cli/internal/issue"
)

// configCmd is the `upkeep config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage upkeep configuration",
	Long: `Manage upkeep configuration.

Configuration is looked up in:
  1. Path given with --config
  2. ~/.config/upkeep/config.cue
  3. /etc/upkeep/config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	fmt.Printf("%s: %v\n", keyStyle.Render("components.snap"), cfg.Components.Snap)
	fmt.Printf("%s: %v\n", keyStyle.Render("components.flatpak"), cfg.Components.Flatpak)
	fmt.Printf("%s: %v\n", keyStyle.Render("components.firmware"), cfg.Components.Firmware)
	fmt.Printf("%s: %v\n", keyStyle.Render("components.dist_upgrade"), cfg.Components.DistUpgrade)
	fmt.Printf("%s: %s\n", keyStyle.Render("lock.attempts"), valueStyle.Render(fmt.Sprintf("%d", cfg.Lock.Attempts)))
	fmt.Printf("%s: %s\n", keyStyle.Render("lock.backoff_seconds"), valueStyle.Render(fmt.Sprintf("%d", cfg.Lock.BackoffSeconds)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("%s: %v\n", keyStyle.Render("ui.verbose"), cfg.UI.Verbose)
	fmt.Printf("%s: %s\n", keyStyle.Render("log_file"), valueStyle.Render(cfg.LogFile))
	fmt.Printf("%s: %s\n", keyStyle.Render("rules_dir"), valueStyle.Render(cfg.RulesDir))

	if cfg.Hooks.PreUpdate != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("hooks.pre_update"), SubtitleStyle.Render("(set)"))
	}
	if cfg.Hooks.PostUpdate != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("hooks.post_update"), SubtitleStyle.Render("(set)"))
	}

	return nil
}

func initConfig() error {
	path, err := config.CreateDefaultConfig()
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), "configuration file ready at "+path)
	return nil
}
