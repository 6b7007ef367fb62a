// SPDX-License-Identifier: MPL-2.0

package config

import "errors"

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
var ErrInvalidColorScheme = errors.New("invalid color scheme")

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// Config is the root configuration.
	Config struct {
		// Components toggles the optional update classes.
		Components ComponentsConfig `mapstructure:"components"`
		// Lock bounds the package-database lock wait.
		Lock LockConfig `mapstructure:"lock"`
		// UI holds presentation settings.
		UI UIConfig `mapstructure:"ui"`
		// Hooks holds user scripts run around the update phases.
		Hooks HooksConfig `mapstructure:"hooks"`
		// LogFile is the append-only run log path; empty disables it.
		LogFile string `mapstructure:"log_file"`
		// RulesDir is scanned for *.toml classification drop-ins.
		RulesDir string `mapstructure:"rules_dir"`
	}

	// ComponentsConfig enables the optional update classes. Each is
	// independently toggled; a missing tool degrades to a suggestion.
	ComponentsConfig struct {
		Firmware    bool `mapstructure:"firmware"`
		Flatpak     bool `mapstructure:"flatpak"`
		Snap        bool `mapstructure:"snap"`
		DistUpgrade bool `mapstructure:"dist_upgrade"`
	}

	// LockConfig bounds the wait for the shared package-database lock.
	LockConfig struct {
		// Attempts is the invocation ceiling before the run fails.
		Attempts int `mapstructure:"attempts"`
		// BackoffSeconds is the linear backoff base interval.
		BackoffSeconds int `mapstructure:"backoff_seconds"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// HooksConfig holds inline POSIX scripts run by the embedded
	// interpreter before and after the update phases.
	HooksConfig struct {
		PreUpdate  string `mapstructure:"pre_update"`
		PostUpdate string `mapstructure:"post_update"`
	}
)

// DefaultConfig returns the built-in defaults used when no config file is
// present.
func DefaultConfig() *Config {
	return &Config{
		Components: ComponentsConfig{},
		Lock: LockConfig{
			Attempts:       5,
			BackoffSeconds: 5,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
		LogFile:  "/var/log/upkeep.log",
		RulesDir: "/etc/upkeep/rules.d",
	}
}

// IsValid returns whether the ColorScheme is a recognized value.
func (c ColorScheme) IsValid() bool {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true
	}
	return false
}
