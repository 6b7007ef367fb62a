// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"upkeep-cli/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "upkeep"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"

	// SystemConfigDir is the machine-wide config location. A root-run
	// updater is usually configured here rather than per-user.
	SystemConfigDir = "/etc/upkeep"

	// maxConfigFileSize rejects files that are clearly not configuration.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// UserConfigDir returns the per-user configuration directory,
// $XDG_CONFIG_HOME/upkeep with the usual ~/.config fallback.
func UserConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads configuration with default options, honoring the --config
// file override when set.
func Load() (*Config, error) {
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	return cfg, err
}

// loadWithOptions performs option-driven config loading. The lookup order
// is: explicit --config path, per-user config dir, then /etc/upkeep. A
// missing config file is not an error; defaults apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("components.firmware", defaults.Components.Firmware)
	v.SetDefault("components.flatpak", defaults.Components.Flatpak)
	v.SetDefault("components.snap", defaults.Components.Snap)
	v.SetDefault("components.dist_upgrade", defaults.Components.DistUpgrade)
	v.SetDefault("lock.attempts", defaults.Lock.Attempts)
	v.SetDefault("lock.backoff_seconds", defaults.Lock.BackoffSeconds)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("rules_dir", defaults.RulesDir)

	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Run 'upkeep config init' to create a config file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", wrapParseError(err, opts.ConfigFilePath)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		for _, path := range candidatePaths(opts.ConfigDirPath) {
			if !fileExists(path) {
				continue
			}
			if err := loadCUEIntoViper(v, path); err != nil {
				return nil, "", wrapParseError(err, path)
			}
			resolvedPath = path
			break
		}
		// No config file found: defaults apply, not an error.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if !cfg.UI.ColorScheme.IsValid() {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithSuggestion(`Use one of "auto", "dark" or "light" for ui.color_scheme`).
			Wrap(fmt.Errorf("%w: %q", ErrInvalidColorScheme, cfg.UI.ColorScheme)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// LockBackoff converts the configured backoff to a duration.
func (c *Config) LockBackoff() time.Duration {
	return time.Duration(c.Lock.BackoffSeconds) * time.Second
}

// candidatePaths returns the config file lookup order.
func candidatePaths(dirOverride string) []string {
	fileName := ConfigFileName + "." + ConfigFileExt
	if dirOverride != "" {
		return []string{filepath.Join(dirOverride, fileName)}
	}

	var paths []string
	if userDir, err := UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(userDir, fileName))
	}
	return append(paths, filepath.Join(SystemConfigDir, fileName))
}

// wrapParseError decorates a CUE parse/validation failure with suggestions.
func wrapParseError(err error, path string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the values match the expected schema").
		WithSuggestion("See 'upkeep config show' for the effective configuration").
		Wrap(err).
		BuildError()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config
// schema, and merges its contents into Viper. Decoding to a map (not a
// struct) keeps Viper's default/override precedence intact.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("invalid CUE in %s: %w", path, userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("config %s does not match schema: %w", path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes a default config file into the per-user config
// directory if none exists yet, and returns its path.
func CreateDefaultConfig() (string, error) {
	cfgDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	return fmt.Sprintf(`// upkeep configuration file.

components: {
	firmware:     %v
	flatpak:      %v
	snap:         %v
	dist_upgrade: %v
}

lock: {
	attempts:        %d
	backoff_seconds: %d
}

ui: {
	color_scheme: %q
	verbose:      %v
}

log_file:  %q
rules_dir: %q
`,
		cfg.Components.Firmware,
		cfg.Components.Flatpak,
		cfg.Components.Snap,
		cfg.Components.DistUpgrade,
		cfg.Lock.Attempts,
		cfg.Lock.BackoffSeconds,
		cfg.UI.ColorScheme,
		cfg.UI.Verbose,
		cfg.LogFile,
		cfg.RulesDir,
	)
}
