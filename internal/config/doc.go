// SPDX-License-Identifier: MPL-2.0

// Package config loads upkeep configuration from CUE files through Viper.
// The embedded CUE schema validates user config at load time, so a typo in
// /etc/upkeep/config.cue fails fast with a pointed message instead of being
// silently ignored.
package config
