// SPDX-License-Identifier: MPL-2.0

// Package report renders a finished update run for humans: a styled
// severity-tiered console summary, and an append-only plain-text run log
// that survives terminal scrollback.
package report
