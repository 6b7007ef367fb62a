// SPDX-License-Identifier: MPL-2.0

// Package issue holds the catalog of user-facing failure explanations.
// Each fatal error condition maps to an Issue rendered as terminal
// markdown, so a failed run ends with something actionable rather than
// a bare error string.
package issue
