// SPDX-License-Identifier: MPL-2.0

//go:build linux

package engine

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// runningKernel returns the running kernel release via uname(2).
func runningKernel() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		slog.Debug("uname failed", "error", err)
		return ""
	}
	return unix.ByteSliceToString(uts.Release[:])
}
