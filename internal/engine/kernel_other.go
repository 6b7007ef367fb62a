// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package engine

// runningKernel is a stub for non-Linux builds; upkeep only drives Linux
// package managers, but the package must still compile elsewhere for tests.
func runningKernel() string { return "" }
