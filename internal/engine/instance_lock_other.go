// SPDX-License-Identifier: MPL-2.0

//go:build !linux

package engine

import "errors"

// ErrAlreadyRunning mirrors the Linux sentinel so callers can compile and
// test on other platforms, where the updater never actually runs.
var ErrAlreadyRunning = errors.New("another upkeep instance is already running")

// InstanceLock is the non-Linux stub. Acquire always succeeds because the
// distributions upkeep drives are Linux-only anyway.
type InstanceLock struct{}

// AcquireInstanceLock is a no-op on non-Linux platforms.
func AcquireInstanceLock() (*InstanceLock, error) {
	return &InstanceLock{}, nil
}

// Release is a no-op on non-Linux platforms.
func (l *InstanceLock) Release() {}
