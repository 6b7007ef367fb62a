// SPDX-License-Identifier: MPL-2.0

//go:build linux

package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// instanceLockFileName is the well-known lock file name shared by all upkeep
// processes. The zero-byte file is harmless if orphaned — the kernel releases
// the flock automatically when the fd is closed (including on process crash).
const instanceLockFileName = "upkeep.lock"

// ErrAlreadyRunning is returned when another upkeep process holds the
// instance lock. Two concurrent runs would fight over the same package
// database, so the second one refuses to start.
var ErrAlreadyRunning = errors.New("another upkeep instance is already running")

// InstanceLock holds a non-blocking exclusive flock on a well-known file
// path, serializing upkeep processes system-wide.
type InstanceLock struct {
	file *os.File
}

// AcquireInstanceLock opens (or creates) the lock file and acquires the
// exclusive flock without blocking. A held lock returns ErrAlreadyRunning.
func AcquireInstanceLock() (*InstanceLock, error) {
	lockPath := instanceLockPathWith(os.Getenv)

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", lockPath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("flock %s: %w", lockPath, err)
	}

	return &InstanceLock{file: f}, nil
}

// Release unlocks the flock and closes the file descriptor. It is safe to
// call multiple times — subsequent calls are no-ops.
func (l *InstanceLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		slog.Debug("flock unlock failed", "error", err)
	}
	if err := l.file.Close(); err != nil {
		slog.Debug("lock file close failed", "error", err)
	}
	l.file = nil
}

// instanceLockPathWith returns the lock file path using the provided getenv
// function. Prefers $XDG_RUNTIME_DIR (per-user tmpfs), falls back to
// os.TempDir(). Injecting getenv enables testing without mutating
// process-global environment state.
func instanceLockPathWith(getenv func(string) string) string {
	dir := getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, instanceLockFileName)
}
