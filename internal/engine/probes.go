// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Probes bundles the read-only system probes the post-check phase consults.
// They are injected so tests can drive the phase logic against synthetic
// hosts; none of them ever mutates system state.
type Probes interface {
	// FileExists reports whether path exists and is a regular file.
	FileExists(path string) bool
	// ScanBackupFiles walks root and returns paths ending in any of the
	// given suffixes, sorted for deterministic output.
	ScanBackupFiles(root string, suffixes []string) []string
	// HasCommand reports whether an executable is on PATH.
	HasCommand(name string) bool
	// RunningKernel returns the running kernel release, or "".
	RunningKernel() string
	// InstalledKernels returns the kernel releases installed under
	// /lib/modules, or nil.
	InstalledKernels() []string
}

// HostProbes implements Probes against the live host.
type HostProbes struct{}

// FileExists implements Probes.
func (HostProbes) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ScanBackupFiles implements Probes. Walk errors are logged and skipped:
// an unreadable subtree must not fail the diagnostics pass.
func (HostProbes) ScanBackupFiles(root string, suffixes []string) []string {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				found = append(found, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		slog.Debug("backup file scan aborted", "root", root, "error", err)
	}
	sort.Strings(found)
	return found
}

// HasCommand implements Probes.
func (HostProbes) HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// RunningKernel implements Probes.
func (HostProbes) RunningKernel() string {
	return runningKernel()
}

// InstalledKernels implements Probes.
func (HostProbes) InstalledKernels() []string {
	entries, err := os.ReadDir("/lib/modules")
	if err != nil {
		return nil
	}
	var kernels []string
	for _, e := range entries {
		if e.IsDir() {
			kernels = append(kernels, e.Name())
		}
	}
	return kernels
}
