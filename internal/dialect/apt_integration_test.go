// SPDX-License-Identifier: MPL-2.0

// Integration tests for the apt dialect against a real Debian container.
// These tests require Docker or Podman to be available.
package dialect

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"upkeep-cli/internal/classify"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
// Returns true if containers are available, false otherwise.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestAptDialect_Integration exercises the apt command tables and the
// classifier against real apt-get output from a Debian container.
func TestAptDialect_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping apt integration tests: testcontainers provider not available")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      "debian:bookworm-slim",
			Cmd:        []string{"sleep", "300"},
			WaitingFor: wait.ForExec([]string{"true"}).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping apt integration tests: failed to start container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	exec := func(t *testing.T, argv []string) (int, string) {
		t.Helper()
		code, reader, err := container.Exec(ctx, argv)
		if err != nil {
			t.Fatalf("exec %v failed: %v", argv, err)
		}
		var sb strings.Builder
		buf := make([]byte, 4096)
		for {
			n, readErr := reader.Read(buf)
			sb.Write(buf[:n])
			if readErr != nil {
				break
			}
		}
		return code, sb.String()
	}

	apt := Apt{}

	t.Run("Refresh", func(t *testing.T) {
		code, out := exec(t, apt.Refresh())
		if code != 0 {
			t.Fatalf("refresh exited %d:\n%s", code, out)
		}
	})

	t.Run("SimulateAndCount", func(t *testing.T) {
		code, out := exec(t, apt.Simulate(false))
		if !apt.SimulateExitOK(code) {
			t.Fatalf("simulate exited %d:\n%s", code, out)
		}

		// A fresh slim image may or may not have pending updates; the
		// count must simply agree with the Inst lines in the output.
		want := strings.Count(out, "\nInst ")
		if strings.HasPrefix(out, "Inst ") {
			want++
		}
		if got := apt.CountPending(out); got != want {
			t.Errorf("CountPending = %d, want %d from output:\n%s", got, want, out)
		}
	})

	t.Run("ClassifierSeesNoConflictsOnCleanImage", func(t *testing.T) {
		_, out := exec(t, apt.Simulate(false))
		classifier := classify.NewClassifier(apt.Rules())
		for _, f := range classifier.Classify(out, "apt-simulate") {
			if f.Category == classify.CategoryConfigConflict {
				t.Errorf("unexpected config conflict on a clean image: %+v", f)
			}
		}
	})

	t.Run("LockHeldDetection", func(t *testing.T) {
		// Hold the dpkg frontend lock, then watch apt-get complain.
		holdCode, holdOut := exec(t, []string{"sh", "-c",
			"flock /var/lib/dpkg/lock-frontend -c 'sleep 30' & sleep 1; " +
				"apt-get -q -o DPkg::Lock::Timeout=0 install --no-install-recommends -y ca-certificates 2>&1; true"})
		_ = holdCode
		if !apt.LockHeld(holdOut) {
			t.Errorf("LockHeld did not recognize real apt lock output:\n%s", holdOut)
		}
	})
}
