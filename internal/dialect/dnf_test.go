// SPDX-License-Identifier: MPL-2.0

package dialect

import (
	"strings"
	"testing"

	"upkeep-cli/internal/classify"
)

const dnfCheckUpdateFixture = `
openssl-libs.x86_64                 1:3.0.9-2.fc38                  updates
kernel-core.x86_64                  6.5.11-300.fc38                 updates
systemd.x86_64                      253.12-1.fc38                   updates
Obsoleting Packages
grub2-tools.x86_64                  1:2.06-100.fc38                 updates
`

func TestDnf_CountPending(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"four update rows", dnfCheckUpdateFixture, 4},
		{"no updates", "\n", 0},
		{"empty text", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Dnf{}).CountPending(tt.text); got != tt.want {
				t.Errorf("CountPending() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDnf_LockHeld(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"dnf pid wait", "Waiting for process with pid 4321 to finish.\n", true},
		{"yum lock", "Another app is currently holding the yum lock; waiting for it to exit...\n", true},
		{"normal output", dnfCheckUpdateFixture, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Dnf{}).LockHeld(tt.text); got != tt.want {
				t.Errorf("LockHeld() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDnf_Rules(t *testing.T) {
	c := classify.NewClassifier(Dnf{}.Rules())

	t.Run("rpmnew backup file", func(t *testing.T) {
		got := c.Classify("warning: /etc/ssh/sshd_config created as /etc/ssh/sshd_config.rpmnew\n", "dnf-upgrade")
		if len(got) != 1 {
			t.Fatalf("expected one finding, got %+v", got)
		}
		if got[0].Category != classify.CategoryConfigConflict {
			t.Errorf("Category = %v, want %v", got[0].Category, classify.CategoryConfigConflict)
		}
		if !strings.Contains(got[0].Message, "/etc/ssh/sshd_config.rpmnew") {
			t.Errorf("Message %q does not name the rpmnew file", got[0].Message)
		}
		if got[0].Severity != classify.SeverityCritical {
			t.Errorf("Severity = %v, want Critical (ssh escalation)", got[0].Severity)
		}
	})

	t.Run("reboot verdict", func(t *testing.T) {
		got := c.Classify("Core libraries or services have been updated since boot-up:\n  * systemd\nReboot is required to fully utilize these updates.\n", "needs-restarting")
		var reboot int
		for _, f := range got {
			if f.Category == classify.CategoryRebootRequired {
				reboot++
			}
		}
		if reboot != 2 {
			t.Errorf("expected both reboot rules to fire, findings: %+v", got)
		}
	})

	t.Run("transaction error", func(t *testing.T) {
		got := c.Classify("Error: Transaction test error:\n  file /usr/bin/foo conflicts\n", "dnf-upgrade")
		if len(got) != 1 || got[0].Category != classify.CategoryBrokenPackage || got[0].Severity != classify.SeverityCritical {
			t.Errorf("got %+v, want one Critical BrokenPackage", got)
		}
	})

	t.Run("clean output", func(t *testing.T) {
		if got := c.Classify("Dependencies resolved.\nComplete!\n", "dnf-upgrade"); len(got) != 0 {
			t.Errorf("clean output produced findings: %+v", got)
		}
	})
}

func TestDnf_CommandShape(t *testing.T) {
	d := Dnf{}

	if got := d.Upgrade(true); got[len(got)-1] != "distro-sync" {
		t.Errorf("Upgrade(true) = %v, want trailing 'distro-sync'", got)
	}
	if d.RebootCheck() == nil {
		t.Error("RebootCheck() = nil, dnf probes reboots via needs-restarting")
	}
	if d.RebootMarkers() != nil {
		t.Errorf("RebootMarkers() = %v, want none for the RPM family", d.RebootMarkers())
	}
}
