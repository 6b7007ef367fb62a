// SPDX-License-Identifier: MPL-2.0

package dialect

import (
	"strings"
	"testing"

	"upkeep-cli/internal/classify"
)

const aptSimulationFixture = `Reading package lists...
Building dependency tree...
Calculating upgrade...
The following packages will be upgraded:
  libssl3 openssh-server tzdata
3 upgraded, 0 newly installed, 0 to remove and 0 not upgraded.
Inst libssl3 [3.0.11-1] (3.0.13-1 Debian:12.5/stable [amd64])
Inst openssh-server [1:9.2p1-2] (1:9.2p1-2+deb12u2 Debian-Security:12/stable-security [amd64])
Inst tzdata [2023c-5] (2024a-0+deb12u1 Debian:12.5/stable [amd64])
Conf libssl3 (3.0.13-1 Debian:12.5/stable [amd64])
`

func TestApt_CountPending(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"three pending installs", aptSimulationFixture, 3},
		{"empty simulation", "Reading package lists...\n0 upgraded, 0 newly installed.\n", 0},
		{"empty text", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Apt{}).CountPending(tt.text); got != tt.want {
				t.Errorf("CountPending() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApt_LockHeld(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			"dpkg frontend lock",
			"E: Could not get lock /var/lib/dpkg/lock-frontend. It is held by process 1234 (apt)\n",
			true,
		},
		{
			"another process hint",
			"E: Unable to lock the administration directory (/var/lib/dpkg/), is another process using it?\n",
			true,
		},
		{"normal output", aptSimulationFixture, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Apt{}).LockHeld(tt.text); got != tt.want {
				t.Errorf("LockHeld() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApt_Rules_ConfigConflict(t *testing.T) {
	c := classify.NewClassifier(Apt{}.Rules())

	got := c.Classify("*** /etc/ssh/sshd_config.dpkg-new\n", "apt-upgrade")
	if len(got) != 1 {
		t.Fatalf("expected exactly one finding, got %+v", got)
	}
	f := got[0]
	if f.Category != classify.CategoryConfigConflict {
		t.Errorf("Category = %v, want %v", f.Category, classify.CategoryConfigConflict)
	}
	if !strings.Contains(f.Message, "/etc/ssh/sshd_config.dpkg-new") {
		t.Errorf("Message %q does not name the backup file", f.Message)
	}
	if f.Severity != classify.SeverityCritical {
		t.Errorf("Severity = %v, want Critical (escalated via ssh keyword)", f.Severity)
	}
}

func TestApt_Rules_EmptyUpgrade(t *testing.T) {
	c := classify.NewClassifier(Apt{}.Rules())

	text := "Reading package lists...\nCalculating upgrade...\n0 upgraded, 0 newly installed, 0 to remove and 0 not upgraded.\n"
	if got := c.Classify(text, "apt-upgrade"); len(got) != 0 {
		t.Errorf("clean upgrade output produced findings: %+v", got)
	}
	if got := (Apt{}).CountPending(text); got != 0 {
		t.Errorf("CountPending() = %d, want 0", got)
	}
}

func TestApt_Rules_ServiceRestart(t *testing.T) {
	c := classify.NewClassifier(Apt{}.Rules())

	text := "NEEDRESTART-VER: 3.6\nNEEDRESTART-SVC: cron.service\nNEEDRESTART-SVC: dbus.service\n"
	got := c.Classify(text, "needrestart")

	if len(got) != 2 {
		t.Fatalf("expected 2 service findings, got %+v", got)
	}
	if got[0].Category != classify.CategoryServiceRestart {
		t.Errorf("Category = %v, want %v", got[0].Category, classify.CategoryServiceRestart)
	}
	// cron stays at the baseline, dbus escalates one tier.
	if got[0].Severity != classify.SeverityRecommended {
		t.Errorf("cron severity = %v, want Recommended", got[0].Severity)
	}
	if got[1].Severity != classify.SeverityHigh {
		t.Errorf("dbus severity = %v, want High", got[1].Severity)
	}
}

func TestApt_Rules_BrokenPackages(t *testing.T) {
	c := classify.NewClassifier(Apt{}.Rules())

	text := "You might want to run 'apt --fix-broken install' to correct these.\n" +
		"The following packages have unmet dependencies:\n libfoo : Depends: libbar but it is not installed\n"
	got := c.Classify(text, "apt-upgrade")

	if len(got) != 1 {
		t.Fatalf("expected one summary finding, got %+v", got)
	}
	if got[0].Category != classify.CategoryBrokenPackage || got[0].Severity != classify.SeverityCritical {
		t.Errorf("got %+v, want Critical BrokenPackage", got[0])
	}
}

func TestApt_CommandShape(t *testing.T) {
	a := Apt{}

	if got := a.Upgrade(false); got[len(got)-1] != "upgrade" {
		t.Errorf("Upgrade(false) = %v, want trailing 'upgrade'", got)
	}
	if got := a.Upgrade(true); got[len(got)-1] != "dist-upgrade" {
		t.Errorf("Upgrade(true) = %v, want trailing 'dist-upgrade'", got)
	}
	for _, argv := range [][]string{a.Refresh(), a.Simulate(false), a.Upgrade(false)} {
		if argv[0] != "apt-get" {
			t.Errorf("argv %v does not start with apt-get", argv)
		}
	}
	if len(a.Cleanup()) != 2 {
		t.Errorf("Cleanup() = %v, want autoremove then autoclean", a.Cleanup())
	}
}
