// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"reflect"
	"testing"
)

// testRules is a small apt-flavored table exercising both rule shapes:
// capture-group rules (per-identifier Findings) and summary rules.
func testRules() []Rule {
	return []Rule{
		MustRule(CategoryConfigConflict,
			`(/[^\s']+\.dpkg-(?:new|old|dist))`,
			SeverityHigh,
			"configuration conflict, review backup file %s"),
		MustRule(CategoryConfigConflict,
			`(?m)^Configuration file '([^']+)'`,
			SeverityHigh,
			"configuration file %s needs a merge decision"),
		MustRule(CategoryBrokenPackage,
			`unmet dependencies`,
			SeverityCritical,
			"packages with unmet dependencies, run the package manager's fix step"),
		MustRule(CategoryRebootRequired,
			`\*\*\* System restart required \*\*\*`,
			SeverityHigh,
			"system restart required by the distribution"),
		MustRule(CategoryOptionalSuggestion,
			`(?m)^The following packages have been kept back`,
			SeverityRecommended,
			"some packages were held back from this upgrade"),
	}
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Finding
	}{
		{
			name: "unrecognized text yields no findings",
			text: "Reading package lists...\nBuilding dependency tree...\nAll packages are up to date.\n",
			want: nil,
		},
		{
			name: "empty text yields no findings",
			text: "",
			want: nil,
		},
		{
			name: "dpkg backup file with ssh escalates to critical",
			text: "*** /etc/ssh/sshd_config.dpkg-new\n",
			want: []Finding{{
				Category: CategoryConfigConflict,
				Severity: SeverityCritical,
				Message:  "configuration conflict, review backup file /etc/ssh/sshd_config.dpkg-new",
				Source:   "apt-upgrade",
			}},
		},
		{
			name: "plain backup file keeps baseline severity",
			text: "unpacking... /etc/logrotate.conf.dpkg-dist written\n",
			want: []Finding{{
				Category: CategoryConfigConflict,
				Severity: SeverityHigh,
				Message:  "configuration conflict, review backup file /etc/logrotate.conf.dpkg-dist",
				Source:   "apt-upgrade",
			}},
		},
		{
			name: "distinct captures emit one finding each",
			text: "/etc/foo.conf.dpkg-old\n/etc/bar.conf.dpkg-new\n",
			want: []Finding{
				{
					Category: CategoryConfigConflict,
					Severity: SeverityHigh,
					Message:  "configuration conflict, review backup file /etc/foo.conf.dpkg-old",
					Source:   "apt-upgrade",
				},
				{
					Category: CategoryConfigConflict,
					Severity: SeverityHigh,
					Message:  "configuration conflict, review backup file /etc/bar.conf.dpkg-new",
					Source:   "apt-upgrade",
				},
			},
		},
		{
			name: "repeated capture reported once",
			text: "/etc/foo.conf.dpkg-new\nagain: /etc/foo.conf.dpkg-new\n",
			want: []Finding{{
				Category: CategoryConfigConflict,
				Severity: SeverityHigh,
				Message:  "configuration conflict, review backup file /etc/foo.conf.dpkg-new",
				Source:   "apt-upgrade",
			}},
		},
		{
			name: "overlapping rules do not double-count the same line",
			text: "Configuration file '/etc/motd.dpkg-new'\n",
			// The first ConfigConflict rule claims the line; the second
			// conffile-prompt rule must not report it again.
			want: []Finding{{
				Category: CategoryConfigConflict,
				Severity: SeverityHigh,
				Message:  "configuration conflict, review backup file /etc/motd.dpkg-new",
				Source:   "apt-upgrade",
			}},
		},
		{
			name: "summary rule emits a single finding for many matches",
			text: "E: unmet dependencies on libfoo\nE: unmet dependencies on libbar\n",
			want: []Finding{{
				Category: CategoryBrokenPackage,
				Severity: SeverityCritical,
				Message:  "packages with unmet dependencies, run the package manager's fix step",
				Source:   "apt-upgrade",
			}},
		},
		{
			name: "restart marker text",
			text: "*** System restart required ***\n",
			want: []Finding{{
				Category: CategoryRebootRequired,
				Severity: SeverityHigh,
				Message:  "system restart required by the distribution",
				Source:   "apt-upgrade",
			}},
		},
	}

	c := NewClassifier(testRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, "apt-upgrade")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifier_Idempotent(t *testing.T) {
	c := NewClassifier(testRules())
	text := "*** /etc/ssh/sshd_config.dpkg-new\nThe following packages have been kept back\n"

	first := c.Classify(text, "apt-upgrade")
	second := c.Classify(text, "apt-upgrade")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification is not idempotent: first %+v, second %+v", first, second)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(first), first)
	}
}

func TestClassifier_DifferentCategoriesShareLine(t *testing.T) {
	// A line may legitimately count under two different categories; the
	// overlap guard is per category only.
	rules := []Rule{
		MustRule(CategoryBrokenPackage, `held broken`, SeverityHigh, "broken packages held"),
		MustRule(CategoryOptionalSuggestion, `held`, SeverityOptional, "packages held back"),
	}
	c := NewClassifier(rules)

	got := c.Classify("2 packages held broken\n", "apt-upgrade")
	if len(got) != 2 {
		t.Fatalf("expected findings in both categories, got %+v", got)
	}
}

func TestEscalateSeverity(t *testing.T) {
	tests := []struct {
		name    string
		base    Severity
		message string
		want    Severity
	}{
		{"no keyword keeps baseline", SeverityRecommended, "review /etc/motd", SeverityRecommended},
		{"ssh escalates one tier", SeverityHigh, "review /etc/ssh/sshd_config", SeverityCritical},
		{"kernel escalates one tier", SeverityRecommended, "new kernel installed", SeverityHigh},
		{"escalation caps at critical", SeverityCritical, "systemd unit changed", SeverityCritical},
		{"case insensitive", SeverityOptional, "SSH daemon restart pending", SeverityRecommended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscalateSeverity(tt.base, tt.message); got != tt.want {
				t.Errorf("EscalateSeverity(%v, %q) = %v, want %v", tt.base, tt.message, got, tt.want)
			}
		})
	}
}

func TestEscalateSeverity_SSHNeverOptional(t *testing.T) {
	// Property from the classification contract: a message mentioning ssh
	// never lands in the Optional tier because every baseline is escalated.
	for _, base := range []Severity{SeverityOptional, SeverityRecommended, SeverityHigh, SeverityCritical} {
		got := EscalateSeverity(base, "ssh server config changed")
		if got <= SeverityOptional {
			t.Errorf("ssh message stayed at %v from baseline %v", got, base)
		}
	}
}
