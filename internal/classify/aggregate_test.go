// SPDX-License-Identifier: MPL-2.0

package classify

import (
	"reflect"
	"testing"
)

func TestAggregate_Dedup(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		tier     Severity
		want     []string // messages in order within tier
	}{
		{
			name: "identical category and message across sources collapse to one",
			findings: []Finding{
				{Category: CategoryRebootRequired, Severity: SeverityHigh, Message: "reboot required", Source: "reboot-marker"},
				{Category: CategoryRebootRequired, Severity: SeverityHigh, Message: "reboot required", Source: "apt-upgrade"},
			},
			tier: SeverityHigh,
			want: []string{"reboot required"},
		},
		{
			name: "same message different category kept",
			findings: []Finding{
				{Category: CategoryBrokenPackage, Severity: SeverityHigh, Message: "libfoo", Source: "a"},
				{Category: CategoryServiceRestart, Severity: SeverityHigh, Message: "libfoo", Source: "a"},
			},
			tier: SeverityHigh,
			want: []string{"libfoo", "libfoo"},
		},
		{
			name: "relative order preserved within tier",
			findings: []Finding{
				{Category: CategoryConfigConflict, Severity: SeverityHigh, Message: "first", Source: "a"},
				{Category: CategoryConfigConflict, Severity: SeverityHigh, Message: "second", Source: "a"},
				{Category: CategoryConfigConflict, Severity: SeverityHigh, Message: "first", Source: "b"},
			},
			tier: SeverityHigh,
			want: []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := Aggregate(tt.findings)
			var got []string
			for _, f := range buckets[tt.tier] {
				got = append(got, f.Message)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tier %v messages = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	buckets := Aggregate(nil)

	if buckets.Total() != 0 {
		t.Errorf("Total() = %d, want 0", buckets.Total())
	}
	for _, tier := range Tiers() {
		if _, ok := buckets[tier]; !ok {
			t.Errorf("tier %v missing from empty aggregate", tier)
		}
		if len(buckets[tier]) != 0 {
			t.Errorf("tier %v not empty: %+v", tier, buckets[tier])
		}
	}
}

func TestAggregate_SeverityTrusted(t *testing.T) {
	// The aggregator must not re-derive severity, even when the message
	// contains escalation keywords.
	buckets := Aggregate([]Finding{
		{Category: CategoryOptionalSuggestion, Severity: SeverityOptional, Message: "install ssh tooling", Source: "probe"},
	})

	if len(buckets[SeverityOptional]) != 1 {
		t.Fatalf("finding not kept in its assigned tier: %+v", buckets)
	}
}

func TestTiers_Order(t *testing.T) {
	want := []Severity{SeverityCritical, SeverityHigh, SeverityRecommended, SeverityOptional}
	if got := Tiers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Tiers() = %v, want %v", got, want)
	}
}
