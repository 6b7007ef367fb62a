// SPDX-License-Identifier: MPL-2.0

package classify

// Buckets groups Findings by severity tier for presentation. Iterate with
// Tiers() to get the Critical → Optional ordering.
type Buckets map[Severity][]Finding

// Aggregate buckets Findings into severity tiers, deduplicating on
// (category, message): the first occurrence wins and keeps its relative
// order within its tier. Severity is trusted as assigned by the classifier,
// never re-derived. An empty input yields an all-empty mapping.
func Aggregate(findings []Finding) Buckets {
	buckets := make(Buckets, len(Tiers()))
	for _, tier := range Tiers() {
		buckets[tier] = nil
	}

	type key struct {
		category Category
		message  string
	}
	seen := make(map[key]bool, len(findings))

	for _, f := range findings {
		k := key{f.Category, f.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		buckets[f.Severity] = append(buckets[f.Severity], f)
	}

	return buckets
}

// Total returns the number of Findings across all tiers.
func (b Buckets) Total() int {
	n := 0
	for _, fs := range b {
		n += len(fs)
	}
	return n
}
