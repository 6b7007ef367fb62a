// SPDX-License-Identifier: MPL-2.0

// Package classify turns raw package-manager output and probe results into
// typed Findings and groups them into severity tiers for presentation.
//
// Classification is best-effort diagnostics, not strict parsing: text that
// matches no rule simply produces no Findings, never an error.
package classify

import "sort"

// Classifier applies an ordered rule table against captured text. It is a
// pure function of its inputs: classifying the same text twice yields
// identical Finding sequences.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a Classifier over the given ordered rule table.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the classifier's rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Classify scans text against the rule table and returns zero or more
// Findings tagged with source. A line that already produced a Finding under
// a category is not counted again under the same category, so overlapping
// rules never double-report.
func (c *Classifier) Classify(text, source string) []Finding {
	if text == "" {
		return nil
	}

	lineStarts := lineStartOffsets(text)
	claimed := make(map[Category]map[int]bool)

	var findings []Finding
	for _, rule := range c.rules {
		lines := claimed[rule.Category]
		if lines == nil {
			lines = make(map[int]bool)
			claimed[rule.Category] = lines
		}

		matches := rule.Pattern.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		if rule.hasCapture() {
			seen := make(map[string]bool)
			for _, m := range matches {
				line := lineAt(lineStarts, m[0])
				if lines[line] {
					continue
				}
				lines[line] = true

				capture := firstCapture(text, m)
				if capture == "" || seen[capture] {
					continue
				}
				seen[capture] = true

				msg := rule.message(capture)
				findings = append(findings, Finding{
					Category: rule.Category,
					Severity: EscalateSeverity(rule.Severity, msg),
					Message:  msg,
					Source:   source,
				})
			}
			continue
		}

		matched := false
		for _, m := range matches {
			line := lineAt(lineStarts, m[0])
			if lines[line] {
				continue
			}
			lines[line] = true
			matched = true
		}
		if matched {
			findings = append(findings, Finding{
				Category: rule.Category,
				Severity: EscalateSeverity(rule.Severity, rule.Summary),
				Message:  rule.Summary,
				Source:   source,
			})
		}
	}

	return findings
}

// firstCapture returns the first non-empty capture group of a match.
func firstCapture(text string, m []int) string {
	for i := 2; i+1 < len(m); i += 2 {
		if m[i] >= 0 {
			return text[m[i]:m[i+1]]
		}
	}
	return ""
}

// lineStartOffsets returns the byte offset of each line start in text.
func lineStartOffsets(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' && i+1 < len(text) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt maps a byte offset to its zero-based line number.
func lineAt(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}
