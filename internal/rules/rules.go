// SPDX-License-Identifier: MPL-2.0

// Package rules loads user-supplied classification rules from TOML drop-in
// files. Drop-ins let an operator teach upkeep about site-specific tool
// output (an in-house package repo, a config management agent) without
// rebuilding the binary.
//
// File format, one or more [[rule]] tables per file:
//
//	[[rule]]
//	category = "config-conflict"
//	pattern  = '(/[^\s]+\.mysite-backup)'
//	severity = "high"
//	summary  = "site backup file %s needs review"
package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"upkeep-cli/internal/classify"
)

// ruleFile is the on-disk shape of one drop-in.
type ruleFile struct {
	Rules []ruleSpec `toml:"rule"`
}

// ruleSpec is one [[rule]] table.
type ruleSpec struct {
	Category string `toml:"category"`
	Pattern  string `toml:"pattern"`
	Severity string `toml:"severity"`
	Summary  string `toml:"summary"`
}

var categories = map[string]classify.Category{
	"config-conflict": classify.CategoryConfigConflict,
	"reboot-required": classify.CategoryRebootRequired,
	"broken-package":  classify.CategoryBrokenPackage,
	"service-restart": classify.CategoryServiceRestart,
	"suggestion":      classify.CategoryOptionalSuggestion,
}

var severities = map[string]classify.Severity{
	"optional":    classify.SeverityOptional,
	"recommended": classify.SeverityRecommended,
	"high":        classify.SeverityHigh,
	"critical":    classify.SeverityCritical,
}

// LoadDir reads every *.toml file under dir, sorted by filename so rule
// order is stable across runs. A missing directory is not an error: most
// hosts have no drop-ins.
func LoadDir(dir string) ([]classify.Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read rules directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".toml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rules []classify.Rule
	for _, name := range names {
		path := filepath.Join(dir, name)
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}

// loadFile parses and validates one drop-in file.
func loadFile(path string) ([]classify.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}

	var f ruleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	rules := make([]classify.Rule, 0, len(f.Rules))
	for i, spec := range f.Rules {
		rule, err := compile(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %d: %w", path, i+1, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// compile validates one ruleSpec and compiles its pattern.
func compile(spec ruleSpec) (classify.Rule, error) {
	category, ok := categories[spec.Category]
	if !ok {
		return classify.Rule{}, fmt.Errorf("unknown category %q", spec.Category)
	}

	severity, ok := severities[strings.ToLower(spec.Severity)]
	if !ok {
		return classify.Rule{}, fmt.Errorf("unknown severity %q", spec.Severity)
	}

	if spec.Summary == "" {
		return classify.Rule{}, fmt.Errorf("summary must not be empty")
	}

	pattern, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return classify.Rule{}, fmt.Errorf("invalid pattern: %w", err)
	}

	return classify.Rule{
		Category: category,
		Pattern:  pattern,
		Severity: severity,
		Summary:  spec.Summary,
	}, nil
}
