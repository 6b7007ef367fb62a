// SPDX-License-Identifier: MPL-2.0

// Package engine orchestrates one system-update run: refresh indexes,
// upgrade packages, update optional components, clean caches, and run
// post-checks, feeding every captured output through the outcome classifier
// into a single UpdateRun envelope.
//
// Phases execute strictly sequentially because the package database lock
// admits no concurrency, and they are independently degradable: a failing
// mutating phase becomes a Critical Finding and the run continues, so the
// final report carries maximal diagnostics even under partial failure.
package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"upkeep-cli/internal/classify"
	"upkeep-cli/internal/dialect"
)

type (
	// Options select which phases and optional components a run performs.
	Options struct {
		// DryRun skips every mutating operation; the simulation and the
		// post-checks still run.
		DryRun bool
		// DistUpgrade selects the full distribution upgrade variant.
		DistUpgrade bool
		// Snap, Flatpak and Firmware enable the optional component phases.
		Snap     bool
		Flatpak  bool
		Firmware bool
		// EtcRoot is the tree scanned for backup-suffixed config files.
		// Defaults to /etc; tests point it at a fixture directory.
		EtcRoot string
		// Lock bounds the package-database lock wait.
		Lock LockRetry
	}

	// Engine drives one update run against a dialect.
	Engine struct {
		dialect    dialect.Dialect
		runner     CommandRunner
		probes     Probes
		classifier *classify.Classifier
		logger     *log.Logger
		opts       Options
	}
)

// optionalComponent describes one independently-toggled extra updater.
type optionalComponent struct {
	name string
	tool string
	argv [][]string
	hint string
}

// New assembles an Engine. extraRules are appended after the dialect's
// built-in table so user drop-in rules never shadow the built-ins.
func New(d dialect.Dialect, runner CommandRunner, probes Probes, logger *log.Logger, extraRules []classify.Rule, opts Options) *Engine {
	if opts.Lock.Attempts == 0 {
		opts.Lock = DefaultLockRetry()
	}
	if opts.EtcRoot == "" {
		opts.EtcRoot = "/etc"
	}
	return &Engine{
		dialect:    d,
		runner:     runner,
		probes:     probes,
		classifier: classify.NewClassifier(append(d.Rules(), extraRules...)),
		logger:     logger,
		opts:       opts,
	}
}

// Execute performs the full phase sequence and returns the populated
// UpdateRun. Only lock-timeout exhaustion and context cancellation are
// fatal; they abort the run with no UpdateRun.
func (e *Engine) Execute(ctx context.Context) (*UpdateRun, error) {
	run := NewUpdateRun(e.dialect.Name(), e.opts.DryRun)

	if err := e.refresh(ctx, run); err != nil {
		return nil, err
	}
	if err := e.upgrade(ctx, run); err != nil {
		return nil, err
	}
	e.optionalComponents(ctx, run)
	if err := e.cleanup(ctx, run); err != nil {
		return nil, err
	}
	e.postChecks(ctx, run)

	return run, nil
}

// Check performs the read-only subset of a run: the upgrade simulation for
// the pending count, then the post-check probes. It never refreshes indexes
// or mutates anything, so it works without privileges.
func (e *Engine) Check(ctx context.Context) (*UpdateRun, error) {
	run := NewUpdateRun(e.dialect.Name(), true)

	simRes, err := e.lockedRun(ctx, e.dialect.Simulate(e.opts.DistUpgrade))
	if err != nil {
		return nil, err
	}
	simSource := e.dialect.Name() + "-simulate"
	run.AddFindings(e.classifier.Classify(simRes.Combined(), simSource))
	if simRes.Err == nil && e.dialect.SimulateExitOK(simRes.ExitCode) {
		run.PackagesAvailable = e.dialect.CountPending(simRes.Combined())
	}

	e.postChecks(ctx, run)
	return run, nil
}

// refresh updates the package indexes.
func (e *Engine) refresh(ctx context.Context, run *UpdateRun) error {
	e.logger.Info("refreshing package indexes", "dialect", e.dialect.Name())

	res, err := e.lockedRun(ctx, e.dialect.Refresh())
	if err != nil {
		return err
	}

	source := e.dialect.Name() + "-refresh"
	run.AddFindings(e.classifier.Classify(res.Combined(), source))
	if res.Failed() {
		run.AddFinding(e.operationFailed("package index refresh", source, res))
	}
	return nil
}

// upgrade simulates to count pending updates, then applies them unless in
// dry-run mode.
func (e *Engine) upgrade(ctx context.Context, run *UpdateRun) error {
	simRes, err := e.lockedRun(ctx, e.dialect.Simulate(e.opts.DistUpgrade))
	if err != nil {
		return err
	}

	simSource := e.dialect.Name() + "-simulate"
	run.AddFindings(e.classifier.Classify(simRes.Combined(), simSource))
	if simRes.Err == nil && e.dialect.SimulateExitOK(simRes.ExitCode) {
		run.PackagesAvailable = e.dialect.CountPending(simRes.Combined())
	} else {
		run.AddFinding(e.operationFailed("upgrade simulation", simSource, simRes))
	}
	e.logger.Info("pending updates", "count", run.PackagesAvailable)

	if e.opts.DryRun {
		e.logger.Info("dry-run, skipping upgrade")
		return nil
	}
	if run.PackagesAvailable == 0 {
		return nil
	}

	e.logger.Info("applying upgrades", "count", run.PackagesAvailable)
	res, err := e.lockedRun(ctx, e.dialect.Upgrade(e.opts.DistUpgrade))
	if err != nil {
		return err
	}

	source := e.dialect.Name() + "-upgrade"
	run.AddFindings(e.classifier.Classify(res.Combined(), source))
	if res.Failed() {
		run.AddFinding(e.operationFailed("package upgrade", source, res))
		return nil
	}
	run.PackagesApplied = run.PackagesAvailable
	return nil
}

// optionalComponents updates snap, flatpak and firmware when enabled. A
// missing tool degrades to an installation-hint Finding, never a failure.
func (e *Engine) optionalComponents(ctx context.Context, run *UpdateRun) {
	for _, c := range e.enabledComponents() {
		if !e.probes.HasCommand(c.tool) {
			run.AddFinding(classify.Finding{
				Category: classify.CategoryOptionalSuggestion,
				Severity: classify.SeverityOptional,
				Message:  c.hint,
				Source:   c.name,
			})
			continue
		}

		if e.opts.DryRun {
			continue
		}

		e.logger.Info("updating optional component", "component", c.name)
		for _, argv := range c.argv {
			res := e.runner.Run(ctx, argv)
			run.AddFindings(e.classifier.Classify(res.Combined(), c.name))
			if res.Failed() {
				msg := fmt.Sprintf("%s update reported problems, run '%s' manually", c.name, argv[0])
				run.AddFinding(classify.Finding{
					Category: classify.CategoryOptionalSuggestion,
					Severity: classify.EscalateSeverity(classify.SeverityRecommended, msg),
					Message:  msg,
					Source:   c.name,
				})
				break
			}
		}
	}
}

// cleanup removes orphans and prunes the package cache.
func (e *Engine) cleanup(ctx context.Context, run *UpdateRun) error {
	if e.opts.DryRun {
		return nil
	}

	e.logger.Info("cleaning up")
	for _, argv := range e.dialect.Cleanup() {
		res, err := e.lockedRun(ctx, argv)
		if err != nil {
			return err
		}
		source := e.dialect.Name() + "-cleanup"
		run.AddFindings(e.classifier.Classify(res.Combined(), source))
		if res.Failed() {
			run.AddFinding(e.operationFailed("cache cleanup", source, res))
		}
	}
	return nil
}

// postChecks runs the read-only diagnostics: reboot marker, explicit reboot
// probe, service-restart scan, package-database audit, /etc backup scan, and
// the kernel check. Post-checks never fail the run.
func (e *Engine) postChecks(ctx context.Context, run *UpdateRun) {
	for _, marker := range e.dialect.RebootMarkers() {
		if e.probes.FileExists(marker) {
			msg := "system reboot required (marker file present)"
			run.AddFindingOnce(classify.Finding{
				Category: classify.CategoryRebootRequired,
				Severity: classify.SeverityHigh,
				Message:  msg,
				Source:   "reboot-marker",
			})
		}
	}

	if argv := e.dialect.RebootCheck(); argv != nil {
		res := e.runner.Run(ctx, argv)
		for _, f := range e.classifier.Classify(res.Combined(), "reboot-check") {
			run.AddFindingOnce(f)
		}
	}

	if argv := e.dialect.ServiceCheck(); argv != nil {
		if !e.probes.HasCommand(argv[0]) {
			run.AddFindingOnce(classify.Finding{
				Category: classify.CategoryOptionalSuggestion,
				Severity: classify.SeverityOptional,
				Message:  fmt.Sprintf("service restart detection needs %s, install it for restart hints", argv[0]),
				Source:   "service-check",
			})
		} else {
			res := e.runner.Run(ctx, argv)
			run.AddFindings(e.classifier.Classify(res.Combined(), "service-check"))
		}
	}

	if argv := e.dialect.Audit(); argv != nil {
		res := e.runner.Run(ctx, argv)
		source := e.dialect.Name() + "-audit"
		run.AddFindings(e.classifier.Classify(res.Combined(), source))
	}

	for _, path := range e.probes.ScanBackupFiles(e.opts.EtcRoot, e.dialect.BackupSuffixes()) {
		msg := fmt.Sprintf("configuration conflict, review backup file %s", path)
		run.AddFindingOnce(classify.Finding{
			Category: classify.CategoryConfigConflict,
			Severity: classify.EscalateSeverity(classify.SeverityHigh, msg),
			Message:  msg,
			Source:   "etc-scan",
		})
	}

	if kernelPending(e.probes.RunningKernel(), e.probes.InstalledKernels()) {
		run.AddFindingOnce(classify.Finding{
			Category: classify.CategoryRebootRequired,
			Severity: classify.SeverityCritical,
			Message:  "a newer kernel is installed than the one running, reboot to use it",
			Source:   "kernel-check",
		})
	}
}

// lockedRun wraps a package-manager invocation with the bounded lock wait.
func (e *Engine) lockedRun(ctx context.Context, argv []string) (*Result, error) {
	res, err := runWithLockRetry(ctx, e.runner, argv, e.dialect.LockHeld, e.opts.Lock)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// operationFailed builds the Critical Finding recorded when a package
// manager operation reports an error. The run continues to later phases.
func (e *Engine) operationFailed(operation, source string, res *Result) classify.Finding {
	msg := fmt.Sprintf("%s failed (exit %d)", operation, res.ExitCode)
	if res.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", operation, res.Err)
	}
	e.logger.Error(msg, "source", source)
	return classify.Finding{
		Category: classify.CategoryBrokenPackage,
		Severity: classify.SeverityCritical,
		Message:  msg,
		Source:   source,
	}
}

// enabledComponents returns the optional components selected by Options.
func (e *Engine) enabledComponents() []optionalComponent {
	var cs []optionalComponent
	if e.opts.Snap {
		cs = append(cs, optionalComponent{
			name: "snap",
			tool: "snap",
			argv: [][]string{{"snap", "refresh"}},
			hint: "snap updates requested but snapd is not installed, install the 'snapd' package",
		})
	}
	if e.opts.Flatpak {
		cs = append(cs, optionalComponent{
			name: "flatpak",
			tool: "flatpak",
			argv: [][]string{{"flatpak", "update", "-y", "--noninteractive"}},
			hint: "flatpak updates requested but flatpak is not installed, install the 'flatpak' package",
		})
	}
	if e.opts.Firmware {
		cs = append(cs, optionalComponent{
			name: "firmware",
			tool: "fwupdmgr",
			argv: [][]string{{"fwupdmgr", "refresh", "--force"}, {"fwupdmgr", "update", "-y"}},
			hint: "firmware updates requested but fwupdmgr is not installed, install the 'fwupd' package",
		})
	}
	return cs
}
