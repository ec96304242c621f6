// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/kraklabs/kfuzz/pkg/kfuzz/model"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/session"
	"github.com/kraklabs/kfuzz/pkg/kfuzz/target"
)

// EngineVersion is the reference driver's own version string, stored in
// SessionInfo for diagnostic purposes only - compatibility is decided by
// template hash, never by this string (spec.md §6 "Persisted state layout").
const EngineVersion = "0.1.0"

// Status summarizes how a Run call ended.
type Status string

const (
	StatusCompleted           Status = "completed"
	StatusEnvironmentNotReady Status = "environment_not_ready"
	StatusSessionIncompatible Status = "session_incompatible"
	StatusMaxFailuresReached  Status = "max_failures_reached"
	StatusCancelled           Status = "cancelled"
)

// Result summarizes a completed or aborted Run call.
type Result struct {
	Status       Status
	TestsRun     int
	FailureCount int
	LastIndex    int
}

// Config configures a Driver's run.
type Config struct {
	// Delay is applied after every post_test (spec.md §5).
	Delay time.Duration
	// Start is the first mutation index to run, inclusive.
	Start int
	// End is the last mutation index to run, exclusive. Zero value means
	// "run through num_mutations()".
	End int
	// MaxFailures stops the driver cleanly, after post_test, once this many
	// failed reports have been recorded. Zero means unlimited.
	MaxFailures int
	// NoEnvTest skips the pristine-render environment self-test
	// (spec.md §7, §11 "--no-env-test").
	NoEnvTest bool
	// ShowProgress enables the schollz/progressbar display.
	ShowProgress bool
	// NoColor disables colored report output regardless of TTY detection.
	NoColor bool
}

// Driver is the reference fuzzing-session driver (spec.md §6): it drives a
// Template through a Target, persisting progress to a session.Store.
type Driver struct {
	logger *slog.Logger
	tmpl   *model.Template
	tgt    target.Target
	store  session.Store
	cfg    Config

	metrics *Metrics
	printer *reportPrinter

	paused   atomic.Bool
	stopping atomic.Bool
}

// New builds a Driver. logger defaults to slog.Default() when nil.
func New(tmpl *model.Template, tgt target.Target, store session.Store, cfg Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		logger:  logger,
		tmpl:    tmpl,
		tgt:     tgt,
		store:   store,
		cfg:     cfg,
		metrics: newMetrics(),
		printer: newReportPrinter(os.Stdout, cfg.NoColor),
	}
}

// Metrics returns the driver's private Prometheus registry
// (kfuzz_tests_total, kfuzz_failures_total, kfuzz_current_index).
func (d *Driver) Metrics() *Metrics { return d.metrics }

// Pause suspends the loop at its next iteration boundary (spec.md §5
// "a shared manual-reset signal consulted at the top of each iteration").
func (d *Driver) Pause() { d.paused.Store(true) }

// Resume un-pauses a paused loop.
func (d *Driver) Resume() { d.paused.Store(false) }

// Run drives the template from cfg.Start through cfg.End (or
// num_mutations() if End is unset), persisting progress after every test.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if err := d.store.Start(); err != nil {
		return Result{}, fmt.Errorf("driver.run: %w", err)
	}

	info, resumed, err := d.prepareSessionInfo()
	if err != nil {
		return Result{Status: StatusSessionIncompatible}, err
	}

	start := d.cfg.Start
	if resumed && info.CurrentIndex+1 > start {
		start = info.CurrentIndex + 1
	}
	end := d.cfg.End
	if end == 0 {
		end = d.tmpl.NumMutations()
	}

	if err := d.tgt.Setup(ctx); err != nil {
		return Result{}, fmt.Errorf("driver.setup: %w", err)
	}

	if !d.cfg.NoEnvTest {
		if err := d.environmentSelfTest(ctx); err != nil {
			_ = d.tgt.Teardown(ctx)
			return Result{Status: StatusEnvironmentNotReady}, err
		}
	}

	result := d.loop(ctx, info, start, end)

	_ = d.tgt.Teardown(ctx)
	_ = d.store.Close()
	return result, nil
}

// RunOnly runs exactly the given mutation indices, in the order given,
// skipping everything else - the fixed literal test-index list mode
// supplemented from original_source/kitty's test_list.py (SPEC_FULL.md §11).
func (d *Driver) RunOnly(ctx context.Context, indices []int) (Result, error) {
	if err := d.store.Start(); err != nil {
		return Result{}, fmt.Errorf("driver.run_only: %w", err)
	}
	info, _, err := d.prepareSessionInfo()
	if err != nil {
		return Result{Status: StatusSessionIncompatible}, err
	}

	if err := d.tgt.Setup(ctx); err != nil {
		return Result{}, fmt.Errorf("driver.setup: %w", err)
	}
	if !d.cfg.NoEnvTest {
		if err := d.environmentSelfTest(ctx); err != nil {
			_ = d.tgt.Teardown(ctx)
			return Result{Status: StatusEnvironmentNotReady}, err
		}
	}

	result := Result{Status: StatusCompleted}
	for _, index := range indices {
		if d.shouldStop(ctx) {
			result.Status = StatusCancelled
			break
		}
		d.waitWhilePaused()

		d.tmpl.Reset()
		d.tmpl.Skip(index + 1)

		report := d.runOneTest(ctx, index)
		d.recordTest(info, index, report, &result)

		if d.cfg.MaxFailures > 0 && result.FailureCount >= d.cfg.MaxFailures {
			result.Status = StatusMaxFailuresReached
			break
		}
		d.sleepDelay()
	}

	_ = d.tgt.Teardown(ctx)
	_ = d.store.Close()
	return result, nil
}

func (d *Driver) prepareSessionInfo() (session.Info, bool, error) {
	existing, ok, err := d.store.GetSessionInfo()
	if err != nil {
		return session.Info{}, false, fmt.Errorf("driver.prepare_session: %w", err)
	}
	if !ok {
		info := session.NewInfo(EngineVersion, d.tmpl.Name(), d.tmpl.Hash(), d.cfg.Start, d.cfg.End)
		return info, false, nil
	}
	if err := existing.CheckCompatible(d.tmpl.Name(), d.tmpl.Hash()); err != nil {
		return session.Info{}, false, err
	}
	return existing, true, nil
}

// environmentSelfTest performs one pristine (index = 0, default-render)
// iteration before the fuzzing loop (spec.md §7).
func (d *Driver) environmentSelfTest(ctx context.Context) error {
	d.tmpl.Reset()
	report := d.runOneTest(ctx, 0)
	if report.Status != session.StatusPassed {
		return &EnvironmentNotReadyError{Report: report}
	}
	return nil
}

func (d *Driver) loop(ctx context.Context, info session.Info, start, end int) Result {
	result := Result{Status: StatusCompleted}

	d.tmpl.Reset()
	if start > 0 {
		d.tmpl.Skip(start)
	}

	var bar progressHandle
	if d.cfg.ShowProgress {
		bar = newProgressBar(end-start, d.tmpl.Name())
	}

	for index := start; index < end; index++ {
		if d.shouldStop(ctx) {
			result.Status = StatusCancelled
			break
		}
		d.waitWhilePaused()

		if !d.tmpl.Mutate() {
			break
		}

		report := d.runOneTest(ctx, index)
		d.recordTest(info, index, report, &result)
		if bar != nil {
			_ = bar.Add(1)
		}

		if d.cfg.MaxFailures > 0 && result.FailureCount >= d.cfg.MaxFailures {
			result.Status = StatusMaxFailuresReached
			break
		}
		d.sleepDelay()
	}
	return result
}

// progressHandle is the subset of *progressbar.ProgressBar the loop needs,
// so tests can run without importing the real bar.
type progressHandle interface {
	Add(n int) error
}

func (d *Driver) runOneTest(ctx context.Context, index int) session.Report {
	if err := d.tgt.PreTest(ctx, index); err != nil {
		return session.Report{Status: session.StatusError, Reason: fmt.Sprintf("pre_test: %v", err)}
	}

	payload := d.tmpl.Render()
	if err := d.tgt.Transmit(ctx, payload); err != nil {
		if err != target.ErrNotSupported {
			return session.Report{Status: session.StatusError, Reason: fmt.Sprintf("transmit: %v", err)}
		}
		if err := d.tgt.Trigger(ctx); err != nil {
			return session.Report{Status: session.StatusError, Reason: fmt.Sprintf("trigger: %v", err)}
		}
	}

	if err := d.tgt.PostTest(ctx, index); err != nil {
		return session.Report{Status: session.StatusError, Reason: fmt.Sprintf("post_test: %v", err)}
	}

	report, err := d.tgt.GetReport(ctx)
	if err != nil {
		return session.Report{Status: session.StatusError, Reason: fmt.Sprintf("get_report: %v", err)}
	}
	return report
}

func (d *Driver) recordTest(info session.Info, index int, report session.Report, result *Result) {
	result.TestsRun++
	result.LastIndex = index
	if report.Status == session.StatusFailed {
		result.FailureCount++
	}

	d.metrics.testsTotal.Inc()
	if report.Status == session.StatusFailed {
		d.metrics.failuresTotal.Inc()
	}
	d.metrics.currentIndex.Set(float64(index))

	if err := d.store.StoreReport(index, report); err != nil {
		d.logger.Warn("driver.store_report", "index", index, "error", err)
	}

	info.CurrentIndex = index
	info.FailureCount = result.FailureCount
	if err := d.store.SetSessionInfo(info); err != nil {
		d.logger.Warn("driver.set_session_info", "index", index, "error", err)
	}

	d.printer.Print(index, report)
	d.logger.Debug("driver.post_test", "index", index, "status", report.Status)
}

func (d *Driver) waitWhilePaused() {
	for d.paused.Load() {
		time.Sleep(25 * time.Millisecond)
	}
}

func (d *Driver) shouldStop(ctx context.Context) bool {
	if d.stopping.Load() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (d *Driver) sleepDelay() {
	if d.cfg.Delay > 0 {
		time.Sleep(d.cfg.Delay)
	}
}
