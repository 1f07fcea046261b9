// Package runner drives the full comparison matrix: for every artifact-name
// template it checks the current commit's artifacts, downloads the report
// log, resolves the nearest baseline and invokes the comparator, collecting
// exactly one outcome per processed name.
package runner

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/baseliner/internal/artifact"
	"github.com/harrison/baseliner/internal/baseline"
	"github.com/harrison/baseliner/internal/compare"
	"github.com/harrison/baseliner/internal/matrix"
	"github.com/harrison/baseliner/internal/results"
)

// NoBaselineSuffix tags the synthetic baseline hash used when no ancestor
// produced a usable report.
const NoBaselineSuffix = "-no-baseline"

// summarySuffix is appended to the rendered build name to form the summary
// file name.
const summarySuffix = "-report-summary.md"

// Downloader places a report artifact at its canonical local path.
type Downloader interface {
	Download(ctx context.Context, name string, id int64) (string, error)
}

// CursorSource hands out fresh baseline-candidate cursors, one per template.
type CursorSource interface {
	Cursor(ctx context.Context) (baseline.Cursor, error)
}

// Logger is the subset of the console logger the runner needs.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Config wires the runner's collaborators.
type Config struct {
	// CurrentHash is the commit under test.
	CurrentHash string

	// Templates are the artifact-name templates to process, each with one
	// open placeholder for a commit hash.
	Templates []string

	Checker    baseline.Checker
	Downloader Downloader
	Cursors    CursorSource
	Comparator compare.Comparator
	Collector  *results.Collector
	Logger     Logger

	// SummariesDir receives the comparator output files.
	SummariesDir string

	// DryRun limits processing to existence checks: nothing is downloaded
	// and no comparisons run, but missing artifacts are still recorded.
	DryRun bool
}

// Runner processes the artifact matrix sequentially.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run processes every template in order. Expected absences (missing build or
// report, no baseline) and comparator errors are recorded in the collector
// and never stop the run; transport and store errors abort it.
func (r *Runner) Run(ctx context.Context) error {
	for _, template := range r.cfg.Templates {
		if err := r.processTemplate(ctx, template); err != nil {
			return err
		}
	}
	return nil
}

// processTemplate handles one artifact-name template end to end.
func (r *Runner) processTemplate(ctx context.Context, template string) error {
	name := matrix.Render(template, r.cfg.CurrentHash)

	check, err := r.cfg.Checker.Check(ctx, name)
	if err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	// A missing build is recorded even when the report survived; in that
	// case processing continues and the report is still compared.
	if check.BuildMissing {
		r.cfg.Logger.Warn("build failed for %s", name)
		r.cfg.Collector.RecordBuildFailure(name)
	}

	switch check.Status {
	case artifact.StatusBuildMissing:
		return nil
	case artifact.StatusReportMissing:
		r.cfg.Logger.Warn("testsuite failed for %s", name)
		r.cfg.Collector.RecordTestsuiteFailure(name, results.ReasonMissingReport)
		return nil
	}

	if r.cfg.DryRun {
		r.cfg.Logger.Info("artifact present for %s (dry run, skipping download)", name)
		return nil
	}

	reportName := name + artifact.ReportSuffix
	summaryPath := filepath.Join(r.cfg.SummariesDir, name+summarySuffix)

	r.cfg.Logger.Debug("downloading report %s (id %d)", reportName, check.ReportID)
	currentLog, err := r.cfg.Downloader.Download(ctx, reportName, check.ReportID)
	if err != nil {
		return fmt.Errorf("runner: download current report for %s: %w", name, err)
	}

	cursor, err := r.cfg.Cursors.Cursor(ctx)
	if err != nil {
		return fmt.Errorf("runner: %w", err)
	}
	candidate, err := baseline.Resolve(ctx, cursor, r.cfg.Checker, template)
	if err != nil {
		return fmt.Errorf("runner: resolve baseline for %s: %w", name, err)
	}

	if !candidate.Found {
		return r.compareWithoutBaseline(ctx, reportName, currentLog, summaryPath)
	}

	baseReportName := matrix.Render(template, candidate.Hash) + artifact.ReportSuffix
	r.cfg.Logger.Debug("downloading baseline report %s (id %d)", baseReportName, candidate.ReportID)
	baseLog, err := r.cfg.Downloader.Download(ctx, baseReportName, candidate.ReportID)
	if err != nil {
		return fmt.Errorf("runner: download baseline report for %s: %w", name, err)
	}

	r.cfg.Logger.Info("comparing %s against baseline %s", r.cfg.CurrentHash, candidate.Hash)
	err = r.cfg.Comparator.Compare(ctx, candidate.Hash, baseLog, r.cfg.CurrentHash, currentLog, summaryPath)
	if err != nil {
		r.cfg.Logger.Warn("comparator rejected %s: %v", reportName, err)
		r.cfg.Collector.RecordTestsuiteFailure(reportName, err.Error())
		return nil
	}
	r.cfg.Collector.RecordCompared(reportName)
	return nil
}

// compareWithoutBaseline runs the degenerate self-comparison used when no
// ancestor has a usable report. The current log stands in for the baseline on
// both sides, under a synthetic hash, so the comparator still validates the
// log and emits a summary.
func (r *Runner) compareWithoutBaseline(ctx context.Context, reportName, currentLog, summaryPath string) error {
	r.cfg.Logger.Warn("no baseline for %s", reportName)
	r.cfg.Collector.RecordNoBaseline(reportName)

	syntheticHash := r.cfg.CurrentHash + NoBaselineSuffix
	err := r.cfg.Comparator.Compare(ctx, syntheticHash, currentLog, syntheticHash, currentLog, summaryPath)
	if err != nil {
		r.cfg.Logger.Warn("comparator rejected %s: %v", reportName, err)
		r.cfg.Collector.RecordTestsuiteFailure(reportName, err.Error())
		return nil
	}
	r.cfg.Collector.RecordCompared(reportName)
	return nil
}
