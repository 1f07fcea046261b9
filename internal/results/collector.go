// Package results collects per-artifact outcomes in memory during a run and
// serializes the failures to the categorized log files once at the end.
// Keeping outcomes in memory until the flush avoids scattering appends across
// the run while preserving the on-disk contract: the three failure files are
// append-only, and repeated runs append duplicate lines rather than deduping.
package results

import (
	"path/filepath"

	"github.com/harrison/baseliner/internal/filelock"
)

// Failure log file names, relative to the logs directory.
const (
	FailedBuildFile     = "failed_build.txt"
	FailedTestsuiteFile = "failed_testsuite.txt"
	NoBaselineFile      = "no_baseline.txt"
)

// Canonical failure reasons.
const (
	ReasonCheckLogs     = "Check logs"
	ReasonMissingReport = "Cannot find testsuite artifact"
)

// Kind classifies the outcome of processing one artifact name.
type Kind int

const (
	// KindCompared means a comparison summary was produced.
	KindCompared Kind = iota

	// KindBuildFailed means the build artifact was absent.
	KindBuildFailed

	// KindTestsuiteFailed means the report artifact was absent or the
	// comparator rejected the logs.
	KindTestsuiteFailed

	// KindNoBaseline means no ancestor commit had a usable report.
	KindNoBaseline
)

// Outcome records what happened to one artifact name.
type Outcome struct {
	// Name is the artifact name as it should appear in the failure logs.
	Name string

	Kind Kind

	// Reason is the failure detail; empty for KindCompared and KindNoBaseline.
	Reason string
}

// Counts summarizes the outcomes of one run.
type Counts struct {
	Compared        int
	BuildFailed     int
	TestsuiteFailed int
	NoBaseline      int
}

// Collector accumulates outcomes for one run.
type Collector struct {
	outcomes []Outcome
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordCompared notes that a summary was written for name.
func (c *Collector) RecordCompared(name string) {
	c.outcomes = append(c.outcomes, Outcome{Name: name, Kind: KindCompared})
}

// RecordBuildFailure notes that the build artifact for name was absent.
func (c *Collector) RecordBuildFailure(name string) {
	c.outcomes = append(c.outcomes, Outcome{Name: name, Kind: KindBuildFailed, Reason: ReasonCheckLogs})
}

// RecordTestsuiteFailure notes a missing report artifact or a comparator
// error for name.
func (c *Collector) RecordTestsuiteFailure(name, reason string) {
	c.outcomes = append(c.outcomes, Outcome{Name: name, Kind: KindTestsuiteFailed, Reason: reason})
}

// RecordNoBaseline notes that no ancestor had a usable report for name.
func (c *Collector) RecordNoBaseline(name string) {
	c.outcomes = append(c.outcomes, Outcome{Name: name, Kind: KindNoBaseline})
}

// Outcomes returns the recorded outcomes in insertion order.
func (c *Collector) Outcomes() []Outcome {
	return c.outcomes
}

// Counts tallies the recorded outcomes by kind.
func (c *Collector) Counts() Counts {
	var counts Counts
	for _, o := range c.outcomes {
		switch o.Kind {
		case KindCompared:
			counts.Compared++
		case KindBuildFailed:
			counts.BuildFailed++
		case KindTestsuiteFailed:
			counts.TestsuiteFailed++
		case KindNoBaseline:
			counts.NoBaseline++
		}
	}
	return counts
}

// Flush appends the recorded failures to the categorized log files under dir.
// Build and testsuite failures are written as "<name>|<reason>" lines;
// no-baseline records carry the name only. Existing file content is never
// rewritten, so rerunning appends duplicate lines.
func (c *Collector) Flush(dir string) error {
	var build, testsuite, noBaseline []string
	for _, o := range c.outcomes {
		switch o.Kind {
		case KindBuildFailed:
			build = append(build, o.Name+"|"+o.Reason)
		case KindTestsuiteFailed:
			testsuite = append(testsuite, o.Name+"|"+o.Reason)
		case KindNoBaseline:
			noBaseline = append(noBaseline, o.Name)
		}
	}

	if err := filelock.AppendLines(filepath.Join(dir, FailedBuildFile), build); err != nil {
		return err
	}
	if err := filelock.AppendLines(filepath.Join(dir, FailedTestsuiteFile), testsuite); err != nil {
		return err
	}
	return filelock.AppendLines(filepath.Join(dir, NoBaselineFile), noBaseline)
}
