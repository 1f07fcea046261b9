package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/baseliner/internal/artifact"
	"github.com/harrison/baseliner/internal/baseline"
	"github.com/harrison/baseliner/internal/history"
	"github.com/harrison/baseliner/internal/results"
)

const testTemplate = "gcc-linux-rv64gc-lp64d-%s-multilib"

type fakeChecker struct {
	checks map[string]artifact.Check
	err    error
}

func (f *fakeChecker) Check(ctx context.Context, name string) (artifact.Check, error) {
	if f.err != nil {
		return artifact.Check{}, f.err
	}
	if check, ok := f.checks[name]; ok {
		return check, nil
	}
	return artifact.Check{Status: artifact.StatusBuildMissing, BuildMissing: true}, nil
}

type fakeDownloader struct {
	downloads []string
	err       error
}

func (f *fakeDownloader) Download(ctx context.Context, name string, id int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.downloads = append(f.downloads, name)
	return filepath.Join("logs", name), nil
}

type fakeCursors struct {
	hashes []string
}

func (f *fakeCursors) Cursor(ctx context.Context) (baseline.Cursor, error) {
	return history.NewCursor(f.hashes), nil
}

type compareCall struct {
	baseHash, baseLog, currentHash, currentLog, summaryPath string
}

type fakeComparator struct {
	calls []compareCall
	err   error
}

func (f *fakeComparator) Compare(ctx context.Context, baseHash, baseLog, currentHash, currentLog, summaryPath string) error {
	f.calls = append(f.calls, compareCall{baseHash, baseLog, currentHash, currentLog, summaryPath})
	return f.err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

func newTestConfig(checker *fakeChecker, downloader *fakeDownloader, cursors *fakeCursors, comparator *fakeComparator, collector *results.Collector) Config {
	return Config{
		CurrentHash:  "abc123",
		Templates:    []string{testTemplate},
		Checker:      checker,
		Downloader:   downloader,
		Cursors:      cursors,
		Comparator:   comparator,
		Collector:    collector,
		Logger:       nopLogger{},
		SummariesDir: "summaries",
	}
}

func TestRunComparesAgainstResolvedBaseline(t *testing.T) {
	currentName := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	baseName := "gcc-linux-rv64gc-lp64d-def456-multilib"

	checker := &fakeChecker{checks: map[string]artifact.Check{
		currentName: {Status: artifact.StatusFound, ReportID: 7},
		baseName:    {Status: artifact.StatusFound, ReportID: 9},
	}}
	downloader := &fakeDownloader{}
	comparator := &fakeComparator{}
	collector := results.NewCollector()

	run := New(newTestConfig(checker, downloader, &fakeCursors{hashes: []string{"def456"}}, comparator, collector))
	require.NoError(t, run.Run(context.Background()))

	require.Len(t, comparator.calls, 1)
	assert.Equal(t, compareCall{
		baseHash:    "def456",
		baseLog:     filepath.Join("logs", baseName+"-report.log"),
		currentHash: "abc123",
		currentLog:  filepath.Join("logs", currentName+"-report.log"),
		summaryPath: filepath.Join("summaries", currentName+"-report-summary.md"),
	}, comparator.calls[0])

	assert.Equal(t, []string{currentName + "-report.log", baseName + "-report.log"}, downloader.downloads)

	counts := collector.Counts()
	assert.Equal(t, 1, counts.Compared)
	assert.Zero(t, counts.BuildFailed)
	assert.Zero(t, counts.NoBaseline)
}

func TestRunWithoutBaselineComparesLogAgainstItself(t *testing.T) {
	currentName := "gcc-linux-rv64gc-lp64d-abc123-multilib"

	checker := &fakeChecker{checks: map[string]artifact.Check{
		currentName: {Status: artifact.StatusFound, ReportID: 7},
	}}
	downloader := &fakeDownloader{}
	comparator := &fakeComparator{}
	collector := results.NewCollector()

	// Ancestors exist but none has artifacts.
	run := New(newTestConfig(checker, downloader, &fakeCursors{hashes: []string{"h1", "h2"}}, comparator, collector))
	require.NoError(t, run.Run(context.Background()))

	currentLog := filepath.Join("logs", currentName+"-report.log")
	require.Len(t, comparator.calls, 1)
	assert.Equal(t, "abc123-no-baseline", comparator.calls[0].baseHash)
	assert.Equal(t, "abc123-no-baseline", comparator.calls[0].currentHash)
	assert.Equal(t, currentLog, comparator.calls[0].baseLog)
	assert.Equal(t, currentLog, comparator.calls[0].currentLog)

	// The no-baseline record carries the report name only.
	dir := t.TempDir()
	require.NoError(t, collector.Flush(dir))
	noBaseline, err := os.ReadFile(filepath.Join(dir, results.NoBaselineFile))
	require.NoError(t, err)
	assert.Equal(t, currentName+"-report.log\n", string(noBaseline))
}

func TestRunRecordsBuildFailureAndSkips(t *testing.T) {
	checker := &fakeChecker{} // every name reports a missing build
	downloader := &fakeDownloader{}
	comparator := &fakeComparator{}
	collector := results.NewCollector()

	run := New(newTestConfig(checker, downloader, &fakeCursors{}, comparator, collector))
	require.NoError(t, run.Run(context.Background()))

	assert.Empty(t, comparator.calls)
	assert.Empty(t, downloader.downloads)

	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, results.KindBuildFailed, outcomes[0].Kind)
	assert.Equal(t, "gcc-linux-rv64gc-lp64d-abc123-multilib", outcomes[0].Name)
	assert.Equal(t, results.ReasonCheckLogs, outcomes[0].Reason)
}

func TestRunComparesWhenBuildMissingButReportPresent(t *testing.T) {
	currentName := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	baseName := "gcc-linux-rv64gc-lp64d-def456-multilib"

	checker := &fakeChecker{checks: map[string]artifact.Check{
		currentName: {Status: artifact.StatusFound, ReportID: 7, BuildMissing: true},
		baseName:    {Status: artifact.StatusFound, ReportID: 9},
	}}
	downloader := &fakeDownloader{}
	comparator := &fakeComparator{}
	collector := results.NewCollector()

	run := New(newTestConfig(checker, downloader, &fakeCursors{hashes: []string{"def456"}}, comparator, collector))
	require.NoError(t, run.Run(context.Background()))

	// The build failure is recorded but the surviving report still gets
	// downloaded and compared.
	require.Len(t, comparator.calls, 1)
	assert.Equal(t, "def456", comparator.calls[0].baseHash)
	assert.Equal(t, []string{currentName + "-report.log", baseName + "-report.log"}, downloader.downloads)

	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, results.KindBuildFailed, outcomes[0].Kind)
	assert.Equal(t, currentName, outcomes[0].Name)
	assert.Equal(t, results.KindCompared, outcomes[1].Kind)
	assert.Equal(t, currentName+"-report.log", outcomes[1].Name)
}

func TestRunRecordsTestsuiteFailureWhenReportMissing(t *testing.T) {
	currentName := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	checker := &fakeChecker{checks: map[string]artifact.Check{
		currentName: {Status: artifact.StatusReportMissing},
	}}
	collector := results.NewCollector()

	run := New(newTestConfig(checker, &fakeDownloader{}, &fakeCursors{}, &fakeComparator{}, collector))
	require.NoError(t, run.Run(context.Background()))

	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, results.KindTestsuiteFailed, outcomes[0].Kind)
	assert.Equal(t, results.ReasonMissingReport, outcomes[0].Reason)
}

func TestRunComparatorErrorIsRecordedAndRunContinues(t *testing.T) {
	template2 := "gcc-newlib-rv64gc-lp64d-%s-non-multilib"
	name1 := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	name2 := "gcc-newlib-rv64gc-lp64d-abc123-non-multilib"
	base1 := "gcc-linux-rv64gc-lp64d-def456-multilib"
	base2 := "gcc-newlib-rv64gc-lp64d-def456-non-multilib"

	checker := &fakeChecker{checks: map[string]artifact.Check{
		name1: {Status: artifact.StatusFound, ReportID: 1},
		name2: {Status: artifact.StatusFound, ReportID: 2},
		base1: {Status: artifact.StatusFound, ReportID: 3},
		base2: {Status: artifact.StatusFound, ReportID: 4},
	}}
	comparator := &fakeComparator{err: errors.New("comparison failed: malformed log")}
	collector := results.NewCollector()

	cfg := newTestConfig(checker, &fakeDownloader{}, &fakeCursors{hashes: []string{"def456"}}, comparator, collector)
	cfg.Templates = []string{testTemplate, template2}
	run := New(cfg)

	// Comparator errors never abort the batch.
	require.NoError(t, run.Run(context.Background()))
	assert.Len(t, comparator.calls, 2)

	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, results.KindTestsuiteFailed, o.Kind)
		assert.Equal(t, "comparison failed: malformed log", o.Reason)
	}
	assert.Equal(t, name1+"-report.log", outcomes[0].Name)
	assert.Equal(t, name2+"-report.log", outcomes[1].Name)
}

func TestRunTransportErrorAbortsBatch(t *testing.T) {
	checker := &fakeChecker{err: errors.New("connection reset")}
	collector := results.NewCollector()

	cfg := newTestConfig(checker, &fakeDownloader{}, &fakeCursors{}, &fakeComparator{}, collector)
	cfg.Templates = []string{testTemplate, "gcc-newlib-rv64gc-lp64d-%s-non-multilib"}
	run := New(cfg)

	err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, collector.Outcomes())
}

func TestRunDownloadErrorAbortsBatch(t *testing.T) {
	currentName := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	checker := &fakeChecker{checks: map[string]artifact.Check{
		currentName: {Status: artifact.StatusFound, ReportID: 7},
	}}
	downloader := &fakeDownloader{err: errors.New("status 502")}

	run := New(newTestConfig(checker, downloader, &fakeCursors{}, &fakeComparator{}, results.NewCollector()))
	err := run.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestRunDryRunSkipsDownloadsButRecordsFailures(t *testing.T) {
	name1 := "gcc-linux-rv64gc-lp64d-abc123-multilib"
	checker := &fakeChecker{checks: map[string]artifact.Check{
		name1: {Status: artifact.StatusFound, ReportID: 7},
	}}
	downloader := &fakeDownloader{}
	comparator := &fakeComparator{}
	collector := results.NewCollector()

	cfg := newTestConfig(checker, downloader, &fakeCursors{}, comparator, collector)
	cfg.Templates = []string{testTemplate, "gcc-newlib-rv64gc-lp64d-%s-non-multilib"}
	cfg.DryRun = true
	run := New(cfg)

	require.NoError(t, run.Run(context.Background()))
	assert.Empty(t, downloader.downloads)
	assert.Empty(t, comparator.calls)

	// The second template's build is missing and still gets recorded.
	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 1)
	assert.Equal(t, results.KindBuildFailed, outcomes[0].Kind)
}
