package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/baseliner/internal/artifact"
	"github.com/harrison/baseliner/internal/baseline"
	"github.com/harrison/baseliner/internal/compare"
	"github.com/harrison/baseliner/internal/config"
	"github.com/harrison/baseliner/internal/history"
	"github.com/harrison/baseliner/internal/logger"
	"github.com/harrison/baseliner/internal/matrix"
	"github.com/harrison/baseliner/internal/report"
	"github.com/harrison/baseliner/internal/results"
	"github.com/harrison/baseliner/internal/runner"
	"github.com/harrison/baseliner/internal/store"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download artifacts for a commit and compare against baselines",
		Long: `Download the build and testsuite-log artifacts for a commit and compare
every testsuite log against the nearest ancestor commit with a usable log.

For each supported target, the run checks that the build and report artifacts
exist, downloads the report, resolves a baseline by walking commit history
backward, and invokes the external comparison routine. Results land in the
logs and summaries directories:

  logs/<artifact>                        extracted log files
  logs/failed_build.txt                  targets whose build artifact is missing
  logs/failed_testsuite.txt              targets whose report is missing or incomparable
  logs/no_baseline.txt                   targets with no usable ancestor artifact
  summaries/<artifact>-report-summary.md comparator output per target

Classified failures are recorded but do not change the exit code; only
transport and store errors abort the run.

Examples:
  baseliner run --hash 0c4cea9e8f --token ghp_xxx
  baseliner run --hash 0c4cea9e8f --token ghp_xxx --dry-run
  baseliner run --hash 0c4cea9e8f --token ghp_xxx --config custom.yaml`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	cmd.Flags().String("hash", "", "Commit hash to get artifacts for (required)")
	cmd.Flags().String("token", "", "Artifact store access token (required)")
	cmd.Flags().String("config", "", "Path to config file (default: "+config.DefaultPath+")")
	cmd.Flags().String("log-level", "", "Log verbosity (trace, debug, info, warn, error)")
	cmd.Flags().Bool("dry-run", false, "Check artifact existence without downloading or comparing")
	cmd.MarkFlagRequired("hash")
	cmd.MarkFlagRequired("token")

	return cmd
}

// walkerSource adapts a history.Walker to the runner's cursor source.
type walkerSource struct {
	walker *history.Walker
}

func (s walkerSource) Cursor(ctx context.Context) (baseline.Cursor, error) {
	return s.walker.Cursor(ctx)
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	hash, _ := cmd.Flags().GetString("hash")
	token, _ := cmd.Flags().GetString("token")
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), cfg.LogLevel)

	if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	if err := os.MkdirAll(cfg.SummariesDir, 0755); err != nil {
		return fmt.Errorf("failed to create summaries directory: %w", err)
	}

	client := store.NewClient(cfg.Repository, token,
		store.WithBaseURL(cfg.APIBaseURL),
		store.WithPageSize(cfg.PageSize))

	comparator, err := compare.NewExecComparator(cfg.CompareCommand)
	if err != nil {
		return err
	}

	collector := results.NewCollector()
	run := runner.New(runner.Config{
		CurrentHash:  hash,
		Templates:    matrix.Generate(cfg.Targets),
		Checker:      artifact.NewChecker(client),
		Downloader:   artifact.NewDownloader(client, cfg.LogsDir),
		Cursors:      walkerSource{walker: history.NewWalker(client, hash, cfg.SearchDepth)},
		Comparator:   comparator,
		Collector:    collector,
		Logger:       log,
		SummariesDir: cfg.SummariesDir,
		DryRun:       dryRun,
	})

	log.Info("processing artifacts for %s in %s", hash, cfg.Repository)
	if err := run.Run(cmd.Context()); err != nil {
		return err
	}

	if err := collector.Flush(cfg.LogsDir); err != nil {
		return fmt.Errorf("failed to write failure records: %w", err)
	}

	if !dryRun {
		if _, err := report.WriteIndex(cfg.SummariesDir); err != nil {
			// The index is a convenience; a failed index never fails the run.
			log.Warn("could not write summary index: %v", err)
		}
	}

	counts := collector.Counts()
	log.Info("done: %d compared, %d build failures, %d testsuite failures, %d without baseline",
		counts.Compared, counts.BuildFailed, counts.TestsuiteFailed, counts.NoBaseline)
	return nil
}
