package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for baseliner
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseliner",
		Short: "Download CI testsuite logs and compare them against a baseline",
		Long: `Baseliner retrieves build and testsuite-log artifacts for a toolchain
commit from the CI artifact store and compares each testsuite log against the
most recent ancestor commit that produced a usable log.

For every supported target it downloads the current report, walks backward
through commit history to find a baseline, runs the external comparison
routine, and writes per-target summaries plus categorized failure records.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewMatrixCommand())

	return cmd
}
