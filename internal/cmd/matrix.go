package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/baseliner/internal/config"
	"github.com/harrison/baseliner/internal/matrix"
)

// NewMatrixCommand creates the matrix command
func NewMatrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the generated artifact-name templates",
		Long: `Print every artifact-name template generated from the configured target
matrix. Each template contains one %s placeholder for a commit hash.

Useful for checking which targets a run will cover before spending any API
calls.`,
		Args: cobra.NoArgs,
		RunE: matrixCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: "+config.DefaultPath+")")

	return cmd
}

// matrixCommand implements the matrix command logic
func matrixCommand(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, template := range matrix.Generate(cfg.Targets) {
		fmt.Fprintln(cmd.OutOrStdout(), template)
	}
	return nil
}
