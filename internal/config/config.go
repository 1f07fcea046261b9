// Package config loads baseliner configuration from YAML with sensible
// defaults, so a bare checkout works against the default toolchain repository
// without any config file.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrison/baseliner/internal/matrix"
)

// DefaultPath is where LoadConfigFromDir looks for a config file.
const DefaultPath = ".baseliner/config.yaml"

// Config represents baseliner configuration options
type Config struct {
	// Repository is the "owner/name" slug of the CI repository
	Repository string `yaml:"repository"`

	// APIBaseURL is the artifact store API root
	APIBaseURL string `yaml:"api_base_url"`

	// LogsDir receives extracted logs and the categorized failure files
	LogsDir string `yaml:"logs_dir"`

	// SummariesDir receives comparator output
	SummariesDir string `yaml:"summaries_dir"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// PageSize is the artifact listing page size; only the first page is
	// ever consulted
	PageSize int `yaml:"page_size"`

	// SearchDepth bounds how many ancestor commits the baseline search walks
	SearchDepth int `yaml:"search_depth"`

	// CompareCommand is the external comparison command argv; the five
	// comparison arguments are appended to it
	CompareCommand []string `yaml:"compare_command"`

	// Targets is the supported build-target matrix
	Targets matrix.TargetMatrix `yaml:"targets"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Repository:     "patrick-rivos/riscv-gnu-toolchain",
		APIBaseURL:     "https://api.github.com",
		LogsDir:        "./logs",
		SummariesDir:   "./summaries",
		LogLevel:       "info",
		PageSize:       30,
		SearchDepth:    100,
		CompareCommand: []string{"compare-testsuite-log"},
		Targets:        matrix.DefaultTargets(),
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if !strings.Contains(c.Repository, "/") {
		return fmt.Errorf("repository must be an owner/name slug, got %q", c.Repository)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url cannot be empty")
	}
	if c.LogsDir == "" || c.SummariesDir == "" {
		return fmt.Errorf("logs_dir and summaries_dir cannot be empty")
	}

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0, got %d", c.PageSize)
	}
	if c.SearchDepth <= 0 {
		return fmt.Errorf("search_depth must be > 0, got %d", c.SearchDepth)
	}
	if len(c.CompareCommand) == 0 {
		return fmt.Errorf("compare_command cannot be empty")
	}

	if len(c.Targets.Libc) == 0 || len(c.Targets.Arch) == 0 ||
		len(c.Targets.Multilib) == 0 || len(c.Targets.Extensions) == 0 {
		return fmt.Errorf("targets must define libc, arch, multilib and extensions")
	}
	return nil
}
