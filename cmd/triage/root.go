package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/triagesec/internal/infrastructure/config"
	"github.com/felixgeelhaar/triagesec/pkg/exitcode"
)

// Version information set at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Global flags
var (
	cfgFile   string
	verbosity string
	noColor   bool
	debug     bool
)

// rootCmd is the base command for triage
var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Security finding triage for CI pipelines",
	Long: `triage consolidates the outputs of many security scanners into one
deduplicated, risk-scored report.

It reads artifacts from bandit, checkov, trivy, tfsec, kics, semgrep,
gitleaks, gosec, conftest, hadolint, npm audit, grype and any SARIF producer,
checks the pipeline's own security gate for under-reporting, and writes a
ranked fix guide with source context for every critical and high finding.

Examples:
  triage analyze reports/                    # Consolidate a directory of artifacts
  triage analyze reports/ --gate gate.json   # Compare against the pipeline gate
  triage analyze --artifacts a.json,b.sarif  # Explicit artifact list
  triage adapters                            # List supported scanners`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		return nil
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "triage %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Built:   %s\n", buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .triage/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "", "verbosity level (quiet, normal, verbose, debug)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging to stderr")

	rootCmd.AddCommand(versionCmd)
}

// exitError carries a process exit code out of a command. A nil err means
// the code is the result, not a failure, and nothing is printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return exitcode.Description(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the root command
func Execute() int {
	return execute(rootCmd, os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return exitcode.Success
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(stderr, exit.err)
		}
		return exit.code
	}
	fmt.Fprintln(stderr, err)
	return exitcode.Error
}

// loadConfig loads the configuration from file and applies CLI overrides.
func loadConfig(overrides *config.CLIOverrides) (*config.Config, error) {
	loader := config.NewLoader()

	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = loader.LoadFromFileWithOverrides(cfgFile, overrides)
	} else {
		cfg, err = loader.LoadWithOverrides(overrides)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// globalOverrides returns the overrides set by persistent flags.
func globalOverrides() *config.CLIOverrides {
	o := &config.CLIOverrides{}
	if verbosity != "" {
		v := verbosity
		o.Verbosity = &v
	}
	if noColor {
		nc := true
		o.NoColor = &nc
	}
	if debug {
		level := "debug"
		o.LogLevel = &level
	}
	return o
}
