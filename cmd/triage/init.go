package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/triagesec/internal/infrastructure/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration",
	Long: `Create .triage/config.yaml with the default engine, source, output and
evidence settings.

Examples:
  triage init              # Initialize in current directory
  triage init --force      # Overwrite existing configuration`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	return writeInitConfig(cmd, filepath.Join(config.DefaultConfigDir, config.DefaultConfigFile), initForce)
}

func writeInitConfig(cmd *cobra.Command, configPath string, force bool) error {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return fmt.Errorf("configuration already exists at %s\nUse --force to overwrite", configPath)
		}
		fmt.Fprintf(out, "%s Overwriting existing configuration\n", yellow("!"))
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.GenerateDefaultConfig(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(out, "%s Created %s\n", green("✓"), configPath)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Point your scanners at a shared reports directory")
	fmt.Fprintln(out, "  2. Run: triage analyze <reports-dir> --gate <gate-status.json>")
	return nil
}
