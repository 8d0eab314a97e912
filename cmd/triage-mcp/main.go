package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/triagesec/internal/infrastructure/config"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/logging"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/mcp"
)

var version = "dev"

var (
	transport  string
	httpAddr   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "triage-mcp",
	Short: "Security triage MCP server",
	Long: `Security triage MCP (Model Context Protocol) server.

Exposes the triage engine to AI assistants. Analyses run read-only: no
report files are written and no evidence is recorded.

Tools:
  triage_analyze    - Consolidate scanner artifacts into a risk-scored summary
  triage_fix_guide  - Ranked critical/high findings with source context

Resources:
  triage://config    - Current configuration
  triage://adapters  - Supported scanner adapters

Examples:
  triage-mcp                     # Start with stdio transport
  triage-mcp --transport http    # Start HTTP server
  triage-mcp --http-addr :9090   # HTTP on custom port`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport type: stdio, http")
	rootCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (when using http transport)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// stdout belongs to the stdio transport.
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server := mcp.NewServer(cfg, version, mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		return server.ServeStdio(ctx)
	case "http":
		logger.Info("starting MCP server", zap.String("addr", httpAddr))
		return server.ServeHTTP(ctx, httpAddr)
	default:
		return fmt.Errorf("unsupported transport: %s", transport)
	}
}

func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()

	if configPath != "" {
		return loader.LoadFromFile(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}
