package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/application/usecases"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/artifacts"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/config"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/evidence"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/logging"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/source"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/writers"
	"github.com/felixgeelhaar/triagesec/pkg/exitcode"
)

// analyzeFlags holds the analyze command's flags.
type analyzeFlags struct {
	artifacts    []string
	gate         string
	ref          string
	out          string
	workers      int
	contextLines int
	source       string
	noEvidence   bool
	allowEmpty   bool
	disable      []string
	target       string
}

var analyzeOpts analyzeFlags

// analyzeCmd consolidates scanner artifacts
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path...]",
	Short: "Consolidate scanner artifacts into one report",
	Long: `Parse every scanner artifact, deduplicate and score the findings, compare
the total with the pipeline's security gate and write:

  <out>/consolidated-results.json   the consolidated report
  <out>/fix-guide.md                ranked critical/high findings with context

An evidence record of every run is appended to the configured evidence log.

Exit codes:
  0  no critical or high findings
  1  critical or high findings present
  2  artifacts could not be located or read, or the configuration is invalid

Examples:
  triage analyze reports/
  triage analyze reports/ --gate pipeline-gate.json --ref $GITHUB_SHA
  triage analyze --artifacts bandit.json,trivy.json --out build/triage
  triage analyze reports/ --source none --no-evidence`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		code, err := runAnalyze(ctx, cmd, args, analyzeOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil || code != exitcode.Success {
			return &exitError{code: code, err: err}
		}
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringSliceVar(&analyzeOpts.artifacts, "artifacts", nil, "artifact files or directories (in addition to positional paths)")
	f.StringVar(&analyzeOpts.gate, "gate", "", "pipeline security gate status artifact")
	f.StringVar(&analyzeOpts.ref, "ref", "", "source revision for context fetches (default from config)")
	f.StringVarP(&analyzeOpts.out, "out", "o", "", "output directory (default .triage)")
	f.IntVar(&analyzeOpts.workers, "workers", 0, "parallel parse workers, at most 8 (default from config)")
	f.IntVar(&analyzeOpts.contextLines, "context-lines", 0, "source lines before and after each finding (default from config)")
	f.StringVar(&analyzeOpts.source, "source", "", "source context provider (auto, local, github, gitlab, none)")
	f.BoolVar(&analyzeOpts.noEvidence, "no-evidence", false, "do not append an evidence record")
	f.BoolVar(&analyzeOpts.allowEmpty, "allow-empty", false, "produce an empty report when no artifacts are found")
	f.StringSliceVar(&analyzeOpts.disable, "disable", nil, "adapters to disable")
	f.StringVar(&analyzeOpts.target, "target", "", "label recorded in the evidence log (default: the input paths)")

	_ = analyzeCmd.RegisterFlagCompletionFunc("disable", completeAdapterIDs)
	_ = analyzeCmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "local", "github", "gitlab", "none"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(analyzeCmd)
}

func completeAdapterIDs(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	for _, id := range engines.NewDefaultRegistry().IDs() {
		if id == ports.AdapterGeneric || id == ports.AdapterGate {
			continue
		}
		ids = append(ids, string(id))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// analyzeOverrides converts changed flags into config overrides.
func analyzeOverrides(cmd *cobra.Command, opts analyzeFlags) *config.CLIOverrides {
	o := globalOverrides()
	flags := cmd.Flags()
	if opts.out != "" {
		o.OutputDir = &opts.out
	}
	if flags.Changed("workers") {
		o.Workers = &opts.workers
	}
	if flags.Changed("context-lines") {
		o.ContextLines = &opts.contextLines
	}
	if opts.ref != "" {
		o.Ref = &opts.ref
	}
	if opts.source != "" {
		o.SourceProvider = &opts.source
	}
	if opts.noEvidence {
		o.NoEvidence = &opts.noEvidence
	}
	o.DisableAdapters = opts.disable
	return o
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, args []string, opts analyzeFlags, stdout, stderr io.Writer) (int, error) {
	cfg, err := loadConfig(analyzeOverrides(cmd, opts))
	if err != nil {
		return exitcode.Error, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Debug:  debug,
		Output: stderr,
	})
	if err != nil {
		return exitcode.Error, err
	}
	defer func() { _ = logger.Sync() }()

	paths := append(append([]string(nil), args...), opts.artifacts...)
	if len(paths) == 0 {
		paths = []string{"."}
	}

	clock, err := reportClock()
	if err != nil {
		return exitcode.Error, err
	}

	fetcher, err := source.NewFromSettings(cfg.Source.Provider, cfg.Source.Root,
		cfg.Source.Repository, cfg.Source.BaseURL, cfg.Source.Token)
	if err != nil {
		return exitcode.Error, fmt.Errorf("failed to configure source context: %w", err)
	}
	if fetcher != nil {
		logger.Debug("source context enabled", zap.String("provider", fetcher.Name()))
	}

	evidenceLog, err := evidence.Open(ctx, evidence.Options{
		Driver: cfg.Evidence.Driver,
		Path:   cfg.Evidence.Path,
		DSN:    cfg.Evidence.DSN,
		Table:  cfg.Evidence.Table,
	})
	if err != nil {
		return exitcode.Error, err
	}
	if evidenceLog != nil {
		defer func() {
			if cerr := evidenceLog.Close(); cerr != nil {
				logger.Warn("failed to close evidence log", zap.Error(cerr))
			}
		}()
	}

	portsCfg := cfg.ToPortsConfig()
	writer := writers.NewFactoryWithStreams(stdout, stderr).Create(portsCfg.Output)

	ucOpts := []usecases.AnalyzeOption{
		usecases.WithWriter(writer),
		usecases.WithClock(clock),
		usecases.WithLogger(logger),
		usecases.WithEnricher(usecases.NewSourceContextEnricher(fetcher,
			usecases.WithContextLines(portsCfg.Engine.ContextLines),
			usecases.WithEnricherLogger(logger),
		)),
	}
	if evidenceLog != nil {
		ucOpts = append(ucOpts, usecases.WithEvidenceLog(evidenceLog))
	}

	uc := usecases.NewAnalyzeUseCase(
		artifacts.NewDiscovery(artifacts.DefaultOptions()),
		engines.NewDefaultRegistry(),
		engines.NewNormalizer(),
		ucOpts...,
	)

	target := opts.target
	if target == "" {
		target = cfg.Evidence.Target
	}

	out, err := uc.Execute(ctx, usecases.AnalyzeInput{
		Paths:      paths,
		GatePath:   opts.gate,
		Ref:        opts.ref,
		Target:     target,
		AllowEmpty: opts.allowEmpty,
		Engine:     portsCfg.Engine,
	})
	if err != nil {
		_ = writer.Flush()
		var notFound *usecases.InputNotFoundError
		if errors.As(err, &notFound) {
			logger.Warn("no readable artifacts", zap.Strings("paths", notFound.Paths))
		}
		return exitcode.Error, err
	}
	if err := writer.Flush(); err != nil {
		return exitcode.Error, err
	}

	return exitcode.FromReport(out.Report), nil
}

// reportClock pins generated_at to SOURCE_DATE_EPOCH when it is set.
func reportClock() (ports.Clock, error) {
	epoch := strings.TrimSpace(os.Getenv("SOURCE_DATE_EPOCH"))
	if epoch == "" {
		return ports.SystemClock{}, nil
	}
	secs, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SOURCE_DATE_EPOCH %q: %w", epoch, err)
	}
	return ports.FixedClock{T: time.Unix(secs, 0).UTC()}, nil
}
