package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/application/usecases"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/artifacts"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/config"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/source"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/writers"
)

// Server exposes the triage engine to MCP clients.
type Server struct {
	mcpServer  *mcp.Server
	config     *config.Config
	registry   ports.AdapterRegistry
	source     ports.ArtifactSource
	fetcher    ports.SourceFetcher
	logger     *zap.Logger
	truncation *services.TruncationService
	fetcherSet bool
}

// Option configures the server.
type Option func(*Server)

// WithRegistry replaces the adapter registry.
func WithRegistry(r ports.AdapterRegistry) Option {
	return func(s *Server) { s.registry = r }
}

// WithArtifactSource replaces artifact discovery.
func WithArtifactSource(src ports.ArtifactSource) Option {
	return func(s *Server) { s.source = src }
}

// WithSourceFetcher sets the fetcher used for source context.
func WithSourceFetcher(f ports.SourceFetcher) Option {
	return func(s *Server) {
		s.fetcher = f
		s.fetcherSet = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server. Without WithSourceFetcher the fetcher
// is built from cfg; a misconfigured provider disables source context.
func NewServer(cfg *config.Config, version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "triagesec",
		Version: version,
		Capabilities: mcp.Capabilities{
			Tools:     true,
			Resources: true,
		},
	})

	s := &Server{
		mcpServer:  srv,
		config:     cfg,
		registry:   engines.NewDefaultRegistry(),
		source:     artifacts.NewDiscovery(artifacts.DefaultOptions()),
		logger:     zap.NewNop(),
		truncation: services.NewTruncationService(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.fetcherSet {
		f, err := source.NewFromSettings(cfg.Source.Provider, cfg.Source.Root,
			cfg.Source.Repository, cfg.Source.BaseURL, cfg.Source.Token)
		if err != nil {
			s.logger.Warn("source context disabled", zap.Error(err))
		} else {
			s.fetcher = f
		}
	}

	s.registerTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server with stdio transport.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server with HTTP transport.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr,
		mcp.WithReadTimeout(60*time.Second),
		mcp.WithWriteTimeout(60*time.Second),
	)
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("triage_analyze").
		Description("Consolidate security scanner outputs (bandit, checkov, trivy, tfsec, kics, semgrep, gitleaks, SARIF and more) into one deduplicated, risk-scored report. Flags gates that under-report findings.").
		Handler(s.handleAnalyze)

	s.mcpServer.Tool("triage_fix_guide").
		Description("Build the ranked fix guide for critical and high findings, with source context around each finding, as markdown.").
		Handler(s.handleFixGuide)
}

func (s *Server) registerResources() {
	s.mcpServer.Resource("triage://config").
		Name("Configuration").
		Description("Current engine, source and output configuration.").
		MimeType("application/json").
		Handler(s.handleConfigResource)

	s.mcpServer.Resource("triage://adapters").
		Name("Adapters").
		Description("Scanner adapters, their filename keywords and severity table versions.").
		MimeType("application/json").
		Handler(s.handleAdaptersResource)
}

// AnalyzeInput defines the input for analysis tools.
type AnalyzeInput struct {
	Paths      []string `json:"paths" jsonschema:"description=Scanner artifact files or directories"`
	Gate       string   `json:"gate,omitempty" jsonschema:"description=Pipeline gate status artifact"`
	Ref        string   `json:"ref,omitempty" jsonschema:"description=Source revision for context (default from config)"`
	AllowEmpty bool     `json:"allow_empty,omitempty" jsonschema:"description=Return an empty report when no artifacts are found"`
}

// AnalyzeResult is the truncated view of a consolidated report.
type AnalyzeResult struct {
	RunID          string              `json:"run_id"`
	RiskScore      int                 `json:"risk_score"`
	RiskTier       string              `json:"risk_tier"`
	TotalCount     int                 `json:"total_count"`
	ShownCount     int                 `json:"shown_count"`
	Truncated      bool                `json:"truncated"`
	CriticalCount  int                 `json:"critical_count"`
	HighCount      int                 `json:"high_count"`
	MediumCount    int                 `json:"medium_count"`
	LowCount       int                 `json:"low_count"`
	ScannersUsed   []string            `json:"scanners_used"`
	Findings       []FindingInfo       `json:"findings"`
	Discrepancy    *report.Discrepancy `json:"discrepancy,omitempty"`
	Errors         []report.RunError   `json:"errors"`
	FixGuideSize   int                 `json:"fix_guide_size"`
	TruncationInfo *TruncationInfo     `json:"truncation_info,omitempty"`
}

// TruncationInfo provides details about truncated results.
type TruncationInfo struct {
	TotalFindings    int            `json:"total_findings"`
	ShownFindings    int            `json:"shown_findings"`
	HiddenBySeverity map[string]int `json:"hidden_by_severity"`
	MinSeverity      string         `json:"min_severity"`
	Message          string         `json:"message"`
}

// FindingInfo represents a single finding in analysis results.
type FindingInfo struct {
	ID       string `json:"id"`
	Scanner  string `json:"scanner"`
	RuleID   string `json:"rule_id"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Title    string `json:"title"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// FixGuideResult carries the rendered fix guide.
type FixGuideResult struct {
	Entries  int    `json:"entries"`
	Markdown string `json:"markdown"`
}

func (s *Server) handleAnalyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error) {
	out, err := s.analyze(ctx, input)
	if err != nil {
		return nil, err
	}

	r := out.Report
	hist := r.Histogram()
	mcpCfg := s.config.GetMCPConfig()
	minSev := s.config.MCPMinSeverity()
	trunc := s.truncation.Truncate(r.Findings(), services.TruncationConfig{
		MaxFindings: mcpCfg.MaxFindings,
		MinSeverity: minSev,
	})

	result := &AnalyzeResult{
		RunID:         r.RunID(),
		RiskScore:     r.RiskScore(),
		RiskTier:      string(r.RiskTier()),
		TotalCount:    r.TotalFindings(),
		ShownCount:    trunc.ShownCount,
		Truncated:     trunc.Truncated || trunc.TotalCount < r.TotalFindings(),
		CriticalCount: hist[finding.SeverityCritical],
		HighCount:     hist[finding.SeverityHigh],
		MediumCount:   hist[finding.SeverityMedium],
		LowCount:      hist[finding.SeverityLow],
		ScannersUsed:  r.ScannersUsed(),
		Findings:      make([]FindingInfo, 0, len(trunc.Findings)),
		Discrepancy:   r.Discrepancy(),
		Errors:        r.Errors(),
		FixGuideSize:  out.FixGuide.Len(),
	}
	if result.Errors == nil {
		result.Errors = []report.RunError{}
	}

	for _, f := range trunc.Findings {
		result.Findings = append(result.Findings, FindingInfo{
			ID:       f.ID(),
			Scanner:  f.Scanner(),
			RuleID:   f.RuleID(),
			Severity: f.Severity().String(),
			Category: f.Category().String(),
			Title:    f.Title(),
			File:     f.File(),
			Line:     f.Line(),
		})
	}

	if result.Truncated {
		hidden := make(map[string]int)
		for _, f := range r.Findings() {
			if !f.Severity().IsAtLeast(minSev) {
				hidden[f.Severity().String()]++
			}
		}
		for sev, count := range trunc.HiddenBySeverity {
			hidden[sev.String()] += count
		}
		result.TruncationInfo = &TruncationInfo{
			TotalFindings:    r.TotalFindings(),
			ShownFindings:    trunc.ShownCount,
			HiddenBySeverity: hidden,
			MinSeverity:      minSev.String(),
			Message: fmt.Sprintf("Showing %d of %d findings (%s and above, most severe first)",
				trunc.ShownCount, r.TotalFindings(), minSev),
		}
	}

	return result, nil
}

func (s *Server) handleFixGuide(ctx context.Context, input AnalyzeInput) (*FixGuideResult, error) {
	out, err := s.analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	result := &FixGuideResult{Entries: out.FixGuide.Len()}
	if !out.FixGuide.IsEmpty() {
		result.Markdown = writers.RenderFixGuide(out.Report, out.FixGuide)
	}
	return result, nil
}

// analyze runs the pipeline without writing files or evidence.
func (s *Server) analyze(ctx context.Context, input AnalyzeInput) (usecases.AnalyzeOutput, error) {
	paths := input.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	engineCfg := s.config.ToPortsConfig().Engine
	uc := usecases.NewAnalyzeUseCase(s.source, s.registry, engines.NewNormalizer(),
		usecases.WithWriter(writers.NewSilentWriter()),
		usecases.WithEnricher(usecases.NewSourceContextEnricher(s.fetcher,
			usecases.WithContextLines(engineCfg.ContextLines),
			usecases.WithEnricherLogger(s.logger),
		)),
		usecases.WithLogger(s.logger),
	)

	out, err := uc.Execute(ctx, usecases.AnalyzeInput{
		Paths:      paths,
		GatePath:   input.Gate,
		Ref:        input.Ref,
		AllowEmpty: input.AllowEmpty,
		Engine:     engineCfg,
	})
	if err != nil {
		return usecases.AnalyzeOutput{}, fmt.Errorf("analysis failed: %w", err)
	}
	return out, nil
}

type configResourceData struct {
	Version  string                `json:"version"`
	Engine   config.EngineSettings `json:"engine"`
	Adapters config.AdaptersConfig `json:"adapters"`
	Source   config.SourceConfig   `json:"source"`
	Output   config.OutputConfig   `json:"output"`
	MCP      config.MCPConfig      `json:"mcp"`
	Fetcher  string                `json:"fetcher"`
}

func (s *Server) handleConfigResource(_ context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
	fetcher := "none"
	if s.fetcher != nil {
		fetcher = s.fetcher.Name()
	}
	data := configResourceData{
		Version:  s.config.Version,
		Engine:   s.config.Engine,
		Adapters: s.config.Adapters,
		Source:   s.config.Source,
		Output:   s.config.Output,
		MCP:      s.config.GetMCPConfig(),
		Fetcher:  fetcher,
	}

	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(jsonBytes),
	}, nil
}

type adaptersResourceData struct {
	Adapters []adapterStatusData `json:"adapters"`
}

type adapterStatusData struct {
	ports.AdapterInfo
	Enabled bool `json:"enabled"`
}

func (s *Server) handleAdaptersResource(_ context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
	engineCfg := s.config.ToPortsConfig().Engine
	all := s.registry.All()
	status := make([]adapterStatusData, 0, len(all))
	for _, a := range all {
		status = append(status, adapterStatusData{
			AdapterInfo: a.Info(),
			Enabled:     engineCfg.IsAdapterEnabled(a.ID()),
		})
	}

	jsonBytes, err := json.Marshal(adaptersResourceData{Adapters: status})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal adapters: %w", err)
	}

	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(jsonBytes),
	}, nil
}
