package usecases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// AnalyzeInput contains the input for the Analyze use case.
type AnalyzeInput struct {
	// Paths are artifact files or directories.
	Paths []string
	// GatePath optionally names the pipeline's gate status artifact.
	GatePath string
	// Ref is the source revision used for context fetches.
	Ref string
	// Target labels the run in the evidence log.
	Target string
	// AllowEmpty turns "no artifacts found" into an empty report instead
	// of an InputNotFoundError.
	AllowEmpty bool
	Engine     ports.EngineConfig
}

// AnalyzeOutput contains the result of the Analyze use case.
type AnalyzeOutput struct {
	Report   *report.ConsolidatedReport
	FixGuide services.FixGuide
	Risk     services.RiskAssessment
}

// FindingNormalizer converts adapter output to domain findings.
type FindingNormalizer interface {
	Normalize(adapter ports.Adapter, raw ports.RawFinding) *finding.Finding
}

// Enricher attaches source context to critical and high findings.
type Enricher interface {
	Enrich(ctx context.Context, ref string, findings []*finding.Finding) EnrichResult
}

// AnalyzeUseCase runs the consolidation pipeline: parse every artifact,
// normalize, deduplicate, score, reconcile with the gate, enrich, build the
// fix guide, emit the report and append the evidence record.
type AnalyzeUseCase struct {
	source     ports.ArtifactSource
	registry   ports.AdapterRegistry
	normalizer FindingNormalizer
	enricher   Enricher
	writer     ports.ArtifactWriter
	evidence   ports.EvidenceLog
	clock      ports.Clock
	newID      func() string
	logger     *zap.Logger

	dedup    *services.Deduplicator
	scorer   *services.RiskScorer
	detector *services.DiscrepancyDetector
	guides   *services.FixGuideGenerator
}

// AnalyzeOption configures the use case.
type AnalyzeOption func(*AnalyzeUseCase)

// WithWriter sets the artifact writer.
func WithWriter(w ports.ArtifactWriter) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.writer = w }
}

// WithEvidenceLog sets the evidence log.
func WithEvidenceLog(l ports.EvidenceLog) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.evidence = l }
}

// WithEnricher sets the source context enricher.
func WithEnricher(e Enricher) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.enricher = e }
}

// WithClock sets the clock used for generated_at.
func WithClock(c ports.Clock) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.clock = c }
}

// WithRunIDFunc sets the run ID generator.
func WithRunIDFunc(fn func() string) AnalyzeOption {
	return func(uc *AnalyzeUseCase) { uc.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		if l != nil {
			uc.logger = l
		}
	}
}

// NewAnalyzeUseCase creates a new Analyze use case.
func NewAnalyzeUseCase(
	source ports.ArtifactSource,
	registry ports.AdapterRegistry,
	normalizer FindingNormalizer,
	opts ...AnalyzeOption,
) *AnalyzeUseCase {
	uc := &AnalyzeUseCase{
		source:     source,
		registry:   registry,
		normalizer: normalizer,
		enricher:   NewSourceContextEnricher(nil),
		clock:      ports.SystemClock{},
		newID:      uuid.NewString,
		logger:     zap.NewNop(),
		dedup:      services.NewDeduplicator(),
		scorer:     services.NewRiskScorer(),
		detector:   services.NewDiscrepancyDetector(),
		guides:     services.NewFixGuideGenerator(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// parseOutcome is what one artifact contributed.
type parseOutcome struct {
	artifact ports.Artifact
	adapter  ports.AdapterID
	findings []*finding.Finding
	gate     *report.GateStatus
	err      *ports.ParseError
}

// Execute runs the analysis. Only InputNotFoundError and InvariantError
// are returned as errors; parse and fetch failures are recorded in the
// report.
func (uc *AnalyzeUseCase) Execute(ctx context.Context, input AnalyzeInput) (AnalyzeOutput, error) {
	runID := uc.newID()
	generatedAt := uc.clock.Now().UTC().Truncate(time.Second)
	log := uc.logger.With(zap.String("run_id", runID))

	artifacts, skipped, err := uc.discover(ctx, input)
	if err != nil {
		return AnalyzeOutput{}, err
	}
	uc.progress("Parsing %d artifact(s)...", len(artifacts))

	outcomes := uc.parseAll(artifacts, input.Engine)

	var gateArtifact *parseOutcome
	if input.GatePath != "" {
		g, err := uc.parseGate(ctx, input.GatePath)
		if err != nil {
			return AnalyzeOutput{}, err
		}
		gateArtifact = &g
	}

	var all []*finding.Finding
	var runErrors []report.RunError
	var gate *report.GateStatus
	for _, s := range skipped {
		runErrors = append(runErrors, report.RunError{
			Kind:    report.ErrorKindRead,
			Source:  filepath.ToSlash(s.Path),
			Message: s.Err.Error(),
		})
		log.Warn("input not read", zap.String("artifact", s.Path), zap.Error(s.Err))
	}
	if gateArtifact != nil {
		if gateArtifact.err != nil {
			runErrors = append(runErrors, parseRunError(gateArtifact.err))
			log.Warn("gate artifact not parsed", zap.String("artifact", gateArtifact.artifact.Name), zap.Error(gateArtifact.err))
		}
		gate = gateArtifact.gate
	}
	for _, o := range outcomes {
		if o.err != nil {
			runErrors = append(runErrors, parseRunError(o.err))
			log.Warn("artifact not parsed",
				zap.String("artifact", o.artifact.Name),
				zap.String("adapter", string(o.adapter)),
				zap.Error(o.err),
			)
			continue
		}
		if o.gate != nil && gate == nil {
			gate = o.gate
		}
		log.Debug("artifact parsed",
			zap.String("artifact", o.artifact.Name),
			zap.String("adapter", string(o.adapter)),
			zap.Int("findings", len(o.findings)),
		)
		all = append(all, o.findings...)
	}

	deduped := uc.dedup.Dedup(all)
	log.Debug("deduplicated", zap.Int("before", len(all)), zap.Int("after", len(deduped)))

	// Scoring and gate reconciliation are independent; the detector's
	// actual count is the deduplicated total, which equals the histogram
	// sum.
	var risk services.RiskAssessment
	var discrepancy report.Discrepancy
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		risk, err = uc.scorer.Score(deduped)
		return err
	})
	g.Go(func() error {
		discrepancy = uc.detector.Detect(len(deduped), gate)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("risk scoring aborted", zap.Error(err))
		return AnalyzeOutput{}, err
	}

	ref := input.Ref
	if ref == "" {
		ref = input.Engine.Ref
	}
	enriched := uc.enricher.Enrich(ctx, ref, deduped)
	runErrors = append(runErrors, enriched.Errors...)
	guide := uc.guides.Generate(enriched.Enrichments)

	r := report.New(report.Params{
		RunID:       runID,
		Findings:    deduped,
		RiskScore:   risk.Score,
		Histogram:   risk.Histogram,
		Discrepancy: &discrepancy,
		Errors:      runErrors,
		GeneratedAt: generatedAt,
	})

	if uc.writer != nil {
		if err := uc.writer.WriteReport(r, guide); err != nil {
			return AnalyzeOutput{}, fmt.Errorf("failed to write report: %w", err)
		}
		if err := uc.writer.WriteSummary(r, guide); err != nil {
			return AnalyzeOutput{}, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if uc.evidence != nil {
		rec, err := report.NewEvidenceRecord(report.ActionAnalyze, evidenceTarget(input), r)
		if err != nil {
			return AnalyzeOutput{}, fmt.Errorf("failed to build evidence record: %w", err)
		}
		if err := uc.evidence.Log(ctx, rec); err != nil {
			return AnalyzeOutput{}, fmt.Errorf("failed to append evidence record: %w", err)
		}
	}

	log.Info("analysis complete",
		zap.Int("findings", r.TotalFindings()),
		zap.Int("risk_score", r.RiskScore()),
		zap.String("risk_tier", string(r.RiskTier())),
		zap.Bool("discrepancy", discrepancy.Flagged),
		zap.Int("errors", len(runErrors)),
	)

	return AnalyzeOutput{Report: r, FixGuide: guide, Risk: risk}, nil
}

// discover returns the artifacts to parse and the inputs that were skipped.
// Skipped inputs are only fatal when nothing else could be read.
func (uc *AnalyzeUseCase) discover(ctx context.Context, input AnalyzeInput) ([]ports.Artifact, []ports.SkippedPath, error) {
	artifacts, err := uc.source.Discover(ctx, input.Paths)
	var skippedErr *ports.SkippedPathsError
	if err != nil && (!errors.As(err, &skippedErr) || len(artifacts) == 0) {
		if errors.Is(err, ports.ErrNoArtifacts) && input.AllowEmpty {
			return []ports.Artifact{}, nil, nil
		}
		return nil, nil, &InputNotFoundError{Paths: input.Paths, Err: err}
	}
	var skipped []ports.SkippedPath
	if skippedErr != nil {
		skipped = skippedErr.Skipped
	}
	if len(artifacts) == 0 {
		if input.AllowEmpty {
			return []ports.Artifact{}, nil, nil
		}
		return nil, nil, &InputNotFoundError{Paths: input.Paths, Err: ports.ErrNoArtifacts}
	}

	// The explicit gate file may also sit in an artifact directory.
	if input.GatePath != "" {
		filtered := artifacts[:0]
		for _, a := range artifacts {
			if !samePath(a.Path, input.GatePath) {
				filtered = append(filtered, a)
			}
		}
		artifacts = filtered
	}

	sort.SliceStable(artifacts, func(i, j int) bool {
		return slashName(artifacts[i].Name) < slashName(artifacts[j].Name)
	})
	return artifacts, skipped, nil
}

// parseAll parses artifacts on a bounded pool. Outcomes keep the artifact
// order so concatenation is deterministic regardless of completion order.
func (uc *AnalyzeUseCase) parseAll(artifacts []ports.Artifact, cfg ports.EngineConfig) []parseOutcome {
	outcomes := make([]parseOutcome, len(artifacts))
	if len(artifacts) == 0 {
		return outcomes
	}

	g := new(errgroup.Group)
	g.SetLimit(cfg.Workers(len(artifacts)))
	for i, a := range artifacts {
		g.Go(func() error {
			outcomes[i] = uc.parseOne(a, cfg)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (uc *AnalyzeUseCase) parseOne(a ports.Artifact, cfg ports.EngineConfig) (out parseOutcome) {
	out.artifact = a

	adapter := uc.registry.Resolve(a)
	if adapter == nil {
		out.err = ports.NewParseError(a.Name, "", errors.New("no adapter accepts this artifact"))
		return out
	}
	out.adapter = adapter.ID()
	if !cfg.IsAdapterEnabled(adapter.ID()) {
		out.err = ports.NewParseError(a.Name, adapter.ID(), errors.New("adapter disabled by configuration"))
		return out
	}

	// A misbehaving adapter must not take the run down with it.
	defer func() {
		if rec := recover(); rec != nil {
			out.findings = nil
			out.gate = nil
			out.err = ports.NewParseError(a.Name, adapter.ID(), fmt.Errorf("adapter panic: %v", rec))
		}
	}()

	result, err := adapter.Parse(a.Data)
	if err != nil {
		out.err = withArtifact(err, a.Name, adapter.ID())
		return out
	}

	out.findings = make([]*finding.Finding, 0, len(result.Findings))
	for _, raw := range result.Findings {
		if f := uc.normalizer.Normalize(adapter, raw); f != nil {
			out.findings = append(out.findings, f)
		}
	}
	if result.Gate != nil {
		gate := *result.Gate
		gate.Source = a.Name
		out.gate = &gate
	}
	return out
}

func (uc *AnalyzeUseCase) parseGate(ctx context.Context, path string) (parseOutcome, error) {
	a, err := uc.source.Load(ctx, path)
	if err != nil {
		return parseOutcome{}, &InputNotFoundError{Paths: []string{path}, Err: err}
	}
	out := parseOutcome{artifact: a, adapter: ports.AdapterGate}
	adapter, ok := uc.registry.Get(ports.AdapterGate)
	if !ok {
		out.err = ports.NewParseError(a.Name, ports.AdapterGate, errors.New("gate adapter not registered"))
		return out, nil
	}
	result, err := adapter.Parse(a.Data)
	if err != nil {
		out.err = withArtifact(err, a.Name, ports.AdapterGate)
		return out, nil
	}
	if result.Gate != nil {
		gate := *result.Gate
		gate.Source = a.Name
		out.gate = &gate
	}
	return out, nil
}

func (uc *AnalyzeUseCase) progress(format string, args ...any) {
	if uc.writer != nil {
		_ = uc.writer.WriteProgress(fmt.Sprintf(format, args...))
	}
}

// withArtifact returns a ParseError naming the artifact.
func withArtifact(err error, name string, id ports.AdapterID) *ports.ParseError {
	var perr *ports.ParseError
	if errors.As(err, &perr) {
		return ports.NewParseError(name, perr.Adapter, perr.Err)
	}
	return ports.NewParseError(name, id, err)
}

func parseRunError(err *ports.ParseError) report.RunError {
	return report.RunError{
		Kind:    report.ErrorKindParse,
		Source:  err.Artifact,
		Adapter: string(err.Adapter),
		Message: err.Err.Error(),
	}
}

func evidenceTarget(input AnalyzeInput) string {
	if input.Target != "" {
		return input.Target
	}
	return strings.Join(input.Paths, ",")
}

func slashName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
