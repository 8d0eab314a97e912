package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
	"github.com/felixgeelhaar/triagesec/pkg/redact"
)

// Reasons recorded on enrichments without context.
const (
	ReasonNoLocation     = "finding has no file and line"
	ReasonSourceDisabled = "source context disabled"
	ReasonFetchFailed    = "source unavailable"
	ReasonLineOutOfRange = "line is beyond the end of the file"
)

// maxFetchWorkers bounds concurrent fetches across distinct files.
const maxFetchWorkers = 8

// SourceContextEnricher attaches source lines around critical and high
// findings. Each Enrich call is one run: a file is fetched at most once per
// (ref, path) and the cache is dropped when the call returns.
type SourceContextEnricher struct {
	fetcher      ports.SourceFetcher
	contextLines int
	redactor     *redact.Redactor
	logger       *zap.Logger
}

// EnricherOption configures the enricher.
type EnricherOption func(*SourceContextEnricher)

// WithContextLines sets the number of lines shown before and after.
func WithContextLines(n int) EnricherOption {
	return func(e *SourceContextEnricher) {
		if n >= 0 {
			e.contextLines = n
		}
	}
}

// WithEnricherLogger sets the logger.
func WithEnricherLogger(l *zap.Logger) EnricherOption {
	return func(e *SourceContextEnricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewSourceContextEnricher creates an enricher. A nil fetcher disables
// context: every eligible finding is returned without it.
func NewSourceContextEnricher(fetcher ports.SourceFetcher, opts ...EnricherOption) *SourceContextEnricher {
	e := &SourceContextEnricher{
		fetcher:      fetcher,
		contextLines: ports.DefaultContextLines,
		redactor:     redact.New(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnrichResult holds the enrichments, in input order, for every critical
// and high finding, plus one fetch error per failed (ref, path).
type EnrichResult struct {
	Enrichments []services.Enrichment
	Errors      []report.RunError
}

type fileKey struct {
	ref  string
	path string
}

type fileResult struct {
	lines []ports.SourceLine
	err   error
}

// runCache is the per-run file cache. singleflight collapses concurrent
// requests for the same file; the map keeps the outcome for later ones.
type runCache struct {
	mu    sync.Mutex
	files map[fileKey]fileResult
	group singleflight.Group
}

func (c *runCache) get(ctx context.Context, fetcher ports.SourceFetcher, key fileKey) ([]ports.SourceLine, error) {
	c.mu.Lock()
	if res, ok := c.files[key]; ok {
		c.mu.Unlock()
		return res.lines, res.err
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do(key.ref+"\x00"+key.path, func() (any, error) {
		c.mu.Lock()
		if res, ok := c.files[key]; ok {
			c.mu.Unlock()
			return res, nil
		}
		c.mu.Unlock()

		lines, err := fetcher.FetchFileLines(ctx, key.ref, key.path, 1, 0)
		res := fileResult{lines: lines, err: err}

		c.mu.Lock()
		c.files[key] = res
		c.mu.Unlock()
		return res, nil
	})
	res := v.(fileResult)
	return res.lines, res.err
}

// Enrich fetches context for the critical and high findings among
// findings. Medium and low findings are skipped without any fetch.
func (e *SourceContextEnricher) Enrich(ctx context.Context, ref string, findings []*finding.Finding) EnrichResult {
	var eligible []*finding.Finding
	for _, f := range findings {
		if f != nil && f.IsHighImpact() {
			eligible = append(eligible, f)
		}
	}

	result := EnrichResult{
		Enrichments: make([]services.Enrichment, len(eligible)),
		Errors:      []report.RunError{},
	}
	if len(eligible) == 0 {
		return result
	}

	cache := &runCache{files: make(map[fileKey]fileResult)}
	fetchErrs := make([]error, len(eligible))

	g := new(errgroup.Group)
	g.SetLimit(maxFetchWorkers)
	for i, f := range eligible {
		g.Go(func() error {
			result.Enrichments[i], fetchErrs[i] = e.enrichOne(ctx, cache, ref, f)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[fileKey]bool)
	for i, err := range fetchErrs {
		if err == nil {
			continue
		}
		key := fileKey{ref: ref, path: eligible[i].File()}
		if seen[key] {
			continue
		}
		seen[key] = true
		result.Errors = append(result.Errors, report.RunError{
			Kind:    report.ErrorKindFetch,
			Source:  key.path,
			Message: err.Error(),
		})
	}
	return result
}

func (e *SourceContextEnricher) enrichOne(ctx context.Context, cache *runCache, ref string, f *finding.Finding) (services.Enrichment, error) {
	out := services.Enrichment{Finding: f}

	if !f.Location().HasLine() {
		out.Reason = ReasonNoLocation
		return out, nil
	}
	if e.fetcher == nil {
		out.Reason = ReasonSourceDisabled
		return out, nil
	}

	lines, err := cache.get(ctx, e.fetcher, fileKey{ref: ref, path: f.File()})
	if err != nil {
		var fetchErr *ports.FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = ports.NewFetchError(ref, f.File(), err)
		}
		e.logger.Warn("source context unavailable",
			zap.String("file", f.File()),
			zap.String("ref", ref),
			zap.String("fetcher", e.fetcher.Name()),
			zap.Error(fetchErr),
		)
		out.Reason = fmt.Sprintf("%s: %v", ReasonFetchFailed, fetchErr.Err)
		return out, fetchErr
	}

	window := e.window(lines, f)
	if len(window) == 0 {
		out.Reason = ReasonLineOutOfRange
		return out, nil
	}
	out.Context = window
	out.Available = true
	return out, nil
}

// window cuts contextLines lines on each side of the finding's line out of
// a whole file, marking the finding's own line. Lines of secret findings
// are masked.
func (e *SourceContextEnricher) window(lines []ports.SourceLine, f *finding.Finding) []services.ContextLine {
	target := f.Line()
	start := target - e.contextLines
	end := target + e.contextLines

	var out []services.ContextLine
	found := false
	for _, l := range lines {
		if l.Number < start || l.Number > end {
			continue
		}
		text := l.Text
		marked := l.Number == target
		if marked {
			found = true
		}
		if f.Category() == finding.CategorySecret {
			if marked {
				text = e.redactor.MaskLine(text)
			} else {
				text = e.redactor.RedactString(text)
			}
		}
		out = append(out, services.ContextLine{Number: l.Number, Text: text, Marked: marked})
	}
	if !found {
		return nil
	}
	return out
}
