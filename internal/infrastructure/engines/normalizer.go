package engines

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// Normalizer converts adapter output into domain findings. Severity is
// mapped through the adapter's own versioned table so every finding that
// leaves here sits in one of the four canonical buckets.
type Normalizer struct{}

// NewNormalizer creates a new normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize converts one raw finding produced by adapter.
func (n *Normalizer) Normalize(adapter ports.Adapter, raw ports.RawFinding) *finding.Finding {
	scanner := raw.Scanner
	if scanner == "" {
		scanner = string(adapter.ID())
	}

	category := raw.Category
	if category == finding.CategoryUnknown {
		category = adapter.Info().Category
	}

	title := raw.Title
	if title == "" {
		title = raw.RuleID
	}

	opts := []finding.Option{
		finding.WithCategory(category),
		finding.WithDescription(raw.Description),
		finding.WithRemediation(raw.Remediation),
		finding.WithReferences(raw.References...),
	}
	if len(raw.Raw) > 0 {
		opts = append(opts, finding.WithRaw(raw.Raw))
	}

	return finding.New(
		scanner,
		raw.RuleID,
		title,
		adapter.SeverityTable().Map(raw.Severity),
		finding.NewLocation(finding.NormalizePath(raw.File), raw.Line),
		opts...,
	)
}

// NormalizeAll converts every raw finding of one artifact in order.
func (n *Normalizer) NormalizeAll(adapter ports.Adapter, raws []ports.RawFinding) []*finding.Finding {
	out := make([]*finding.Finding, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(adapter, raw))
	}
	return out
}
