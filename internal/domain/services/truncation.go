package services

import (
	"sort"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TruncationConfig holds truncation settings.
type TruncationConfig struct {
	MaxFindings int
	MinSeverity finding.Severity
}

// TruncationResult holds truncated findings and metadata.
type TruncationResult struct {
	Findings         []*finding.Finding
	Truncated        bool
	TotalCount       int
	ShownCount       int
	HiddenBySeverity map[finding.Severity]int
}

// TruncationService trims a finding list for size-limited consumers such as
// MCP responses, keeping the most severe findings.
type TruncationService struct{}

// NewTruncationService creates a new truncation service.
func NewTruncationService() *TruncationService {
	return &TruncationService{}
}

// Truncate filters by MinSeverity, sorts by severity (stable, so first-seen
// order is kept inside a bucket) and keeps at most MaxFindings.
// A MaxFindings of 0 or less disables the limit.
func (s *TruncationService) Truncate(findings []*finding.Finding, cfg TruncationConfig) TruncationResult {
	filtered := make([]*finding.Finding, 0, len(findings))
	for _, f := range findings {
		if cfg.MinSeverity.IsValid() && !f.Severity().IsAtLeast(cfg.MinSeverity) {
			continue
		}
		filtered = append(filtered, f)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Severity() > filtered[j].Severity()
	})

	result := TruncationResult{
		Findings:         filtered,
		TotalCount:       len(filtered),
		ShownCount:       len(filtered),
		HiddenBySeverity: make(map[finding.Severity]int),
	}
	if cfg.MaxFindings <= 0 || len(filtered) <= cfg.MaxFindings {
		return result
	}

	for _, f := range filtered[cfg.MaxFindings:] {
		result.HiddenBySeverity[f.Severity()]++
	}
	result.Findings = filtered[:cfg.MaxFindings]
	result.Truncated = true
	result.ShownCount = cfg.MaxFindings
	return result
}
