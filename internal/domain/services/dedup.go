package services

import "github.com/felixgeelhaar/triagesec/internal/domain/finding"

// Deduplicator removes scanner self-repetition from a finding stream.
// Findings are keyed by (scanner, rule id or title, file, line); the first
// occurrence of a key wins and later ones are dropped without merging.
// Findings from different scanners are never correlated.
type Deduplicator struct{}

// NewDeduplicator creates a new deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Dedup returns the findings in first-seen order with duplicates removed.
// The input slice is not modified.
func (d *Deduplicator) Dedup(findings []*finding.Finding) []*finding.Finding {
	seen := make(map[finding.Key]struct{}, len(findings))
	out := make([]*finding.Finding, 0, len(findings))
	for _, f := range findings {
		if f == nil {
			continue
		}
		k := f.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
