package services

import (
	"sort"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// ContextLine is one line of source surrounding a finding.
type ContextLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Marked bool   `json:"marked,omitempty"`
}

// Enrichment is a finding together with the source context fetched for it.
// Available is false when the fetch failed or the finding had no location.
type Enrichment struct {
	Finding   *finding.Finding
	Context   []ContextLine
	Available bool
	Reason    string
}

// FixEntry is one remediation item of a fix guide.
type FixEntry struct {
	Rank             int              `json:"rank"`
	Finding          *finding.Finding `json:"finding"`
	Context          []ContextLine    `json:"context,omitempty"`
	ContextAvailable bool             `json:"context_available"`
	ContextReason    string           `json:"context_reason,omitempty"`
	Recommendation   string           `json:"recommendation"`
}

// FixGuide is the ordered remediation document for critical and high
// findings. An empty guide is a valid result meaning nothing needs fixing.
type FixGuide struct {
	Entries []FixEntry `json:"entries"`
}

// IsEmpty reports whether the guide has no entries.
func (g FixGuide) IsEmpty() bool { return len(g.Entries) == 0 }

// Len returns the number of entries.
func (g FixGuide) Len() int { return len(g.Entries) }

var genericRecommendations = map[finding.Category]string{
	finding.CategorySAST:       "Review the flagged code path, validate or sanitize untrusted input, and replace the unsafe API with a safe alternative.",
	finding.CategoryIaC:        "Update the resource definition to the secure setting named by the check and re-run the IaC scanner to confirm.",
	finding.CategoryContainer:  "Rebuild the image from a patched base image or upgrade the affected package to a fixed version.",
	finding.CategorySecret:     "Revoke and rotate the exposed credential, remove it from the repository history, and load it from a secret manager.",
	finding.CategoryDependency: "Upgrade the dependency to a version that contains the fix, or remove it if it is unused.",
	finding.CategoryPolicy:     "Bring the configuration into compliance with the failing policy rule or record an approved exception.",
}

const defaultRecommendation = "Investigate the finding with the scanner's rule documentation and apply the recommended fix."

// Recommendation returns the scanner-provided remediation or, when absent,
// generic guidance for the finding's category.
func Recommendation(f *finding.Finding) string {
	if hint := f.Remediation(); hint != "" {
		return hint
	}
	if text, ok := genericRecommendations[f.Category()]; ok {
		return text
	}
	return defaultRecommendation
}

// FixGuideGenerator assembles fix guides.
type FixGuideGenerator struct{}

// NewFixGuideGenerator creates a new generator.
func NewFixGuideGenerator() *FixGuideGenerator {
	return &FixGuideGenerator{}
}

// Generate keeps only critical and high findings and orders them by
// severity, then by their order in the input.
func (g *FixGuideGenerator) Generate(enriched []Enrichment) FixGuide {
	selected := make([]Enrichment, 0, len(enriched))
	for _, e := range enriched {
		if e.Finding != nil && e.Finding.IsHighImpact() {
			selected = append(selected, e)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Finding.Severity() > selected[j].Finding.Severity()
	})

	guide := FixGuide{Entries: make([]FixEntry, 0, len(selected))}
	for i, e := range selected {
		entry := FixEntry{
			Rank:             i + 1,
			Finding:          e.Finding,
			ContextAvailable: e.Available,
			ContextReason:    e.Reason,
			Recommendation:   Recommendation(e.Finding),
		}
		if e.Available {
			entry.Context = append([]ContextLine(nil), e.Context...)
		}
		guide.Entries = append(guide.Entries, entry)
	}
	return guide
}
