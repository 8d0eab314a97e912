// Package report holds the immutable output of one analysis run.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// Params carries everything needed to build a ConsolidatedReport.
type Params struct {
	RunID       string
	Findings    []*finding.Finding // deduplicated, first-seen order
	RiskScore   int
	Histogram   Histogram
	Discrepancy *Discrepancy
	Errors      []RunError
	GeneratedAt time.Time
}

// ConsolidatedReport is the result of one engine run. It is built once and
// never mutated, so it is safe to serialize and cache.
type ConsolidatedReport struct {
	runID        string
	findings     []*finding.Finding
	bySeverity   map[finding.Severity][]*finding.Finding
	riskScore    int
	histogram    Histogram
	scannersUsed []string
	discrepancy  *Discrepancy
	errors       []RunError
	generatedAt  time.Time
}

// New builds a report. Scanners are collected from the findings and sorted.
func New(p Params) *ConsolidatedReport {
	r := &ConsolidatedReport{
		runID:       p.RunID,
		findings:    append([]*finding.Finding(nil), p.Findings...),
		bySeverity:  make(map[finding.Severity][]*finding.Finding, 4),
		riskScore:   p.RiskScore,
		histogram:   NewHistogram(),
		errors:      append([]RunError(nil), p.Errors...),
		generatedAt: p.GeneratedAt.UTC(),
	}
	for k, v := range p.Histogram {
		r.histogram[k] = v
	}
	if p.Discrepancy != nil {
		d := *p.Discrepancy
		r.discrepancy = &d
	}

	seen := make(map[string]struct{})
	for _, f := range r.findings {
		r.bySeverity[f.Severity()] = append(r.bySeverity[f.Severity()], f)
		if _, ok := seen[f.Scanner()]; !ok {
			seen[f.Scanner()] = struct{}{}
			r.scannersUsed = append(r.scannersUsed, f.Scanner())
		}
	}
	sort.Strings(r.scannersUsed)
	return r
}

// RunID returns the run identifier.
func (r *ConsolidatedReport) RunID() string { return r.runID }

// Findings returns the deduplicated findings in first-seen order.
func (r *ConsolidatedReport) Findings() []*finding.Finding {
	return append([]*finding.Finding(nil), r.findings...)
}

// FindingsBySeverity returns the findings of one bucket in first-seen order.
func (r *ConsolidatedReport) FindingsBySeverity(sev finding.Severity) []*finding.Finding {
	return append([]*finding.Finding(nil), r.bySeverity[sev]...)
}

// TotalFindings returns the count after deduplication.
func (r *ConsolidatedReport) TotalFindings() int { return len(r.findings) }

// RiskScore returns the weighted risk score.
func (r *ConsolidatedReport) RiskScore() int { return r.riskScore }

// RiskTier returns the display band of the score.
func (r *ConsolidatedReport) RiskTier() RiskTier { return TierFor(r.riskScore) }

// Histogram returns a copy of the severity histogram.
func (r *ConsolidatedReport) Histogram() Histogram { return r.histogram.Clone() }

// ScannersUsed returns the sorted scanner identifiers seen in the findings.
func (r *ConsolidatedReport) ScannersUsed() []string {
	return append([]string(nil), r.scannersUsed...)
}

// Discrepancy returns the gate comparison, if one was computed.
func (r *ConsolidatedReport) Discrepancy() *Discrepancy {
	if r.discrepancy == nil {
		return nil
	}
	d := *r.discrepancy
	return &d
}

// Errors returns the recovered failures of the run.
func (r *ConsolidatedReport) Errors() []RunError {
	return append([]RunError(nil), r.errors...)
}

// GeneratedAt returns the report timestamp.
func (r *ConsolidatedReport) GeneratedAt() time.Time { return r.generatedAt }

// HasHighImpact reports whether any critical or high finding is present.
func (r *ConsolidatedReport) HasHighImpact() bool { return r.histogram.HighImpact() > 0 }

// reportJSON carries no run ID: identical inputs with a pinned clock must
// serialize to identical bytes. The run ID lives on the EvidenceRecord.
type reportJSON struct {
	GeneratedAt        time.Time                               `json:"generated_at"`
	TotalFindings      int                                     `json:"total_findings"`
	RiskScore          int                                     `json:"risk_score"`
	RiskTier           RiskTier                                `json:"risk_tier"`
	SeverityCounts     Histogram                               `json:"severity_counts"`
	ScannersUsed       []string                                `json:"scanners_used"`
	FindingsBySeverity map[finding.Severity][]*finding.Finding `json:"findings_by_severity"`
	Discrepancy        *Discrepancy                            `json:"discrepancy,omitempty"`
	Errors             []RunError                              `json:"errors"`
}

func (r *ConsolidatedReport) toJSON() reportJSON {
	bySev := make(map[finding.Severity][]*finding.Finding, 4)
	for _, sev := range finding.AllSeverities() {
		list := r.bySeverity[sev]
		if list == nil {
			list = []*finding.Finding{}
		}
		bySev[sev] = list
	}
	scanners := r.scannersUsed
	if scanners == nil {
		scanners = []string{}
	}
	errs := r.errors
	if errs == nil {
		errs = []RunError{}
	}
	return reportJSON{
		GeneratedAt:        r.generatedAt,
		TotalFindings:      len(r.findings),
		RiskScore:          r.riskScore,
		RiskTier:           r.RiskTier(),
		SeverityCounts:     r.histogram,
		ScannersUsed:       scanners,
		FindingsBySeverity: bySev,
		Discrepancy:        r.discrepancy,
		Errors:             errs,
	}
}

// MarshalJSON implements json.Marshaler.
func (r *ConsolidatedReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON())
}

// ContentHash returns the SHA-256 of the report's JSON with generated_at
// cleared, so identical inputs always hash identically.
func (r *ConsolidatedReport) ContentHash() (string, error) {
	content := r.toJSON()
	content.GeneratedAt = time.Time{}
	data, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report content: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
