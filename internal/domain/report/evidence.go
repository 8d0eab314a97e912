package report

import (
	"fmt"
	"time"
)

// ActionAnalyze is the evidence action name for a consolidation run.
const ActionAnalyze = "analyze"

// EvidenceRecord is one append-only audit entry describing a run.
type EvidenceRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	RunID              string    `json:"run_id"`
	Action             string    `json:"action"`
	Target             string    `json:"target"`
	FindingCount       int       `json:"finding_count"`
	SeverityHistogram  Histogram `json:"severity_histogram"`
	RiskScore          int       `json:"risk_score"`
	DiscrepancyFlagged bool      `json:"discrepancy_flagged"`
	UnderReportedBy    int       `json:"under_reported_by"`
	ErrorCount         int       `json:"error_count"`
	ContentHash        string    `json:"content_hash"`
}

// NewEvidenceRecord summarizes a report for the audit log.
func NewEvidenceRecord(action, target string, r *ConsolidatedReport) (EvidenceRecord, error) {
	hash, err := r.ContentHash()
	if err != nil {
		return EvidenceRecord{}, fmt.Errorf("failed to hash report: %w", err)
	}
	rec := EvidenceRecord{
		Timestamp:         r.GeneratedAt(),
		RunID:             r.RunID(),
		Action:            action,
		Target:            target,
		FindingCount:      r.TotalFindings(),
		SeverityHistogram: r.Histogram(),
		RiskScore:         r.RiskScore(),
		ErrorCount:        len(r.Errors()),
		ContentHash:       hash,
	}
	if d := r.Discrepancy(); d != nil {
		rec.DiscrepancyFlagged = d.Flagged
		rec.UnderReportedBy = d.UnderReportedBy
	}
	return rec, nil
}
