package services

import "github.com/felixgeelhaar/triagesec/internal/domain/report"

// DiscrepancyDetector reconciles the pipeline gate's claim against the
// engine's own tally.
type DiscrepancyDetector struct{}

// NewDiscrepancyDetector creates a new detector.
func NewDiscrepancyDetector() *DiscrepancyDetector {
	return &DiscrepancyDetector{}
}

// Detect compares actual against the gate. A missing gate counts as a gate
// that reported zero findings, so any actual finding is flagged.
func (d *DiscrepancyDetector) Detect(actual int, gate *report.GateStatus) report.Discrepancy {
	if gate == nil {
		return report.NewDiscrepancy(0, actual, false, nil)
	}
	return report.NewDiscrepancy(gate.Count, actual, true, gate.Passed)
}
