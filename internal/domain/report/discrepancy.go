package report

// Discrepancy compares what the pipeline's security gate reported against
// the engine's own tally.
type Discrepancy struct {
	GateReportedCount int   `json:"gate_reported_count"`
	ActualCount       int   `json:"actual_count"`
	UnderReportedBy   int   `json:"under_reported_by"`
	Flagged           bool  `json:"flagged"`
	GatePresent       bool  `json:"gate_present"`
	GatePassed        *bool `json:"gate_passed,omitempty"`
}

// NewDiscrepancy computes the under-report gap. A negative gate count is
// treated as 0.
func NewDiscrepancy(gateReported, actual int, gatePresent bool, gatePassed *bool) Discrepancy {
	if gateReported < 0 {
		gateReported = 0
	}
	under := actual - gateReported
	if under < 0 {
		under = 0
	}
	d := Discrepancy{
		GateReportedCount: gateReported,
		ActualCount:       actual,
		UnderReportedBy:   under,
		Flagged:           under > 0,
		GatePresent:       gatePresent,
	}
	if gatePassed != nil {
		passed := *gatePassed
		d.GatePassed = &passed
	}
	return d
}

// GateStatus is what a pipeline's own security gate claimed about a run.
type GateStatus struct {
	Source string // artifact the status was read from
	Count  int
	Passed *bool
}
