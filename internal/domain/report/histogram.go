package report

import "github.com/felixgeelhaar/triagesec/internal/domain/finding"

// Histogram counts findings per canonical severity bucket.
// All four buckets are always present so serialized output is stable.
type Histogram map[finding.Severity]int

// NewHistogram returns a histogram with every bucket set to zero.
func NewHistogram() Histogram {
	h := make(Histogram, 4)
	for _, sev := range finding.AllSeverities() {
		h[sev] = 0
	}
	return h
}

// Total returns the sum across all buckets.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// HighImpact returns the number of critical and high findings.
func (h Histogram) HighImpact() int {
	return h[finding.SeverityCritical] + h[finding.SeverityHigh]
}

// Clone returns an independent copy.
func (h Histogram) Clone() Histogram {
	c := NewHistogram()
	for k, v := range h {
		c[k] = v
	}
	return c
}
