package services

import (
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// InvariantError reports an internal contract violation. It indicates a bug
// upstream (typically a severity table that let an unmapped value through),
// never a data problem, and aborts the run.
type InvariantError struct {
	Component string
	Value     string
	Err       error
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("invariant violated in %s: unexpected value %q", e.Component, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantError) Unwrap() error { return e.Err }

// Weights is the points contributed by one finding of each severity.
type Weights map[finding.Severity]int

// DefaultWeights is the fixed weight table. One critical outweighs six
// mediums.
var DefaultWeights = Weights{
	finding.SeverityCritical: 20,
	finding.SeverityHigh:     10,
	finding.SeverityMedium:   3,
	finding.SeverityLow:      1,
}

// ScoreFactor is one line of the score breakdown.
type ScoreFactor struct {
	Severity finding.Severity `json:"severity"`
	Count    int              `json:"count"`
	Weight   int              `json:"weight"`
	Points   int              `json:"points"`
}

// RiskAssessment is the scorer's output.
type RiskAssessment struct {
	Score     int              `json:"score"`
	Histogram report.Histogram `json:"histogram"`
	Factors   []ScoreFactor    `json:"factors"`
}

// Tier returns the display band of the score.
func (a RiskAssessment) Tier() report.RiskTier {
	return report.TierFor(a.Score)
}

// RiskScorer computes a severity-weighted risk score. The score is a raw
// sum; no normalization or capping is applied.
type RiskScorer struct {
	weights Weights
}

// NewRiskScorer creates a scorer using DefaultWeights.
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{weights: DefaultWeights}
}

// Score counts findings per bucket and sums weight*count. It fails with an
// InvariantError if any finding carries a severity outside the four buckets.
func (s *RiskScorer) Score(findings []*finding.Finding) (RiskAssessment, error) {
	h := report.NewHistogram()
	for _, f := range findings {
		sev := f.Severity()
		if !sev.IsValid() {
			return RiskAssessment{}, &InvariantError{
				Component: "risk-scorer",
				Value:     sev.String(),
				Err:       fmt.Errorf("finding %s from %s has no canonical severity", f.ID(), f.Scanner()),
			}
		}
		h[sev]++
	}

	result := RiskAssessment{Histogram: h, Factors: []ScoreFactor{}}
	for _, sev := range finding.SeveritiesDescending() {
		count := h[sev]
		if count == 0 {
			continue
		}
		weight := s.weights[sev]
		points := weight * count
		result.Score += points
		result.Factors = append(result.Factors, ScoreFactor{
			Severity: sev,
			Count:    count,
			Weight:   weight,
			Points:   points,
		})
	}
	return result, nil
}
