package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

func truncFinding(sev finding.Severity, rule string) *finding.Finding {
	return finding.New("gosec", rule, "Test finding "+rule, sev, finding.NewLocation("src/main.go", 10))
}

func TestTruncationService_NoLimit(t *testing.T) {
	findings := []*finding.Finding{
		truncFinding(finding.SeverityLow, "G1"),
		truncFinding(finding.SeverityHigh, "G2"),
	}

	result := NewTruncationService().Truncate(findings, TruncationConfig{})

	assert.False(t, result.Truncated)
	assert.Equal(t, 2, result.ShownCount)
	assert.Equal(t, "G2", result.Findings[0].RuleID())
}

func TestTruncationService_LimitAndMinSeverity(t *testing.T) {
	findings := []*finding.Finding{
		truncFinding(finding.SeverityHigh, "H1"),
		truncFinding(finding.SeverityLow, "L1"),
		truncFinding(finding.SeverityCritical, "C1"),
		truncFinding(finding.SeverityHigh, "H2"),
		truncFinding(finding.SeverityHigh, "H3"),
	}

	result := NewTruncationService().Truncate(findings, TruncationConfig{
		MaxFindings: 2,
		MinSeverity: finding.SeverityHigh,
	})

	require.True(t, result.Truncated)
	assert.Equal(t, 4, result.TotalCount)
	assert.Equal(t, 2, result.ShownCount)
	assert.Equal(t, "C1", result.Findings[0].RuleID())
	assert.Equal(t, "H1", result.Findings[1].RuleID())
	assert.Equal(t, 2, result.HiddenBySeverity[finding.SeverityHigh])
}
