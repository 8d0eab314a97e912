package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

func sampleFindings() []*finding.Finding {
	return []*finding.Finding{
		finding.New("trivy", "CVE-2024-0001", "openssl", finding.SeverityHigh, finding.NewLocation("go.sum", 0)),
		finding.New("bandit", "B105", "hardcoded password", finding.SeverityMedium, finding.NewLocation("app.py", 12)),
		finding.New("gitleaks", "aws-key", "AWS key", finding.SeverityCritical, finding.NewLocation("config.env", 3)),
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		want  RiskTier
	}{
		{0, TierClean},
		{1, TierLowMedium},
		{40, TierLowMedium},
		{41, TierHigh},
		{80, TierHigh},
		{81, TierCritical},
		{121, TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.score), "score %d", tt.score)
	}
}

func TestNewDiscrepancy(t *testing.T) {
	t.Run("under reported", func(t *testing.T) {
		d := NewDiscrepancy(0, 43, true, nil)
		assert.Equal(t, 43, d.UnderReportedBy)
		assert.True(t, d.Flagged)
	})

	t.Run("over reported clamps to zero", func(t *testing.T) {
		d := NewDiscrepancy(10, 4, true, nil)
		assert.Equal(t, 0, d.UnderReportedBy)
		assert.False(t, d.Flagged)
	})

	t.Run("negative gate count treated as zero", func(t *testing.T) {
		d := NewDiscrepancy(-5, 2, true, nil)
		assert.Equal(t, 0, d.GateReportedCount)
		assert.Equal(t, 2, d.UnderReportedBy)
	})

	t.Run("gate passed is copied", func(t *testing.T) {
		passed := true
		d := NewDiscrepancy(0, 1, true, &passed)
		passed = false
		require.NotNil(t, d.GatePassed)
		assert.True(t, *d.GatePassed)
	})
}

func TestHistogram(t *testing.T) {
	h := NewHistogram()
	assert.Len(t, h, 4)
	assert.Equal(t, 0, h.Total())

	h[finding.SeverityHigh] = 2
	h[finding.SeverityCritical] = 1
	h[finding.SeverityLow] = 4
	assert.Equal(t, 7, h.Total())
	assert.Equal(t, 3, h.HighImpact())

	c := h.Clone()
	c[finding.SeverityLow] = 0
	assert.Equal(t, 4, h[finding.SeverityLow])
}

func TestNew_GroupsAndSortsScanners(t *testing.T) {
	r := New(Params{RunID: "run-1", Findings: sampleFindings(), RiskScore: 33})

	assert.Equal(t, 3, r.TotalFindings())
	assert.Equal(t, []string{"bandit", "gitleaks", "trivy"}, r.ScannersUsed())
	assert.Len(t, r.FindingsBySeverity(finding.SeverityHigh), 1)
	assert.Empty(t, r.FindingsBySeverity(finding.SeverityLow))
	assert.Equal(t, "trivy", r.Findings()[0].Scanner())
	assert.Equal(t, TierLowMedium, r.RiskTier())
	assert.Nil(t, r.Discrepancy())
}

func TestMarshalJSON_AlwaysHasAllBuckets(t *testing.T) {
	r := New(Params{Histogram: NewHistogram()})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))

	var buckets map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["findings_by_severity"], &buckets))
	assert.Len(t, buckets, 4)
	for _, name := range []string{"critical", "high", "medium", "low"} {
		assert.Contains(t, buckets, name)
	}
	assert.JSONEq(t, `[]`, string(decoded["scanners_used"]))
	assert.JSONEq(t, `[]`, string(decoded["errors"]))
	assert.NotContains(t, decoded, "discrepancy")
}

func TestMarshalJSON_OmitsRunID(t *testing.T) {
	at := time.Unix(1700000000, 0).UTC()
	a, err := json.Marshal(New(Params{RunID: "a", Findings: sampleFindings(), GeneratedAt: at}))
	require.NoError(t, err)
	b, err := json.Marshal(New(Params{RunID: "b", Findings: sampleFindings(), GeneratedAt: at}))
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.NotContains(t, string(a), "run_id")
}

func TestContentHash_IgnoresRunIDAndTimestamp(t *testing.T) {
	a := New(Params{RunID: "a", Findings: sampleFindings(), GeneratedAt: time.Unix(0, 0)})
	b := New(Params{RunID: "b", Findings: sampleFindings(), GeneratedAt: time.Unix(1700000000, 0)})

	ha, err := a.ContentHash()
	require.NoError(t, err)
	hb, err := b.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	c := New(Params{RunID: "a", Findings: sampleFindings()[:2]})
	hc, err := c.ContentHash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestNewEvidenceRecord(t *testing.T) {
	h := NewHistogram()
	h[finding.SeverityHigh] = 1
	d := NewDiscrepancy(0, 3, true, nil)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := New(Params{
		RunID:       "run-9",
		Findings:    sampleFindings(),
		RiskScore:   10,
		Histogram:   h,
		Discrepancy: &d,
		Errors:      []RunError{{Kind: ErrorKindParse, Source: "bad.json", Message: "boom"}},
		GeneratedAt: ts,
	})

	rec, err := NewEvidenceRecord(ActionAnalyze, "artifacts", r)
	require.NoError(t, err)

	assert.Equal(t, ts, rec.Timestamp)
	assert.Equal(t, "run-9", rec.RunID)
	assert.Equal(t, 3, rec.FindingCount)
	assert.Equal(t, 10, rec.RiskScore)
	assert.True(t, rec.DiscrepancyFlagged)
	assert.Equal(t, 3, rec.UnderReportedBy)
	assert.Equal(t, 1, rec.ErrorCount)
	assert.Len(t, rec.ContentHash, 64)
	assert.Equal(t, 1, rec.SeverityHistogram[finding.SeverityHigh])
}
