package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

func kicsFinding(desc string) *finding.Finding {
	return finding.New("kics", "", "Missing User Instruction", finding.SeverityHigh,
		finding.NewLocation("Dockerfile", 1),
		finding.WithDescription(desc),
	)
}

func TestDeduplicator_CollapsesSelfRepetition(t *testing.T) {
	d := NewDeduplicator()

	out := d.Dedup([]*finding.Finding{kicsFinding("first"), kicsFinding("second")})

	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Description())
}

func TestDeduplicator_KeepsCrossScannerDuplicates(t *testing.T) {
	d := NewDeduplicator()
	loc := finding.NewLocation("go.sum", 4)

	out := d.Dedup([]*finding.Finding{
		finding.New("trivy", "CVE-2023-1", "x", finding.SeverityHigh, loc),
		finding.New("grype", "CVE-2023-1", "x", finding.SeverityHigh, loc),
	})

	assert.Len(t, out, 2)
}

func TestDeduplicator_PreservesFirstSeenOrder(t *testing.T) {
	d := NewDeduplicator()
	a := finding.New("bandit", "B101", "assert", finding.SeverityLow, finding.NewLocation("a.py", 1))
	b := finding.New("bandit", "B105", "password", finding.SeverityMedium, finding.NewLocation("b.py", 2))
	c := finding.New("bandit", "B101", "assert", finding.SeverityLow, finding.NewLocation("a.py", 9))

	out := d.Dedup([]*finding.Finding{a, b, a, c, b})

	assert.Equal(t, []*finding.Finding{a, b, c}, out)
}

func TestDeduplicator_Idempotent(t *testing.T) {
	d := NewDeduplicator()
	input := []*finding.Finding{
		kicsFinding("1"), kicsFinding("2"),
		finding.New("semgrep", "r1", "t", finding.SeverityMedium, finding.NewLocation("x.go", 3)),
		finding.New("semgrep", "r1", "t", finding.SeverityMedium, finding.NewLocation("x.go", 3)),
		finding.New("semgrep", "r1", "t", finding.SeverityMedium, finding.NewLocation("x.go", 4)),
	}

	once := d.Dedup(input)
	twice := d.Dedup(once)

	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, len(once), len(input))
}

func TestDeduplicator_EmptyAndNil(t *testing.T) {
	d := NewDeduplicator()
	assert.Empty(t, d.Dedup(nil))
	assert.Empty(t, d.Dedup([]*finding.Finding{nil}))
}
