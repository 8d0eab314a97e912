package gosec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

const sampleReport = `{
  "Golang errors": {},
  "Issues": [
    {
      "severity": "HIGH",
      "confidence": "HIGH",
      "cwe": {"id": "798", "url": "https://cwe.mitre.org/data/definitions/798.html"},
      "rule_id": "G101",
      "details": "Potential hardcoded credentials",
      "file": "/src/app/config.go",
      "code": "password := \"hunter2\"",
      "line": "42",
      "column": "2",
      "nosec": false
    },
    {
      "severity": "MEDIUM",
      "confidence": "HIGH",
      "cwe": {"id": "22", "url": "https://cwe.mitre.org/data/definitions/22.html"},
      "rule_id": "G304",
      "details": "Potential file inclusion via variable",
      "file": "/src/app/files.go",
      "line": "10-12",
      "nosec": false
    },
    {
      "severity": "LOW",
      "rule_id": "G104",
      "details": "Errors unhandled.",
      "file": "/src/app/main.go",
      "line": "7",
      "nosec": true
    }
  ],
  "Stats": {"files": 3, "lines": 120, "nosec": 1, "found": 2}
}`

func TestParser_Parse(t *testing.T) {
	findings, err := NewParser().Parse([]byte(sampleReport))
	require.NoError(t, err)
	require.Len(t, findings, 2)

	f := findings[0]
	assert.Equal(t, "G101", f.RuleID)
	assert.Equal(t, "Hardcoded credentials", f.Title)
	assert.Equal(t, "CRITICAL", f.Severity)
	assert.Equal(t, 42, f.Line)
	assert.Equal(t, "/src/app/config.go", f.File)
	assert.Contains(t, f.Description, "CWE-798")
	assert.Equal(t, []string{"https://cwe.mitre.org/data/definitions/798.html"}, f.References)
	assert.Equal(t, finding.CategorySAST, f.Category)

	assert.Equal(t, "MEDIUM", findings[1].Severity)
	assert.Equal(t, 10, findings[1].Line)
}

func TestParser_Parse_MissingIssues(t *testing.T) {
	_, err := NewParser().Parse([]byte(`{"Stats": {}}`))
	assert.Error(t, err)
}

func TestParser_Parse_NullIssues(t *testing.T) {
	findings, err := NewParser().Parse([]byte(`{"Issues": null, "Stats": {"found": 0}}`))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestParser_ParseStats(t *testing.T) {
	stats, err := NewParser().ParseStats([]byte(sampleReport))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Nosec)
}

func TestAdapter_Detect(t *testing.T) {
	a := NewAdapter()
	assert.True(t, a.Detect([]byte(sampleReport)))
	assert.False(t, a.Detect([]byte(`{"Issues": []}`)))
	assert.False(t, a.Detect([]byte(`[]`)))
}
