package writers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

func TestRenderFixGuide(t *testing.T) {
	gate := report.NewDiscrepancy(0, 3, true, nil)
	out := RenderFixGuide(sampleReport(&gate), sampleGuide())

	assert.True(t, strings.HasPrefix(out, "# Security Fix Guide\n"))
	assert.Contains(t, out, "2 finding(s) need attention")
	assert.Contains(t, out, "| 31 | low-medium | 3 | 2026-03-01T12:00:00Z |")
	assert.Contains(t, out, "**Gate discrepancy:** the security gate reported 0 finding(s) but 3 were found.")

	critical := strings.Index(out, "## 1. [CRITICAL] AWS access key")
	high := strings.Index(out, "## 2. [HIGH] SQL injection")
	require.NotEqual(t, -1, critical)
	require.NotEqual(t, -1, high)
	assert.Less(t, critical, high)
	assert.NotContains(t, out, "Healthcheck missing")

	assert.Contains(t, out, "- **Location:** `app/db.py:14`")
	assert.Contains(t, out, "```python\n")
	assert.Contains(t, out, "> 14 |     cur.execute(")
	assert.Contains(t, out, "  13 | def load(uid):")
	assert.Contains(t, out, "_Source context unavailable: file not found._")
	assert.Contains(t, out, "**Recommended fix:** Revoke and rotate")
	assert.Contains(t, out, "- https://cwe.mitre.org/data/definitions/89.html")
}

func TestRenderFixGuide_NoGateWarningWithoutGate(t *testing.T) {
	gate := report.NewDiscrepancy(0, 3, false, nil)
	out := RenderFixGuide(sampleReport(&gate), sampleGuide())
	assert.NotContains(t, out, "Gate discrepancy")
}

func TestMarkdownWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".triage", "fix-guide.md")
	w := NewMarkdownWriter(WithMarkdownFile(path))

	require.NoError(t, w.WriteReport(sampleReport(nil), sampleGuide()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "SQL injection")
}

func TestMarkdownWriter_EmptyGuideRemovesStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix-guide.md")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	w := NewMarkdownWriter(WithMarkdownFile(path))
	require.NoError(t, w.WriteReport(sampleReport(nil), services.FixGuide{}))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// A second empty run with nothing to remove is fine.
	require.NoError(t, w.WriteReport(sampleReport(nil), services.FixGuide{}))
}

func TestMarkdownWriter_StreamSkipsEmptyGuide(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkdownWriter(WithMarkdownOutput(&buf))

	require.NoError(t, w.WriteReport(sampleReport(nil), services.FixGuide{}))
	assert.Zero(t, buf.Len())

	require.NoError(t, w.WriteReport(sampleReport(nil), sampleGuide()))
	assert.Contains(t, buf.String(), "# Security Fix Guide")
}

func TestFenceLanguage(t *testing.T) {
	tests := map[string]string{
		"app/main.go":         "go",
		"svc/handler.PY":      "python",
		"Dockerfile":          "dockerfile",
		"build/Dockerfile.ci": "dockerfile",
		"infra/main.tf":       "hcl",
		"deploy/k8s.yml":      "yaml",
		"README":              "",
	}
	for file, want := range tests {
		assert.Equal(t, want, fenceLanguage(file), file)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "use of \\`eval\\` in \\*handler\\*", escapeMarkdown("use of `eval` in *handler*"))
}
