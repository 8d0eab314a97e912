package writers

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

func TestJSONWriter_Stream(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(WithJSONOutput(&buf), WithPrettyPrint(false))

	require.NoError(t, w.WriteReport(sampleReport(nil), services.FixGuide{}))
	assert.Equal(t, "", w.Path())

	out := buf.Bytes()
	assert.Equal(t, byte('\n'), out[len(out)-1])
	assert.Equal(t, 1, bytes.Count(out, []byte("\n")))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.NotContains(t, decoded, "run_id")
	assert.EqualValues(t, 3, decoded["total_findings"])
	assert.EqualValues(t, 31, decoded["risk_score"])
	assert.Equal(t, "low-medium", decoded["risk_tier"])
}

func TestJSONWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "consolidated-results.json")
	w := NewJSONWriter(WithJSONFile(path))
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.WriteReport(sampleReport(nil), sampleGuide()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"generated_at\": ")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestJSONWriter_FileIsReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	w := NewJSONWriter(WithJSONFile(path), WithPrettyPrint(false))
	require.NoError(t, w.WriteReport(sampleReport(nil), services.FixGuide{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestJSONWriter_NoOps(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(WithJSONOutput(&buf))

	assert.NoError(t, w.WriteSummary(sampleReport(nil), services.FixGuide{}))
	assert.NoError(t, w.WriteProgress("parsing"))
	assert.NoError(t, w.WriteError(assert.AnError))
	assert.NoError(t, w.Flush())
	assert.Zero(t, buf.Len())
}
