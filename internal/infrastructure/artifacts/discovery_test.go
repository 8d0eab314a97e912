package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func names(arts []ports.Artifact) []string {
	out := make([]string, 0, len(arts))
	for _, a := range arts {
		out = append(out, a.Name)
	}
	return out
}

func TestDiscover_Directory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "trivy-results.json", `{"Results": []}`)
	writeFile(t, root, "bandit-report.json", `{"results": []}`)
	writeFile(t, root, "sast/semgrep.sarif", `{"runs": []}`)
	writeFile(t, root, "notes.txt", "ignored")
	writeFile(t, root, "node_modules/pkg/package.json", "{}")
	writeFile(t, root, ".triage/consolidated-results.json", "{}")

	arts, err := NewDiscovery(DefaultOptions()).Discover(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{"bandit-report.json", "sast/semgrep.sarif", "trivy-results.json"}, names(arts))
	assert.Equal(t, []byte(`{"results": []}`), arts[0].Data)
	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "bandit-report.json"), arts[0].Path)
}

func TestDiscover_FilesAndDedup(t *testing.T) {
	root := t.TempDir()
	gate := writeFile(t, root, "gate.txt", `{"passed": true}`)
	kics := writeFile(t, root, "kics.json", `{"queries": []}`)

	arts, err := NewDiscovery(DefaultOptions()).Discover(context.Background(), []string{kics, gate, root})
	require.NoError(t, err)

	// explicit files keep any extension; the directory walk adds nothing new
	assert.Equal(t, []string{"gate.txt", "kics.json"}, names(arts))
}

func TestDiscover_Errors(t *testing.T) {
	d := NewDiscovery(DefaultOptions())

	_, err := d.Discover(context.Background(), nil)
	assert.ErrorIs(t, err, ports.ErrNoArtifacts)

	_, err = d.Discover(context.Background(), []string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorIs(t, err, ports.ErrArtifactNotFound)
	var skipped *ports.SkippedPathsError
	assert.ErrorAs(t, err, &skipped)

	_, err = d.Discover(context.Background(), []string{t.TempDir()})
	assert.ErrorIs(t, err, ports.ErrNoArtifacts)
}

func TestDiscover_SkipsMissingPath(t *testing.T) {
	root := t.TempDir()
	good := writeFile(t, root, "bandit-report.json", `{"results": []}`)
	missing := filepath.Join(root, "trivy-results.json")

	arts, err := NewDiscovery(DefaultOptions()).Discover(context.Background(), []string{missing, good})

	assert.Equal(t, []string{"bandit-report.json"}, names(arts))
	var skipped *ports.SkippedPathsError
	require.ErrorAs(t, err, &skipped)
	require.Len(t, skipped.Skipped, 1)
	assert.Equal(t, missing, skipped.Skipped[0].Path)
	assert.ErrorIs(t, err, ports.ErrArtifactNotFound)
}

func TestDiscover_SkipsUnreadableFileInDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	writeFile(t, root, "bandit-report.json", `{"results": []}`)
	locked := writeFile(t, root, "kics.json", `{"queries": []}`)
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o600) })

	arts, err := NewDiscovery(DefaultOptions()).Discover(context.Background(), []string{root})

	assert.Equal(t, []string{"bandit-report.json"}, names(arts))
	var skipped *ports.SkippedPathsError
	require.ErrorAs(t, err, &skipped)
	require.Len(t, skipped.Skipped, 1)
	assert.Contains(t, skipped.Skipped[0].Err.Error(), "kics.json")
}

func TestDiscover_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/deep.json", "{}")
	writeFile(t, root, "a/shallow.json", "{}")

	opts := DefaultOptions()
	opts.MaxDepth = 1
	arts, err := NewDiscovery(opts).Discover(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/shallow.json"}, names(arts))
}

func TestDiscover_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "x.json", "{}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiscovery(DefaultOptions()).Discover(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "security-gate.json", `{"findings_count": 0}`)
	d := NewDiscovery(DefaultOptions())

	a, err := d.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "security-gate.json", a.Name)

	_, err = d.Load(context.Background(), filepath.Join(root, "nope.json"))
	assert.ErrorIs(t, err, ports.ErrArtifactNotFound)

	_, err = d.Load(context.Background(), root)
	assert.Error(t, err)
}
