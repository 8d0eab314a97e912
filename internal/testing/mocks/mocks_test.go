package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

var (
	_ ports.Adapter         = (*MockAdapter)(nil)
	_ ports.AdapterRegistry = (*MockRegistry)(nil)
	_ ports.ArtifactSource  = (*MockArtifactSource)(nil)
	_ ports.EvidenceLog     = (*MockEvidenceLog)(nil)
	_ ports.SourceFetcher   = (*MockSourceFetcher)(nil)
	_ ports.ArtifactWriter  = (*MockWriter)(nil)
)

func TestMockAdapter_Defaults(t *testing.T) {
	a := NewMockAdapter("bandit")

	assert.Equal(t, ports.AdapterID("bandit"), a.ID())
	assert.Equal(t, []string{"bandit"}, a.Keywords())
	res, err := a.Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
}

func TestMockAdapter_WithError(t *testing.T) {
	a := NewMockAdapter("bandit").WithError(errors.New("boom"))

	_, err := a.Parse([]byte("{}"))
	assert.EqualError(t, err, "boom")
}

func TestMockRegistry_Resolve(t *testing.T) {
	r := NewMockRegistry(NewMockAdapter("bandit"), NewMockAdapter("kics"))

	assert.Equal(t, ports.AdapterID("kics"), r.Resolve(ports.Artifact{Name: "reports/KICS-results.json"}).ID())
	assert.Nil(t, r.Resolve(ports.Artifact{Name: "other.json"}))
	assert.Len(t, r.All(), 2)
}

func TestMockSourceFetcher(t *testing.T) {
	f := NewMockSourceFetcher(map[string]string{"app.py": "a\nb\nc"})

	lines, err := f.FetchFileLines(context.Background(), "HEAD", "app.py", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []ports.SourceLine{{Number: 2, Text: "b"}, {Number: 3, Text: "c"}}, lines)

	_, err = f.FetchFileLines(context.Background(), "HEAD", "missing.py", 1, 0)
	assert.ErrorIs(t, err, ports.ErrFileNotFound)
	assert.Equal(t, 1, f.Calls("app.py"))
	assert.Equal(t, 2, f.TotalCalls())
}

func TestMockEvidenceLog_Closed(t *testing.T) {
	l := &MockEvidenceLog{}
	require.NoError(t, l.Log(context.Background(), report.EvidenceRecord{RunID: "r1"}))
	require.NoError(t, l.Close())

	assert.Error(t, l.Log(context.Background(), report.EvidenceRecord{RunID: "r2"}))
	assert.Len(t, l.Records, 1)
}
