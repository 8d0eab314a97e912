package engines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// stubAdapter for testing
type stubAdapter struct {
	id       ports.AdapterID
	keywords []string
	detect   bool
}

func (s *stubAdapter) ID() ports.AdapterID { return s.id }

func (s *stubAdapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{ID: s.id, Name: string(s.id), Category: finding.CategorySAST, Keywords: s.keywords}
}

func (s *stubAdapter) Keywords() []string { return s.keywords }

func (s *stubAdapter) SeverityTable() finding.SeverityTable {
	return finding.SeverityTable{Tool: string(s.id), Version: "stub/1", Default: finding.SeverityMedium}
}

func (s *stubAdapter) Parse([]byte) (ports.ParseResult, error) { return ports.ParseResult{}, nil }

type detectingStub struct{ stubAdapter }

func (d *detectingStub) Detect([]byte) bool { return d.detect }

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.NotNil(t, registry)
	assert.Empty(t, registry.IDs())
	assert.Nil(t, registry.Resolve(ports.Artifact{Name: "x.json"}))
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{id: "a", keywords: []string{"one"}})
	registry.Register(&stubAdapter{id: "a", keywords: []string{"two"}})

	assert.Len(t, registry.IDs(), 1)
	got, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"two"}, got.Keywords())
}

func TestRegistry_All_Sorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{id: "zeta"})
	registry.Register(&stubAdapter{id: "alpha"})
	registry.Register(&stubAdapter{id: "mid"})

	assert.Equal(t, []ports.AdapterID{"alpha", "mid", "zeta"}, registry.IDs())
	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, ports.AdapterID("alpha"), all[0].ID())
}

func TestRegistry_Resolve_Stubs(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubAdapter{id: "short", keywords: []string{"sec"}})
	registry.Register(&stubAdapter{id: "long", keywords: []string{"gosec"}})
	registry.Register(&stubAdapter{id: "b-tie", keywords: []string{"scan"}})
	registry.Register(&stubAdapter{id: "a-tie", keywords: []string{"scan"}})
	registry.Register(&detectingStub{stubAdapter{id: "sniffer"}, true})
	registry.Register(&stubAdapter{id: ports.AdapterGeneric})

	tests := []struct {
		name     string
		artifact ports.Artifact
		want     ports.AdapterID
	}{
		{"longest keyword wins", ports.Artifact{Name: "reports/gosec-out.json"}, "long"},
		{"case-insensitive base name", ports.Artifact{Name: `C:\ci\GOSEC.JSON`}, "long"},
		{"tie goes to lower id", ports.Artifact{Name: "scan.json"}, "a-tie"},
		{"directory names ignored", ports.Artifact{Name: "gosec/output.json", Data: []byte(`{}`)}, "sniffer"},
		{"no data falls back", ports.Artifact{Name: "output.json"}, ports.AdapterGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.Resolve(tt.artifact)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID())
		})
	}
}

func TestDefaultRegistry_Resolve(t *testing.T) {
	registry := NewDefaultRegistry()

	tests := []struct {
		name     string
		artifact ports.Artifact
		want     ports.AdapterID
	}{
		{"bandit by name", ports.Artifact{Name: "bandit-report.json"}, ports.AdapterBandit},
		{"checkov by name", ports.Artifact{Name: "results_checkov.json"}, ports.AdapterCheckov},
		{"trivy by name", ports.Artifact{Name: "trivy-fs.json"}, ports.AdapterTrivy},
		{"tfsec by name", ports.Artifact{Name: "tfsec.json"}, ports.AdapterTfsec},
		{"kics by name", ports.Artifact{Name: "kics-results.json"}, ports.AdapterKics},
		{"npm audit by name", ports.Artifact{Name: "npm-audit.json"}, ports.AdapterNpmAudit},
		{"gate by name", ports.Artifact{Name: "security-gate.json"}, ports.AdapterGate},
		{"bare gate token", ports.Artifact{Name: "pipeline_gate.json"}, ports.AdapterGate},
		{
			"gate inside a word is not a gate",
			ports.Artifact{Name: "aggregate-results.json", Data: []byte(`{"results": [{"title": "Hardcoded password", "severity": "HIGH"}], "total": 1}`)},
			ports.AdapterGeneric,
		},
		{"delegate is not a gate", ports.Artifact{Name: "delegate-scan.json"}, ports.AdapterGeneric},
		{"sarif extension beats keyword", ports.Artifact{Name: "semgrep.sarif"}, ports.AdapterSARIF},
		{"semgrep by name", ports.Artifact{Name: "semgrep.json"}, ports.AdapterSemgrep},
		{
			"trivy by content",
			ports.Artifact{Name: "image.json", Data: []byte(`{"SchemaVersion": 2, "Results": []}`)},
			ports.AdapterTrivy,
		},
		{
			"sarif by content",
			ports.Artifact{Name: "codeql.json", Data: []byte(`{"version": "2.1.0", "runs": []}`)},
			ports.AdapterSARIF,
		},
		{
			"unknown falls back to generic",
			ports.Artifact{Name: "custom.json", Data: []byte(`{"findings": []}`)},
			ports.AdapterGeneric,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.Resolve(tt.artifact)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID())
		})
	}
}

func TestContainsToken(t *testing.T) {
	tests := []struct {
		name string
		kw   string
		want bool
	}{
		{"gate.json", "gate", true},
		{"ci-gate-status.json", "gate", true},
		{"aggregate-results.json", "gate", false},
		{"investigate.json", "gate", false},
		{"gatekeeper.json", "gate", false},
		{"agate-gate.json", "gate", true},
		{"results_checkov.json", "checkov", true},
		{"npm-audit.json", "npm-audit", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsToken(tt.name, tt.kw))
		})
	}
}

func TestDefaultRegistry_Disabled(t *testing.T) {
	registry := NewDefaultRegistry(ports.AdapterBandit, ports.AdapterGeneric)

	_, ok := registry.Get(ports.AdapterBandit)
	assert.False(t, ok)
	_, ok = registry.Get(ports.AdapterGeneric)
	assert.True(t, ok)

	got := registry.Resolve(ports.Artifact{Name: "bandit.json", Data: []byte(`{"results": []}`)})
	require.NotNil(t, got)
	assert.Equal(t, ports.AdapterGeneric, got.ID())
}

func TestRegistry_Catalog(t *testing.T) {
	catalog := NewDefaultRegistry().Catalog()

	require.Len(t, catalog, 15)
	for i := 1; i < len(catalog); i++ {
		assert.Less(t, catalog[i-1].ID, catalog[i].ID)
	}
	for _, info := range catalog {
		assert.NotEmpty(t, info.TableVer, info.ID)
		assert.NotEmpty(t, info.Name, info.ID)
	}
}
