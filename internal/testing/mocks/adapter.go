// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// MockAdapter is a configurable mock implementation of ports.Adapter.
type MockAdapter struct {
	IDValue       ports.AdapterID
	KeywordsValue []string
	TableValue    finding.SeverityTable
	ParseFunc     func(data []byte) (ports.ParseResult, error)
}

// NewMockAdapter creates a mock adapter whose keyword is its ID and whose
// table accepts the four canonical severities.
func NewMockAdapter(id ports.AdapterID) *MockAdapter {
	return &MockAdapter{
		IDValue:       id,
		KeywordsValue: []string{string(id)},
		TableValue: finding.SeverityTable{
			Tool:    string(id),
			Version: string(id) + "/mock",
			Entries: map[string]finding.Severity{
				"CRITICAL": finding.SeverityCritical,
				"HIGH":     finding.SeverityHigh,
				"MEDIUM":   finding.SeverityMedium,
				"LOW":      finding.SeverityLow,
			},
			Default: finding.SeverityMedium,
		},
	}
}

// ID returns the adapter ID.
func (m *MockAdapter) ID() ports.AdapterID { return m.IDValue }

// Info returns adapter metadata.
func (m *MockAdapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          m.IDValue,
		Name:        string(m.IDValue),
		Description: "Mock adapter for testing",
		Category:    finding.CategorySAST,
		Keywords:    m.KeywordsValue,
		TableVer:    m.TableValue.Version,
	}
}

// Keywords returns the file name keywords.
func (m *MockAdapter) Keywords() []string { return m.KeywordsValue }

// SeverityTable returns the configured table.
func (m *MockAdapter) SeverityTable() finding.SeverityTable { return m.TableValue }

// Parse runs ParseFunc, or returns no findings.
func (m *MockAdapter) Parse(data []byte) (ports.ParseResult, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(data)
	}
	return ports.ParseResult{}, nil
}

// WithFindings configures the mock to return specific raw findings.
func (m *MockAdapter) WithFindings(findings ...ports.RawFinding) *MockAdapter {
	m.ParseFunc = func([]byte) (ports.ParseResult, error) {
		return ports.ParseResult{Findings: findings}, nil
	}
	return m
}

// WithGate configures the mock to return a gate status.
func (m *MockAdapter) WithGate(count int, passed *bool) *MockAdapter {
	m.ParseFunc = func([]byte) (ports.ParseResult, error) {
		return ports.ParseResult{Gate: &report.GateStatus{Count: count, Passed: passed}}, nil
	}
	return m
}

// WithError configures the mock to fail.
func (m *MockAdapter) WithError(err error) *MockAdapter {
	m.ParseFunc = func([]byte) (ports.ParseResult, error) {
		return ports.ParseResult{}, err
	}
	return m
}

// MockRegistry resolves artifacts by keyword like the real registry, minus
// content detection.
type MockRegistry struct {
	adapters map[ports.AdapterID]ports.Adapter
	order    []ports.AdapterID
}

// NewMockRegistry creates a registry holding the given adapters.
func NewMockRegistry(adapters ...ports.Adapter) *MockRegistry {
	r := &MockRegistry{adapters: make(map[ports.AdapterID]ports.Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter.
func (r *MockRegistry) Register(a ports.Adapter) {
	if _, ok := r.adapters[a.ID()]; !ok {
		r.order = append(r.order, a.ID())
	}
	r.adapters[a.ID()] = a
}

// Get returns an adapter by ID.
func (r *MockRegistry) Get(id ports.AdapterID) (ports.Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// All returns adapters in registration order.
func (r *MockRegistry) All() []ports.Adapter {
	out := make([]ports.Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// Resolve returns the first adapter with a keyword in the artifact name.
func (r *MockRegistry) Resolve(artifact ports.Artifact) ports.Adapter {
	name := strings.ToLower(artifact.Name)
	for _, id := range r.order {
		for _, kw := range r.adapters[id].Keywords() {
			if strings.Contains(name, kw) {
				return r.adapters[id]
			}
		}
	}
	return nil
}

// MockArtifactSource serves artifacts from memory.
type MockArtifactSource struct {
	Artifacts   []ports.Artifact
	DiscoverErr error
}

// Discover returns the configured artifacts together with DiscoverErr, so
// a *ports.SkippedPathsError can accompany a partial result.
func (m *MockArtifactSource) Discover(_ context.Context, _ []string) ([]ports.Artifact, error) {
	return append([]ports.Artifact(nil), m.Artifacts...), m.DiscoverErr
}

// Load returns the artifact with the given path or name.
func (m *MockArtifactSource) Load(_ context.Context, path string) (ports.Artifact, error) {
	for _, a := range m.Artifacts {
		if a.Path == path || a.Name == path {
			return a, nil
		}
	}
	return ports.Artifact{}, ports.ErrArtifactNotFound
}

// MockEvidenceLog records evidence in memory.
type MockEvidenceLog struct {
	mu      sync.Mutex
	Records []report.EvidenceRecord
	Err     error
	closed  bool
}

// Log appends a record.
func (m *MockEvidenceLog) Log(_ context.Context, record report.EvidenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("evidence log closed")
	}
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, record)
	return nil
}

// Close marks the log closed.
func (m *MockEvidenceLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
