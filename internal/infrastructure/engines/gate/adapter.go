// Package gate reads a pipeline's own security-gate status artifact: the
// pass/fail verdict and finding count the CI job reported.
package gate

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the (empty) severity mapping below.
const TableVersion = "gate/1"

// Gate artifacts carry no findings.
var severityTable = finding.SeverityTable{
	Tool:    "gate",
	Version: TableVersion,
	Entries: map[string]finding.Severity{},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for gate status artifacts.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new gate adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterGate
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterGate,
		Name:        "Security gate",
		Description: "Pipeline gate status: pass/fail and reported finding count",
		Category:    finding.CategoryUnknown,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"security-gate", "gate-status", "gate"}
}

// SeverityTable returns the empty gate mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Parse reads the gate status. It never yields findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	status, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: []ports.RawFinding{}, Gate: status}, nil
}
