// Package generic is the fallback adapter for artifacts no other adapter
// claims. It extracts what it can from common JSON shapes and yields zero
// findings for shapes it does not recognize.
package generic

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "generic/1"

var severityTable = finding.SeverityTable{
	Tool:    "generic",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"BLOCKER":  finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"ERROR":    finding.SeverityHigh,
		"MAJOR":    finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"MODERATE": finding.SeverityMedium,
		"WARNING":  finding.SeverityMedium,
		"WARN":     finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"MINOR":    finding.SeverityLow,
		"INFO":     finding.SeverityLow,
		"NOTE":     finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for unknown formats.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new generic adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterGeneric
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterGeneric,
		Name:        "Generic",
		Description: "Best-effort extraction from results[], vulnerabilities[], findings[], issues[] and bare arrays",
		Category:    finding.CategoryUnknown,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns nothing; the registry selects this adapter as fallback.
func (a *Adapter) Keywords() []string {
	return nil
}

// SeverityTable returns the generic severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Parse extracts findings from a JSON document of unknown shape. Only
// invalid JSON is an error.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
