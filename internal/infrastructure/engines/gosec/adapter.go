// Package gosec reads gosec (Go SAST) JSON reports.
package gosec

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "gosec/1"

var severityTable = finding.SeverityTable{
	Tool:    "gosec",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for gosec.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new gosec adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterGosec
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterGosec,
		Name:        "gosec",
		Description: "Go security checker (gosec -fmt=json)",
		Category:    finding.CategorySAST,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"gosec"}
}

// SeverityTable returns the gosec severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes gosec reports by their Issues and Stats keys.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeGosec(data)
}

// Parse converts a gosec report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
