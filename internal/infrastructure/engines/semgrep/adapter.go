// Package semgrep reads Semgrep JSON reports.
package semgrep

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "semgrep/1"

// Semgrep rules use ERROR/WARNING/INFO; registry rules sometimes carry the
// newer CRITICAL..LOW scale instead.
var severityTable = finding.SeverityTable{
	Tool:    "semgrep",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"ERROR":    finding.SeverityHigh,
		"HIGH":     finding.SeverityHigh,
		"WARNING":  finding.SeverityMedium,
		"MEDIUM":   finding.SeverityMedium,
		"INFO":     finding.SeverityLow,
		"LOW":      finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for semgrep.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new semgrep adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterSemgrep
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterSemgrep,
		Name:        "Semgrep",
		Description: "Multi-language static analysis (semgrep --json)",
		Category:    finding.CategorySAST,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"semgrep"}
}

// SeverityTable returns the semgrep severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes semgrep reports by check_id entries under results.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeSemgrep(data)
}

// Parse converts a semgrep report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
