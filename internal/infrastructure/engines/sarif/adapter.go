// Package sarif reads SARIF 2.1.0 logs written by any tool.
package sarif

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "sarif/1"

// The parser emits a CVSS band when the rule carries security-severity and
// the result level otherwise.
var severityTable = finding.SeverityTable{
	Tool:    "sarif",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"ERROR":    finding.SeverityHigh,
		"WARNING":  finding.SeverityMedium,
		"NOTE":     finding.SeverityLow,
		"NONE":     finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for SARIF logs.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new SARIF adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterSARIF
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterSARIF,
		Name:        "SARIF",
		Description: "Static Analysis Results Interchange Format 2.1.0 from any tool",
		Category:    finding.CategorySAST,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"sarif"}
}

// Extensions returns the file extensions that always mean SARIF.
func (a *Adapter) Extensions() []string {
	return []string{".sarif", ".sarif.json"}
}

// SeverityTable returns the SARIF severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes SARIF logs by version and runs.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeSARIF(data)
}

// Parse converts a SARIF log into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
