// Package tfsec reads tfsec (Terraform) JSON reports.
package tfsec

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "tfsec/1"

var severityTable = finding.SeverityTable{
	Tool:    "tfsec",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		// Severities from tfsec before 0.40.
		"ERROR":   finding.SeverityHigh,
		"WARNING": finding.SeverityMedium,
		"INFO":    finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for tfsec.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new tfsec adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterTfsec
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterTfsec,
		Name:        "tfsec",
		Description: "Terraform static analysis (tfsec --format json)",
		Category:    finding.CategoryIaC,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"tfsec"}
}

// SeverityTable returns the tfsec severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Parse converts a tfsec report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
