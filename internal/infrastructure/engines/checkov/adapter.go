// Package checkov reads Checkov (IaC) JSON reports.
package checkov

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "checkov/1"

// Checkov only fills severity when connected to a platform API key; open
// source runs report null, which falls through to Default.
var severityTable = finding.SeverityTable{
	Tool:    "checkov",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"INFO":     finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for checkov.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new checkov adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterCheckov
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterCheckov,
		Name:        "Checkov",
		Description: "Infrastructure-as-code misconfigurations (checkov -o json)",
		Category:    finding.CategoryIaC,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"checkov"}
}

// SeverityTable returns the checkov severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes checkov reports by their check_type field.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeCheckov(data)
}

// Parse converts a checkov report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
