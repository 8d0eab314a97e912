// Package npmaudit reads `npm audit --json` reports, both the npm 7+
// (auditReportVersion 2) and the legacy npm 6 layouts.
package npmaudit

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "npm-audit/1"

var severityTable = finding.SeverityTable{
	Tool:    "npm-audit",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MODERATE": finding.SeverityMedium,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"INFO":     finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for npm audit.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new npm audit adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterNpmAudit
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterNpmAudit,
		Name:        "npm audit",
		Description: "Node.js dependency advisories (npm audit --json)",
		Category:    finding.CategoryDependency,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"npm-audit", "npm_audit", "npmaudit"}
}

// SeverityTable returns the npm audit severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes npm audit reports by auditReportVersion or by the
// legacy advisories map.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeAudit(data)
}

// Parse converts an npm audit report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
