// Package gitleaks reads gitleaks JSON reports.
package gitleaks

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "gitleaks/1"

// gitleaks reports carry no severity. The parser assigns CRITICAL to rules
// that expose cloud credentials, private keys or database URIs, and SECRET
// to everything else.
var severityTable = finding.SeverityTable{
	Tool:    "gitleaks",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"SECRET":   finding.SeverityHigh,
	},
	Default: finding.SeverityHigh,
}

// Adapter implements ports.Adapter for gitleaks.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new gitleaks adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterGitleaks
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterGitleaks,
		Name:        "Gitleaks",
		Description: "Hardcoded secret detection (gitleaks detect --report-format json)",
		Category:    finding.CategorySecret,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"gitleaks"}
}

// SeverityTable returns the gitleaks severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes gitleaks reports: a top-level array whose first entry
// has RuleID and Secret keys.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeGitleaks(data)
}

// Parse converts a gitleaks report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
