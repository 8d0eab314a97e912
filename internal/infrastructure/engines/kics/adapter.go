// Package kics reads KICS (Keeping Infrastructure as Code Secure) JSON
// reports.
package kics

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "kics/1"

var severityTable = finding.SeverityTable{
	Tool:    "kics",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"INFO":     finding.SeverityLow,
		"TRACE":    finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for KICS.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new KICS adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterKics
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterKics,
		Name:        "KICS",
		Description: "IaC and Dockerfile misconfigurations (kics scan --report-formats json)",
		Category:    finding.CategoryIaC,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"kics"}
}

// SeverityTable returns the KICS severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes KICS reports by their kics_version field.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeKics(data)
}

// Parse converts a KICS report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
