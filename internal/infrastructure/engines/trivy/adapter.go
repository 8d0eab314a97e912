// Package trivy reads Trivy JSON reports (vulnerabilities,
// misconfigurations and secrets).
package trivy

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "trivy/1"

var severityTable = finding.SeverityTable{
	Tool:    "trivy",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL": finding.SeverityCritical,
		"HIGH":     finding.SeverityHigh,
		"MEDIUM":   finding.SeverityMedium,
		"LOW":      finding.SeverityLow,
		"UNKNOWN":  finding.SeverityMedium,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for Trivy.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new Trivy adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterTrivy
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterTrivy,
		Name:        "Trivy",
		Description: "Container, dependency, IaC and secret scanner (trivy --format json)",
		Category:    finding.CategoryContainer,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"trivy"}
}

// SeverityTable returns the Trivy severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes Trivy reports by SchemaVersion plus Results.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeTrivy(data)
}

// Parse converts a Trivy report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
