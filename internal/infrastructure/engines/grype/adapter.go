// Package grype reads Anchore grype JSON reports.
package grype

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "grype/1"

var severityTable = finding.SeverityTable{
	Tool:    "grype",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"CRITICAL":   finding.SeverityCritical,
		"HIGH":       finding.SeverityHigh,
		"MEDIUM":     finding.SeverityMedium,
		"LOW":        finding.SeverityLow,
		"NEGLIGIBLE": finding.SeverityLow,
		"UNKNOWN":    finding.SeverityMedium,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for grype.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new grype adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterGrype
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterGrype,
		Name:        "Grype",
		Description: "Image and filesystem vulnerability matching (grype -o json)",
		Category:    finding.CategoryDependency,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"grype"}
}

// SeverityTable returns the grype severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes grype reports by matches plus a grype descriptor.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeGrype(data)
}

// Parse converts a grype report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
