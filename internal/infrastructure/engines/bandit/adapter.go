// Package bandit reads Bandit (Python SAST) JSON reports.
package bandit

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "bandit/1"

var severityTable = finding.SeverityTable{
	Tool:    "bandit",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"HIGH":      finding.SeverityHigh,
		"MEDIUM":    finding.SeverityMedium,
		"LOW":       finding.SeverityLow,
		"UNDEFINED": finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for bandit.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new bandit adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterBandit
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterBandit,
		Name:        "Bandit",
		Description: "Python static analysis (bandit -f json)",
		Category:    finding.CategorySAST,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"bandit"}
}

// SeverityTable returns the bandit severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Parse converts a bandit report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
