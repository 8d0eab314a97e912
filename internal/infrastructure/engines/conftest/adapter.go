// Package conftest reads conftest (Open Policy Agent) JSON reports.
package conftest

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "conftest/1"

// conftest results carry no severity; the parser uses the result kind.
var severityTable = finding.SeverityTable{
	Tool:    "conftest",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		KindFailure: finding.SeverityHigh,
		KindWarning: finding.SeverityMedium,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for conftest.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new conftest adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterConftest
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterConftest,
		Name:        "Conftest",
		Description: "Rego policy checks over configuration files (conftest test -o json)",
		Category:    finding.CategoryPolicy,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"conftest"}
}

// SeverityTable returns the conftest severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes conftest reports: an array of per-file results with a
// namespace.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeConftest(data)
}

// Parse converts a conftest report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
