// Package hadolint reads hadolint (Dockerfile linter) JSON reports.
package hadolint

import (
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// TableVersion identifies the severity mapping below.
const TableVersion = "hadolint/1"

var severityTable = finding.SeverityTable{
	Tool:    "hadolint",
	Version: TableVersion,
	Entries: map[string]finding.Severity{
		"ERROR":   finding.SeverityHigh,
		"WARNING": finding.SeverityMedium,
		"INFO":    finding.SeverityLow,
		"STYLE":   finding.SeverityLow,
	},
	Default: finding.SeverityMedium,
}

// Adapter implements ports.Adapter for hadolint.
type Adapter struct {
	parser *Parser
}

// NewAdapter creates a new hadolint adapter.
func NewAdapter() *Adapter {
	return &Adapter{parser: NewParser()}
}

// ID returns the adapter identifier.
func (a *Adapter) ID() ports.AdapterID {
	return ports.AdapterHadolint
}

// Info returns metadata about the adapter.
func (a *Adapter) Info() ports.AdapterInfo {
	return ports.AdapterInfo{
		ID:          ports.AdapterHadolint,
		Name:        "Hadolint",
		Description: "Dockerfile best-practice linter (hadolint -f json)",
		Category:    finding.CategoryContainer,
		Keywords:    a.Keywords(),
		TableVer:    TableVersion,
	}
}

// Keywords returns the filename substrings that select this adapter.
func (a *Adapter) Keywords() []string {
	return []string{"hadolint"}
}

// SeverityTable returns the hadolint severity mapping.
func (a *Adapter) SeverityTable() finding.SeverityTable {
	return severityTable
}

// Detect recognizes hadolint reports: an array of entries with code and
// level.
func (a *Adapter) Detect(data []byte) bool {
	return a.parser.looksLikeHadolint(data)
}

// Parse converts a hadolint report into raw findings.
func (a *Adapter) Parse(data []byte) (ports.ParseResult, error) {
	findings, err := a.parser.Parse(data)
	if err != nil {
		return ports.ParseResult{}, ports.NewParseError("", a.ID(), err)
	}
	return ports.ParseResult{Findings: findings}, nil
}
