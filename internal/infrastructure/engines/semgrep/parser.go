package semgrep

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Output represents the JSON output from semgrep.
type Output struct {
	Results []json.RawMessage `json:"results"`
	Version string            `json:"version"`
}

// Position is a start or end location within a file.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Result represents a single finding from semgrep.
type Result struct {
	CheckID string   `json:"check_id"`
	Path    string   `json:"path"`
	Start   Position `json:"start"`
	End     Position `json:"end"`
	Extra   Extra    `json:"extra"`
}

// Extra carries the rule message and metadata.
type Extra struct {
	Message  string   `json:"message"`
	Severity string   `json:"severity"`
	Fix      string   `json:"fix"`
	Metadata Metadata `json:"metadata"`
}

// Metadata is the subset of rule metadata used for triage.
type Metadata struct {
	CWE        stringList `json:"cwe"`
	References stringList `json:"references"`
	Source     string     `json:"source"`
	Category   string     `json:"category"`
}

// stringList accepts either a single string or an array of strings.
type stringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *stringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*l = []string{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		*l = nil
		return nil
	}
	*l = many
	return nil
}

// Parser converts semgrep JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new semgrep parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts semgrep JSON output to raw findings.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal semgrep output: %w", err)
	}
	if _, ok := doc["results"]; !ok {
		return nil, errors.New("missing required field \"results\"")
	}

	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal semgrep output: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(output.Results))
	err := rawjson.Each(output.Results, func(r Result, raw json.RawMessage) {
		findings = append(findings, p.toRawFinding(r, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid semgrep result: %w", err)
	}
	return findings, nil
}

func (p *Parser) toRawFinding(r Result, raw json.RawMessage) ports.RawFinding {
	refs := make([]string, 0, len(r.Extra.Metadata.References)+1)
	refs = append(refs, r.Extra.Metadata.References...)
	if r.Extra.Metadata.Source != "" {
		refs = append(refs, r.Extra.Metadata.Source)
	}

	var remediation string
	if r.Extra.Fix != "" {
		remediation = "Suggested fix: " + r.Extra.Fix
	}

	desc := r.Extra.Message
	if len(r.Extra.Metadata.CWE) > 0 {
		desc += "\n" + r.Extra.Metadata.CWE[0]
	}

	return ports.RawFinding{
		RuleID:      r.CheckID,
		Title:       rawjson.Truncate(rawjson.FirstLine(r.Extra.Message), 120),
		Description: desc,
		Severity:    r.Extra.Severity,
		File:        r.Path,
		Line:        r.Start.Line,
		Category:    finding.CategorySAST,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeSemgrep(data []byte) bool {
	var peek struct {
		Results []struct {
			CheckID string `json:"check_id"`
		} `json:"results"`
		Paths json.RawMessage `json:"paths"`
	}
	if json.Unmarshal(data, &peek) != nil {
		return false
	}
	if len(peek.Results) > 0 {
		return peek.Results[0].CheckID != ""
	}
	return len(peek.Paths) > 0
}
