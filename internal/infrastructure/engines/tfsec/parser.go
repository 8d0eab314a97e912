package tfsec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Result is one tfsec result.
type Result struct {
	RuleID          string   `json:"rule_id"`
	LongID          string   `json:"long_id"`
	LegacyID        string   `json:"legacy_rule_id"`
	RuleDescription string   `json:"rule_description"`
	Impact          string   `json:"impact"`
	Resolution      string   `json:"resolution"`
	Links           []string `json:"links"`
	Description     string   `json:"description"`
	Severity        string   `json:"severity"`
	Resource        string   `json:"resource"`
	Location        struct {
		Filename  string `json:"filename"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
	} `json:"location"`
}

// Parser converts tfsec JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new tfsec parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts tfsec JSON output to raw findings. tfsec writes
// "results": null for a clean scan, which is accepted; a missing key is not.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var output map[string]json.RawMessage
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tfsec output: %w", err)
	}
	rawResults, ok := output["results"]
	if !ok {
		return nil, errors.New("missing required field \"results\"")
	}

	var results []json.RawMessage
	if err := json.Unmarshal(rawResults, &results); err != nil {
		return nil, fmt.Errorf("invalid tfsec results: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(results))
	err := rawjson.Each(results, func(r Result, raw json.RawMessage) {
		findings = append(findings, p.resultToRawFinding(r, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid tfsec result: %w", err)
	}
	return findings, nil
}

func (p *Parser) resultToRawFinding(r Result, raw json.RawMessage) ports.RawFinding {
	ruleID := r.RuleID
	if ruleID == "" {
		ruleID = r.LongID
	}
	if ruleID == "" {
		ruleID = r.LegacyID
	}

	title := r.RuleDescription
	if title == "" {
		title = rawjson.FirstLine(r.Description)
	}

	desc := r.Description
	if r.Impact != "" {
		desc += "\nImpact: " + r.Impact
	}

	return ports.RawFinding{
		RuleID:      ruleID,
		Title:       title,
		Description: desc,
		Severity:    r.Severity,
		File:        r.Location.Filename,
		Line:        r.Location.StartLine,
		Category:    finding.CategoryIaC,
		Remediation: r.Resolution,
		References:  r.Links,
		Raw:         raw,
	}
}
