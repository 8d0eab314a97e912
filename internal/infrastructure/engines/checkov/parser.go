package checkov

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Report is one framework section of checkov output. Checkov writes a
// single object for one framework and an array when several ran.
type Report struct {
	CheckType string   `json:"check_type"`
	Results   *Results `json:"results"`
	Summary   *Summary `json:"summary"`

	// Present when nothing was scanned: checkov emits a bare summary.
	Passed *int `json:"passed"`
	Failed *int `json:"failed"`
}

// Results holds the per-check outcome lists.
type Results struct {
	FailedChecks []json.RawMessage `json:"failed_checks"`
}

// Summary holds checkov's own counters.
type Summary struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Check is one failed check.
type Check struct {
	CheckID       string         `json:"check_id"`
	BCCheckID     string         `json:"bc_check_id"`
	CheckName     string         `json:"check_name"`
	FilePath      string         `json:"file_path"`
	RepoFilePath  string         `json:"repo_file_path"`
	FileLineRange []rawjson.Int  `json:"file_line_range"`
	Resource      string         `json:"resource"`
	Severity      rawjson.String `json:"severity"`
	Guideline     string         `json:"guideline"`
	Description   string         `json:"description"`
}

// Parser converts checkov JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new checkov parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts checkov JSON output to raw findings.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	reports, err := p.decodeReports(data)
	if err != nil {
		return nil, err
	}

	var findings []ports.RawFinding
	for i, r := range reports {
		if r.Results == nil {
			if r.Summary == nil && r.Passed == nil && r.Failed == nil {
				return nil, fmt.Errorf("report %d: missing required field \"results\"", i)
			}
			continue
		}
		err := rawjson.Each(r.Results.FailedChecks, func(c Check, raw json.RawMessage) {
			findings = append(findings, p.checkToRawFinding(c, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("report %d: invalid failed check: %w", i, err)
		}
	}
	if findings == nil {
		findings = []ports.RawFinding{}
	}
	return findings, nil
}

func (p *Parser) decodeReports(data []byte) ([]Report, error) {
	if rawjson.IsArray(data) {
		var reports []Report
		if err := json.Unmarshal(data, &reports); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checkov output: %w", err)
		}
		return reports, nil
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkov output: %w", err)
	}
	if report == (Report{}) {
		return nil, errors.New("missing required field \"results\"")
	}
	return []Report{report}, nil
}

func (p *Parser) checkToRawFinding(c Check, raw json.RawMessage) ports.RawFinding {
	file := c.RepoFilePath
	if file == "" {
		file = c.FilePath
	}
	file = strings.TrimPrefix(file, "/")

	line := 0
	if len(c.FileLineRange) > 0 {
		line = int(c.FileLineRange[0])
	}

	desc := c.Description
	if desc == "" && c.Resource != "" {
		desc = "Resource: " + c.Resource
	}

	var remediation string
	var refs []string
	if c.Guideline != "" {
		remediation = "Follow the Checkov guideline: " + c.Guideline
		refs = append(refs, c.Guideline)
	}

	return ports.RawFinding{
		RuleID:      c.CheckID,
		Title:       c.CheckName,
		Description: desc,
		Severity:    string(c.Severity),
		File:        file,
		Line:        line,
		Category:    finding.CategoryIaC,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeCheckov(data []byte) bool {
	reports, err := p.decodeReports(data)
	if err != nil || len(reports) == 0 {
		return false
	}
	return reports[0].CheckType != ""
}
