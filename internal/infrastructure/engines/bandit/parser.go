package bandit

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Output represents the JSON output structure from bandit.
type Output struct {
	Results *[]json.RawMessage `json:"results"`
	Errors  []json.RawMessage  `json:"errors"`
}

// Issue represents a single result in bandit output.
type Issue struct {
	Filename        string      `json:"filename"`
	LineNumber      rawjson.Int `json:"line_number"`
	IssueSeverity   string      `json:"issue_severity"`
	IssueConfidence string      `json:"issue_confidence"`
	IssueText       string      `json:"issue_text"`
	IssueCWE        struct {
		ID   rawjson.Int `json:"id"`
		Link string      `json:"link"`
	} `json:"issue_cwe"`
	TestID   string `json:"test_id"`
	TestName string `json:"test_name"`
	MoreInfo string `json:"more_info"`
	Code     string `json:"code"`
}

// Parser converts bandit JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new bandit parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts bandit JSON output to raw findings. The results key is
// required; an empty list is a clean scan.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bandit output: %w", err)
	}
	if output.Results == nil {
		return nil, errors.New("missing required field \"results\"")
	}

	findings := make([]ports.RawFinding, 0, len(*output.Results))
	err := rawjson.Each(*output.Results, func(issue Issue, raw json.RawMessage) {
		findings = append(findings, p.issueToRawFinding(issue, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid bandit result: %w", err)
	}
	return findings, nil
}

func (p *Parser) issueToRawFinding(issue Issue, raw json.RawMessage) ports.RawFinding {
	title := issue.TestName
	if title == "" {
		title = rawjson.FirstLine(issue.IssueText)
	}

	var refs []string
	if issue.MoreInfo != "" {
		refs = append(refs, issue.MoreInfo)
	}
	if issue.IssueCWE.Link != "" {
		refs = append(refs, issue.IssueCWE.Link)
	}

	return ports.RawFinding{
		RuleID:      issue.TestID,
		Title:       title,
		Description: issue.IssueText,
		Severity:    issue.IssueSeverity,
		File:        issue.Filename,
		Line:        int(issue.LineNumber),
		Category:    finding.CategorySAST,
		References:  refs,
		Raw:         raw,
	}
}
