package hadolint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Issue is one hadolint diagnostic.
type Issue struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file"`
	Level   string `json:"level"`
}

// Parser converts hadolint JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new hadolint parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts hadolint JSON output to raw findings.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	if rawjson.IsEmpty(data) {
		return []ports.RawFinding{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hadolint output: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(items))
	err := rawjson.Each(items, func(issue Issue, raw json.RawMessage) {
		findings = append(findings, ports.RawFinding{
			RuleID:      issue.Code,
			Title:       rawjson.Truncate(rawjson.FirstLine(issue.Message), 120),
			Description: issue.Message,
			Severity:    issue.Level,
			File:        issue.File,
			Line:        issue.Line,
			Category:    finding.CategoryContainer,
			References:  ruleReference(issue.Code),
			Raw:         raw,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("invalid hadolint entry: %w", err)
	}
	return findings, nil
}

// ruleReference links DL rules to the hadolint wiki and SC rules to the
// ShellCheck wiki.
func ruleReference(code string) []string {
	switch {
	case strings.HasPrefix(code, "DL"):
		return []string{"https://github.com/hadolint/hadolint/wiki/" + code}
	case strings.HasPrefix(code, "SC"):
		return []string{"https://www.shellcheck.net/wiki/" + code}
	default:
		return nil
	}
}

func (p *Parser) looksLikeHadolint(data []byte) bool {
	if !rawjson.IsArray(data) {
		return false
	}
	var peek []map[string]json.RawMessage
	if json.Unmarshal(data, &peek) != nil || len(peek) == 0 {
		return false
	}
	_, hasCode := peek[0]["code"]
	_, hasLevel := peek[0]["level"]
	return hasCode && hasLevel
}
