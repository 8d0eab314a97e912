package conftest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Result kinds used as native severities.
const (
	KindFailure = "FAILURE"
	KindWarning = "WARNING"
)

// FileResult is the conftest outcome for one input file.
type FileResult struct {
	Filename  string            `json:"filename"`
	Namespace string            `json:"namespace"`
	Successes int               `json:"successes"`
	Failures  []json.RawMessage `json:"failures"`
	Warnings  []json.RawMessage `json:"warnings"`
}

// Result is one policy violation message.
type Result struct {
	Msg      string         `json:"msg"`
	Metadata map[string]any `json:"metadata"`
}

type fragment struct {
	Filename  string          `json:"filename"`
	Namespace string          `json:"namespace"`
	Kind      string          `json:"kind"`
	Result    json.RawMessage `json:"result"`
}

// Parser converts conftest JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new conftest parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts conftest JSON output to raw findings. Failures and
// warnings each become a finding; conftest reports no line numbers.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	if !rawjson.IsArray(data) {
		return nil, errors.New("expected a JSON array of file results")
	}

	var files []FileResult
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conftest output: %w", err)
	}

	findings := []ports.RawFinding{}
	for _, fr := range files {
		for _, group := range []struct {
			kind  string
			items []json.RawMessage
		}{
			{KindFailure, fr.Failures},
			{KindWarning, fr.Warnings},
		} {
			err := rawjson.Each(group.items, func(r Result, raw json.RawMessage) {
				findings = append(findings, p.toRawFinding(fr, group.kind, r, raw))
			})
			if err != nil {
				return nil, fmt.Errorf("%s: invalid result: %w", fr.Filename, err)
			}
		}
	}
	return findings, nil
}

func (p *Parser) toRawFinding(fr FileResult, kind string, r Result, resultRaw json.RawMessage) ports.RawFinding {
	ruleID := fr.Namespace
	if q, ok := r.Metadata["query"].(string); ok && q != "" {
		ruleID = q
	}

	raw, err := json.Marshal(fragment{
		Filename:  fr.Filename,
		Namespace: fr.Namespace,
		Kind:      kind,
		Result:    resultRaw,
	})
	if err != nil {
		raw = resultRaw
	}

	return ports.RawFinding{
		RuleID:      ruleID,
		Title:       rawjson.Truncate(rawjson.FirstLine(r.Msg), 120),
		Description: r.Msg,
		Severity:    kind,
		File:        fr.Filename,
		Category:    finding.CategoryPolicy,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeConftest(data []byte) bool {
	if !rawjson.IsArray(data) {
		return false
	}
	var peek []map[string]json.RawMessage
	if json.Unmarshal(data, &peek) != nil || len(peek) == 0 {
		return false
	}
	_, hasNamespace := peek[0]["namespace"]
	_, hasFilename := peek[0]["filename"]
	return hasNamespace && hasFilename
}
