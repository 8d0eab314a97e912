package kics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Query is one KICS query with the files it matched.
type Query struct {
	QueryName   string            `json:"query_name"`
	QueryID     string            `json:"query_id"`
	QueryURL    string            `json:"query_url"`
	Severity    string            `json:"severity"`
	Platform    string            `json:"platform"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	CWE         rawjson.String    `json:"cwe"`
	Files       []json.RawMessage `json:"files"`
}

// File is one location a query matched.
type File struct {
	FileName      string      `json:"file_name"`
	Line          rawjson.Int `json:"line"`
	IssueType     string      `json:"issue_type"`
	SearchKey     string      `json:"search_key"`
	ExpectedValue string      `json:"expected_value"`
	ActualValue   string      `json:"actual_value"`
}

// fragment is the retained raw form of one finding: the query identity
// plus the untouched file entry.
type fragment struct {
	QueryID   string          `json:"query_id"`
	QueryName string          `json:"query_name"`
	Severity  string          `json:"severity"`
	Platform  string          `json:"platform,omitempty"`
	File      json.RawMessage `json:"file"`
}

// Parser converts KICS JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new KICS parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts KICS JSON output to raw findings, one per (query, file)
// pair. KICS can list the same file entry more than once; repeats are kept
// here and collapsed by deduplication.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kics output: %w", err)
	}
	rawQueries, ok := doc["queries"]
	if !ok {
		// Some older builds exported the key capitalized.
		rawQueries, ok = doc["Queries"]
	}
	if !ok {
		return nil, errors.New("missing required field \"queries\"")
	}

	var queries []Query
	if err := json.Unmarshal(rawQueries, &queries); err != nil {
		return nil, fmt.Errorf("invalid kics queries: %w", err)
	}

	findings := []ports.RawFinding{}
	for _, q := range queries {
		err := rawjson.Each(q.Files, func(f File, raw json.RawMessage) {
			findings = append(findings, p.toRawFinding(q, f, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: invalid file entry: %w", q.QueryID, err)
		}
	}
	return findings, nil
}

func (p *Parser) toRawFinding(q Query, f File, fileRaw json.RawMessage) ports.RawFinding {
	desc := strings.TrimSpace(q.Description)
	if f.ActualValue != "" {
		if desc != "" {
			desc += "\n"
		}
		desc += "Actual: " + f.ActualValue
	}

	var remediation string
	if f.ExpectedValue != "" {
		remediation = "Expected: " + f.ExpectedValue
	}

	var refs []string
	if q.QueryURL != "" {
		refs = append(refs, q.QueryURL)
	}

	raw, err := json.Marshal(fragment{
		QueryID:   q.QueryID,
		QueryName: q.QueryName,
		Severity:  q.Severity,
		Platform:  q.Platform,
		File:      fileRaw,
	})
	if err != nil {
		raw = fileRaw
	}

	return ports.RawFinding{
		RuleID:      q.QueryID,
		Title:       q.QueryName,
		Description: desc,
		Severity:    q.Severity,
		File:        f.FileName,
		Line:        int(f.Line),
		Category:    finding.CategoryIaC,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeKics(data []byte) bool {
	var peek struct {
		Version string `json:"kics_version"`
	}
	return json.Unmarshal(data, &peek) == nil && peek.Version != ""
}
