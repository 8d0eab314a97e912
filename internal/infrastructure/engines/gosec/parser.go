package gosec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Output represents the JSON output structure from gosec.
type Output struct {
	Issues []json.RawMessage `json:"Issues"`
	Stats  Stats             `json:"Stats"`
}

// Issue represents a single issue in gosec output.
type Issue struct {
	Severity   string      `json:"severity"`
	Confidence string      `json:"confidence"`
	Cwe        Cwe         `json:"cwe"`
	RuleID     string      `json:"rule_id"`
	Details    string      `json:"details"`
	File       string      `json:"file"`
	Code       string      `json:"code"`
	Line       rawjson.Int `json:"line"`
	Nosec      bool        `json:"nosec"`
}

// Cwe represents CWE information.
type Cwe struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Stats represents scanning statistics.
type Stats struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
	Nosec int `json:"nosec"`
	Found int `json:"found"`
}

// criticalRules are raised above gosec's own HIGH: hardcoded credentials,
// SQL built from strings, and subprocesses launched with variable input.
var criticalRules = map[string]bool{
	"G101": true,
	"G201": true,
	"G202": true,
	"G204": true,
}

var ruleTitles = map[string]string{
	"G101": "Hardcoded credentials",
	"G102": "Bind to all interfaces",
	"G103": "Audit use of unsafe block",
	"G104": "Audit errors not checked",
	"G106": "SSH InsecureIgnoreHostKey",
	"G107": "URL provided to HTTP request as taint input",
	"G108": "Profiling endpoint automatically exposed",
	"G109": "Integer overflow",
	"G110": "Decompression bomb",
	"G201": "SQL query construction using format string",
	"G202": "SQL query construction using string concatenation",
	"G203": "Template injection",
	"G204": "Subprocess launched with variable",
	"G301": "Poor file permissions",
	"G302": "Poor file permissions on chmod",
	"G303": "Creating tempfile with predictable path",
	"G304": "File path provided as taint input",
	"G305": "File traversal when extracting zip",
	"G306": "Poor file permissions on WriteFile",
	"G307": "Defer in loop",
	"G401": "Use of weak cryptographic primitive",
	"G402": "TLS InsecureSkipVerify",
	"G403": "RSA key smaller than 2048 bits",
	"G404": "Insecure random number source",
	"G501": "Import blocklist: crypto/md5",
	"G502": "Import blocklist: crypto/des",
	"G503": "Import blocklist: crypto/rc4",
	"G504": "Import blocklist: net/http/cgi",
	"G505": "Import blocklist: crypto/sha1",
}

// Parser converts gosec JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new gosec parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts gosec JSON output to raw findings. Issues annotated with
// #nosec are skipped.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gosec output: %w", err)
	}
	if _, ok := doc["Issues"]; !ok {
		return nil, errors.New("missing required field \"Issues\"")
	}

	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gosec output: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(output.Issues))
	err := rawjson.Each(output.Issues, func(issue Issue, raw json.RawMessage) {
		if issue.Nosec {
			return
		}
		findings = append(findings, p.toRawFinding(issue, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid gosec issue: %w", err)
	}
	return findings, nil
}

func (p *Parser) toRawFinding(issue Issue, raw json.RawMessage) ports.RawFinding {
	title := ruleTitles[issue.RuleID]
	if title == "" {
		title = rawjson.FirstLine(issue.Details)
	}

	severity := issue.Severity
	if criticalRules[strings.ToUpper(issue.RuleID)] {
		severity = "CRITICAL"
	}

	var refs []string
	if issue.Cwe.URL != "" {
		refs = append(refs, issue.Cwe.URL)
	}

	desc := issue.Details
	if issue.Cwe.ID != "" {
		desc += fmt.Sprintf(" (CWE-%s)", issue.Cwe.ID)
	}

	return ports.RawFinding{
		RuleID:      issue.RuleID,
		Title:       title,
		Description: desc,
		Severity:    severity,
		File:        issue.File,
		Line:        int(issue.Line),
		Category:    finding.CategorySAST,
		References:  refs,
		Raw:         raw,
	}
}

// ParseStats extracts statistics from gosec output.
func (p *Parser) ParseStats(data []byte) (Stats, error) {
	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return Stats{}, fmt.Errorf("failed to unmarshal gosec output: %w", err)
	}
	return output.Stats, nil
}

func (p *Parser) looksLikeGosec(data []byte) bool {
	var peek map[string]json.RawMessage
	if json.Unmarshal(data, &peek) != nil {
		return false
	}
	_, hasIssues := peek["Issues"]
	_, hasStats := peek["Stats"]
	return hasIssues && hasStats
}
