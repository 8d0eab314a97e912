package gitleaks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
	"github.com/felixgeelhaar/triagesec/pkg/redact"
)

// Leak represents a single finding in gitleaks output.
type Leak struct {
	Description string   `json:"Description"`
	StartLine   int      `json:"StartLine"`
	EndLine     int      `json:"EndLine"`
	Match       string   `json:"Match"`
	Secret      string   `json:"Secret"`
	File        string   `json:"File"`
	Commit      string   `json:"Commit"`
	Entropy     float64  `json:"Entropy"`
	Tags        []string `json:"Tags"`
	RuleID      string   `json:"RuleID"`
	Fingerprint string   `json:"Fingerprint"`
}

// criticalRules expose credentials that grant direct access to cloud
// accounts, hosts or data stores.
var criticalRules = map[string]bool{
	"aws-access-key-id":       true,
	"aws-access-token":        true,
	"aws-secret-access-key":   true,
	"gcp-api-key":             true,
	"gcp-service-account":     true,
	"azure-storage-key":       true,
	"private-key":             true,
	"rsa-private-key":         true,
	"ssh-private-key":         true,
	"openssh-private-key":     true,
	"pgp-private-key":         true,
	"github-pat":              true,
	"github-fine-grained-pat": true,
	"github-oauth":            true,
	"gitlab-pat":              true,
	"stripe-access-token":     true,
	"mongodb-uri":             true,
	"postgres-uri":            true,
	"mysql-uri":               true,
}

// Parser converts gitleaks JSON output to RawFindings.
type Parser struct {
	redactor *redact.Redactor
}

// NewParser creates a new gitleaks parser.
func NewParser() *Parser {
	return &Parser{redactor: redact.New()}
}

// Parse converts gitleaks JSON output to raw findings. gitleaks writes
// "null" or an empty array when nothing leaked.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	if rawjson.IsEmpty(data) {
		return []ports.RawFinding{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks output: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(items))
	err := rawjson.Each(items, func(l Leak, raw json.RawMessage) {
		findings = append(findings, p.toRawFinding(l, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid gitleaks entry: %w", err)
	}
	return findings, nil
}

func (p *Parser) toRawFinding(l Leak, raw json.RawMessage) ports.RawFinding {
	title := l.Description
	if title == "" {
		title = fmt.Sprintf("Secret detected: %s", l.RuleID)
	}

	desc := title
	if l.Commit != "" {
		desc += fmt.Sprintf("\nCommit: %s", l.Commit)
	}
	if l.Entropy > 0 {
		desc += fmt.Sprintf("\nEntropy: %.2f", l.Entropy)
	}

	if masked, err := p.redactor.RedactJSONFields(raw, "Secret", "Match", "Line"); err == nil {
		raw = masked
	}

	return ports.RawFinding{
		RuleID:      l.RuleID,
		Title:       title,
		Description: desc,
		Severity:    nativeSeverity(l.RuleID),
		File:        l.File,
		Line:        l.StartLine,
		Category:    finding.CategorySecret,
		Remediation: "Revoke and rotate the credential, then remove it from the file and from git history.",
		Raw:         raw,
	}
}

func nativeSeverity(ruleID string) string {
	if criticalRules[strings.ToLower(ruleID)] {
		return "CRITICAL"
	}
	return "SECRET"
}

func (p *Parser) looksLikeGitleaks(data []byte) bool {
	if !rawjson.IsArray(data) {
		return false
	}
	var peek []map[string]json.RawMessage
	if json.Unmarshal(data, &peek) != nil || len(peek) == 0 {
		return false
	}
	_, hasRule := peek[0]["RuleID"]
	_, hasSecret := peek[0]["Secret"]
	return hasRule && hasSecret
}
