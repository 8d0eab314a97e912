package trivy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
	"github.com/felixgeelhaar/triagesec/pkg/redact"
)

// Parser parses Trivy JSON output.
type Parser struct {
	redactor *redact.Redactor
}

// NewParser creates a new Trivy parser.
func NewParser() *Parser {
	return &Parser{redactor: redact.New()}
}

// Report represents the top-level Trivy JSON output.
type Report struct {
	SchemaVersion int       `json:"SchemaVersion"`
	ArtifactName  string    `json:"ArtifactName"`
	ArtifactType  string    `json:"ArtifactType"`
	Results       *[]Result `json:"Results"`
}

// Result represents a single result from Trivy (per target/file).
type Result struct {
	Target            string            `json:"Target"`
	Class             string            `json:"Class"`
	Type              string            `json:"Type"`
	Vulnerabilities   []json.RawMessage `json:"Vulnerabilities"`
	Misconfigurations []json.RawMessage `json:"Misconfigurations"`
	Secrets           []json.RawMessage `json:"Secrets"`
}

// Vulnerability represents a vulnerability finding.
type Vulnerability struct {
	VulnerabilityID  string   `json:"VulnerabilityID"`
	PkgName          string   `json:"PkgName"`
	InstalledVersion string   `json:"InstalledVersion"`
	FixedVersion     string   `json:"FixedVersion"`
	Severity         string   `json:"Severity"`
	Title            string   `json:"Title"`
	Description      string   `json:"Description"`
	PrimaryURL       string   `json:"PrimaryURL"`
	References       []string `json:"References"`
}

// Misconfiguration represents an IaC misconfiguration finding.
type Misconfiguration struct {
	Type          string `json:"Type"`
	ID            string `json:"ID"`
	AVDID         string `json:"AVDID"`
	Title         string `json:"Title"`
	Description   string `json:"Description"`
	Message       string `json:"Message"`
	Resolution    string `json:"Resolution"`
	Severity      string `json:"Severity"`
	PrimaryURL    string `json:"PrimaryURL"`
	Status        string `json:"Status"`
	CauseMetadata struct {
		StartLine int `json:"StartLine"`
		EndLine   int `json:"EndLine"`
	} `json:"CauseMetadata"`
}

// Secret represents a secret finding.
type Secret struct {
	RuleID    string `json:"RuleID"`
	Category  string `json:"Category"`
	Severity  string `json:"Severity"`
	Title     string `json:"Title"`
	StartLine int    `json:"StartLine"`
	EndLine   int    `json:"EndLine"`
	Match     string `json:"Match"`
}

// osClasses are result classes describing the image's OS packages.
var osClasses = map[string]bool{"os-pkgs": true}

// Parse parses Trivy JSON output into raw findings. A report without a
// Results key is rejected; Results: null is a clean scan.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var peek map[string]json.RawMessage
	if err := json.Unmarshal(data, &peek); err != nil {
		return nil, fmt.Errorf("failed to parse trivy JSON: %w", err)
	}
	if _, ok := peek["Results"]; !ok {
		return nil, errors.New("missing required field \"Results\"")
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse trivy JSON: %w", err)
	}

	findings := []ports.RawFinding{}
	if report.Results == nil {
		return findings, nil
	}

	for _, result := range *report.Results {
		err := rawjson.Each(result.Vulnerabilities, func(v Vulnerability, raw json.RawMessage) {
			findings = append(findings, p.parseVulnerability(result, v, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("%s: invalid vulnerability: %w", result.Target, err)
		}

		err = rawjson.Each(result.Misconfigurations, func(m Misconfiguration, raw json.RawMessage) {
			if m.Status == "PASS" {
				return
			}
			findings = append(findings, p.parseMisconfiguration(result.Target, m, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("%s: invalid misconfiguration: %w", result.Target, err)
		}

		err = rawjson.Each(result.Secrets, func(s Secret, raw json.RawMessage) {
			findings = append(findings, p.parseSecret(result.Target, s, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("%s: invalid secret: %w", result.Target, err)
		}
	}

	return findings, nil
}

func (p *Parser) parseVulnerability(result Result, v Vulnerability, raw json.RawMessage) ports.RawFinding {
	title := v.Title
	if title == "" {
		title = fmt.Sprintf("%s in %s", v.VulnerabilityID, v.PkgName)
	}

	category := finding.CategoryDependency
	if osClasses[result.Class] {
		category = finding.CategoryContainer
	}

	var remediation string
	if v.FixedVersion != "" {
		remediation = fmt.Sprintf("Upgrade %s from %s to %s.", v.PkgName, v.InstalledVersion, v.FixedVersion)
	}

	refs := make([]string, 0, len(v.References)+1)
	if v.PrimaryURL != "" {
		refs = append(refs, v.PrimaryURL)
	}
	refs = append(refs, v.References...)

	return ports.RawFinding{
		RuleID:      v.VulnerabilityID,
		Title:       title,
		Description: v.Description,
		Severity:    v.Severity,
		File:        result.Target,
		Category:    category,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) parseMisconfiguration(target string, m Misconfiguration, raw json.RawMessage) ports.RawFinding {
	ruleID := m.AVDID
	if ruleID == "" {
		ruleID = m.ID
	}

	desc := m.Message
	if desc == "" {
		desc = m.Description
	}

	var refs []string
	if m.PrimaryURL != "" {
		refs = append(refs, m.PrimaryURL)
	}

	return ports.RawFinding{
		RuleID:      ruleID,
		Title:       m.Title,
		Description: desc,
		Severity:    m.Severity,
		File:        target,
		Line:        m.CauseMetadata.StartLine,
		Category:    finding.CategoryIaC,
		Remediation: m.Resolution,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) parseSecret(target string, s Secret, raw json.RawMessage) ports.RawFinding {
	if masked, err := p.redactor.RedactJSONFields(raw, "Match", "Code"); err == nil {
		raw = masked
	}

	return ports.RawFinding{
		RuleID:      s.RuleID,
		Title:       s.Title,
		Description: s.Category,
		Severity:    s.Severity,
		File:        target,
		Line:        s.StartLine,
		Category:    finding.CategorySecret,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeTrivy(data []byte) bool {
	var peek struct {
		SchemaVersion int             `json:"SchemaVersion"`
		Results       json.RawMessage `json:"Results"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return false
	}
	return peek.SchemaVersion > 0 && peek.Results != nil
}
