package sarif

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Log is the top-level SARIF structure.
type Log struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single run of a tool.
type Run struct {
	Tool    Tool              `json:"tool"`
	Results []json.RawMessage `json:"results"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver describes the tool driver.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// Rule describes a rule.
type Rule struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	ShortDescription     Message        `json:"shortDescription"`
	FullDescription      Message        `json:"fullDescription"`
	Help                 Message        `json:"help"`
	HelpURI              string         `json:"helpUri"`
	DefaultConfiguration RuleConfig     `json:"defaultConfiguration"`
	Properties           map[string]any `json:"properties"`
}

// RuleConfig is the default configuration for a rule.
type RuleConfig struct {
	Level string `json:"level"`
}

// Result is an individual finding.
type Result struct {
	RuleID       string         `json:"ruleId"`
	RuleIndex    *int           `json:"ruleIndex"`
	Kind         string         `json:"kind"`
	Level        string         `json:"level"`
	Message      Message        `json:"message"`
	Locations    []Location     `json:"locations"`
	Suppressions []Suppression  `json:"suppressions"`
	Properties   map[string]any `json:"properties"`
}

// Message is a message with text.
type Message struct {
	Text string `json:"text"`
}

// Location describes a location.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation is a physical file location.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation is the artifact (file) location.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region is a region within a file.
type Region struct {
	StartLine int `json:"startLine"`
}

// Suppression indicates a finding is suppressed.
type Suppression struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// Parser converts SARIF logs to RawFindings.
type Parser struct{}

// NewParser creates a new SARIF parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts a SARIF log to raw findings. Results whose kind is not a
// failure, and results with an accepted suppression, are skipped.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sarif log: %w", err)
	}
	if _, ok := doc["runs"]; !ok {
		return nil, errors.New("missing required field \"runs\"")
	}

	var log Log
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sarif log: %w", err)
	}

	findings := []ports.RawFinding{}
	for i, run := range log.Runs {
		rules := indexRules(run.Tool.Driver.Rules)
		scanner := strings.ToLower(strings.TrimSpace(run.Tool.Driver.Name))

		err := rawjson.Each(run.Results, func(r Result, raw json.RawMessage) {
			if skipResult(r) {
				return
			}
			rule := lookupRule(run.Tool.Driver.Rules, rules, r)
			findings = append(findings, p.toRawFinding(scanner, r, rule, raw))
		})
		if err != nil {
			return nil, fmt.Errorf("run %d: invalid result: %w", i, err)
		}
	}
	return findings, nil
}

func (p *Parser) toRawFinding(scanner string, r Result, rule *Rule, raw json.RawMessage) ports.RawFinding {
	var file string
	var line int
	if len(r.Locations) > 0 {
		loc := r.Locations[0].PhysicalLocation
		file = strings.TrimPrefix(loc.ArtifactLocation.URI, "file://")
		line = loc.Region.StartLine
	}

	title := rawjson.FirstLine(r.Message.Text)
	var remediation string
	var refs []string
	if rule != nil {
		switch {
		case rule.ShortDescription.Text != "":
			title = rule.ShortDescription.Text
		case rule.Name != "":
			title = rule.Name
		}
		remediation = strings.TrimSpace(rule.Help.Text)
		if rule.HelpURI != "" {
			refs = append(refs, rule.HelpURI)
		}
	}
	if title == "" {
		title = r.RuleID
	}

	return ports.RawFinding{
		Scanner:     scanner,
		RuleID:      r.RuleID,
		Title:       rawjson.Truncate(title, 120),
		Description: r.Message.Text,
		Severity:    nativeSeverity(r, rule),
		File:        file,
		Line:        line,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

// nativeSeverity prefers a numeric security-severity (CVSS) on the result
// or its rule, then the result level, then the rule's default level.
func nativeSeverity(r Result, rule *Rule) string {
	if band, ok := cvssBand(r.Properties); ok {
		return band
	}
	if rule != nil {
		if band, ok := cvssBand(rule.Properties); ok {
			return band
		}
	}
	if r.Level != "" {
		return strings.ToUpper(r.Level)
	}
	if rule != nil && rule.DefaultConfiguration.Level != "" {
		return strings.ToUpper(rule.DefaultConfiguration.Level)
	}
	// SARIF's default level is warning.
	return "WARNING"
}

func cvssBand(props map[string]any) (string, bool) {
	v, ok := props["security-severity"]
	if !ok {
		return "", false
	}
	var score float64
	switch s := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "", false
		}
		score = f
	case float64:
		score = s
	default:
		return "", false
	}
	switch {
	case score >= 9.0:
		return "CRITICAL", true
	case score >= 7.0:
		return "HIGH", true
	case score >= 4.0:
		return "MEDIUM", true
	case score > 0:
		return "LOW", true
	default:
		return "NONE", true
	}
}

func skipResult(r Result) bool {
	if r.Kind != "" && r.Kind != "fail" {
		return true
	}
	for _, s := range r.Suppressions {
		if s.Status == "" || s.Status == "accepted" {
			return true
		}
	}
	return false
}

func indexRules(rules []Rule) map[string]int {
	idx := make(map[string]int, len(rules))
	for i, r := range rules {
		if _, seen := idx[r.ID]; !seen {
			idx[r.ID] = i
		}
	}
	return idx
}

func lookupRule(rules []Rule, byID map[string]int, r Result) *Rule {
	if r.RuleIndex != nil && *r.RuleIndex >= 0 && *r.RuleIndex < len(rules) {
		return &rules[*r.RuleIndex]
	}
	if i, ok := byID[r.RuleID]; ok {
		return &rules[i]
	}
	return nil
}

func (p *Parser) looksLikeSARIF(data []byte) bool {
	var peek struct {
		Schema  string          `json:"$schema"`
		Version string          `json:"version"`
		Runs    json.RawMessage `json:"runs"`
	}
	if json.Unmarshal(data, &peek) != nil || len(peek.Runs) == 0 {
		return false
	}
	return strings.HasPrefix(peek.Version, "2.1") || strings.Contains(strings.ToLower(peek.Schema), "sarif")
}
