package npmaudit

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// lockfile is where npm audit findings are attributed; the report itself
// carries no file paths.
const lockfile = "package-lock.json"

// Vulnerability is one entry of the npm 7+ vulnerabilities map.
type Vulnerability struct {
	Name         string            `json:"name"`
	Severity     string            `json:"severity"`
	IsDirect     bool              `json:"isDirect"`
	Via          []json.RawMessage `json:"via"`
	Range        string            `json:"range"`
	FixAvailable json.RawMessage   `json:"fixAvailable"`
}

// Via is an advisory that makes a package vulnerable. npm also lists bare
// package names here when the vulnerability is transitive.
type Via struct {
	Source rawjson.String `json:"source"`
	Name   string         `json:"name"`
	Title  string         `json:"title"`
	URL    string         `json:"url"`
	Range  string         `json:"range"`
}

// Fix describes the upgrade npm proposes.
type Fix struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	IsSemVerMajor bool   `json:"isSemVerMajor"`
}

// Advisory is one entry of the npm 6 advisories map.
type Advisory struct {
	ID                 rawjson.String `json:"id"`
	Title              string         `json:"title"`
	ModuleName         string         `json:"module_name"`
	Severity           string         `json:"severity"`
	URL                string         `json:"url"`
	Overview           string         `json:"overview"`
	Recommendation     string         `json:"recommendation"`
	VulnerableVersions string         `json:"vulnerable_versions"`
	PatchedVersions    string         `json:"patched_versions"`
}

// Parser converts npm audit JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new npm audit parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts npm audit JSON output to raw findings. Map entries are
// visited in key order so output is stable.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal npm audit output: %w", err)
	}

	if raw, ok := doc["vulnerabilities"]; ok {
		return p.parseV2(raw)
	}
	if raw, ok := doc["advisories"]; ok {
		return p.parseV1(raw)
	}
	return nil, errors.New("missing required field \"vulnerabilities\" or \"advisories\"")
}

func (p *Parser) parseV2(data json.RawMessage) ([]ports.RawFinding, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid vulnerabilities map: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(entries))
	for _, name := range sortedKeys(entries) {
		raw := entries[name]
		var v Vulnerability
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("vulnerability %s: %w", name, err)
		}
		if v.Name == "" {
			v.Name = name
		}
		findings = append(findings, p.vulnerabilityToRawFinding(v, raw))
	}
	return findings, nil
}

func (p *Parser) vulnerabilityToRawFinding(v Vulnerability, raw json.RawMessage) ports.RawFinding {
	var advisory Via
	var transitive []string
	for _, item := range v.Via {
		var via Via
		if err := json.Unmarshal(item, &via); err == nil {
			if advisory.Title == "" {
				advisory = via
			}
			continue
		}
		var pkg string
		if err := json.Unmarshal(item, &pkg); err == nil {
			transitive = append(transitive, pkg)
		}
	}

	ruleID := "npm:" + v.Name
	if advisory.URL != "" {
		ruleID = path.Base(advisory.URL)
	} else if advisory.Source != "" {
		ruleID = string(advisory.Source)
	}

	title := advisory.Title
	desc := fmt.Sprintf("%s %s is vulnerable", v.Name, v.Range)
	if title == "" {
		title = fmt.Sprintf("Vulnerable dependency %s", v.Name)
	}
	if len(transitive) > 0 {
		desc += " through " + strings.Join(transitive, ", ")
	}

	var refs []string
	if advisory.URL != "" {
		refs = append(refs, advisory.URL)
	}

	return ports.RawFinding{
		RuleID:      ruleID,
		Title:       title,
		Description: desc,
		Severity:    v.Severity,
		File:        lockfile,
		Category:    finding.CategoryDependency,
		Remediation: fixRemediation(v.Name, v.FixAvailable),
		References:  refs,
		Raw:         raw,
	}
}

// fixRemediation renders fixAvailable, which npm writes as either a bool
// or an object naming the upgrade.
func fixRemediation(name string, data json.RawMessage) string {
	var available bool
	if err := json.Unmarshal(data, &available); err == nil {
		if available {
			return "Run `npm audit fix` to upgrade " + name + "."
		}
		return "No fix available yet; consider replacing " + name + "."
	}
	var fix Fix
	if err := json.Unmarshal(data, &fix); err == nil && fix.Name != "" {
		msg := fmt.Sprintf("Upgrade %s to %s.", fix.Name, fix.Version)
		if fix.IsSemVerMajor {
			msg += " This is a semver-major change."
		}
		return msg
	}
	return ""
}

func (p *Parser) parseV1(data json.RawMessage) ([]ports.RawFinding, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid advisories map: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(entries))
	for _, id := range sortedKeys(entries) {
		raw := entries[id]
		var a Advisory
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("advisory %s: %w", id, err)
		}
		ruleID := string(a.ID)
		if ruleID == "" {
			ruleID = id
		}
		var refs []string
		if a.URL != "" {
			refs = append(refs, a.URL)
		}
		findings = append(findings, ports.RawFinding{
			RuleID:      ruleID,
			Title:       a.Title,
			Description: fmt.Sprintf("%s %s: %s", a.ModuleName, a.VulnerableVersions, rawjson.FirstLine(a.Overview)),
			Severity:    a.Severity,
			File:        lockfile,
			Category:    finding.CategoryDependency,
			Remediation: a.Recommendation,
			References:  refs,
			Raw:         raw,
		})
	}
	return findings, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Parser) looksLikeAudit(data []byte) bool {
	var peek map[string]json.RawMessage
	if json.Unmarshal(data, &peek) != nil {
		return false
	}
	if _, ok := peek["auditReportVersion"]; ok {
		return true
	}
	_, hasAdvisories := peek["advisories"]
	_, hasMetadata := peek["metadata"]
	return hasAdvisories && hasMetadata
}
