package grype

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Document is the top-level grype JSON output.
type Document struct {
	Matches    []json.RawMessage `json:"matches"`
	Descriptor Descriptor        `json:"descriptor"`
}

// Descriptor identifies the tool that wrote the document.
type Descriptor struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Match pairs a vulnerability with the package it was found in.
type Match struct {
	Vulnerability Vulnerability `json:"vulnerability"`
	Artifact      Artifact      `json:"artifact"`
}

// Vulnerability describes one advisory.
type Vulnerability struct {
	ID          string   `json:"id"`
	DataSource  string   `json:"dataSource"`
	Severity    string   `json:"severity"`
	URLs        []string `json:"urls"`
	Description string   `json:"description"`
	Fix         Fix      `json:"fix"`
}

// Fix lists the versions that resolve a vulnerability.
type Fix struct {
	Versions []string `json:"versions"`
	State    string   `json:"state"`
}

// Artifact is the affected package.
type Artifact struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Type      string     `json:"type"`
	Locations []Location `json:"locations"`
}

// Location is where the package was discovered.
type Location struct {
	Path string `json:"path"`
}

// osPackageTypes are distro packages; everything else is a language
// dependency.
var osPackageTypes = map[string]bool{
	"apk":     true,
	"deb":     true,
	"rpm":     true,
	"alpm":    true,
	"portage": true,
}

// Parser converts grype JSON output to RawFindings.
type Parser struct{}

// NewParser creates a new grype parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts grype JSON output to raw findings.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grype output: %w", err)
	}
	if _, ok := doc["matches"]; !ok {
		return nil, errors.New("missing required field \"matches\"")
	}

	var out Document
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grype output: %w", err)
	}

	findings := make([]ports.RawFinding, 0, len(out.Matches))
	err := rawjson.Each(out.Matches, func(m Match, raw json.RawMessage) {
		findings = append(findings, p.toRawFinding(m, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid grype match: %w", err)
	}
	return findings, nil
}

func (p *Parser) toRawFinding(m Match, raw json.RawMessage) ports.RawFinding {
	v := m.Vulnerability
	a := m.Artifact

	var file string
	if len(a.Locations) > 0 {
		file = a.Locations[0].Path
	}

	category := finding.CategoryDependency
	if osPackageTypes[strings.ToLower(a.Type)] {
		category = finding.CategoryContainer
	}

	var remediation string
	if len(v.Fix.Versions) > 0 {
		remediation = fmt.Sprintf("Upgrade %s from %s to %s.", a.Name, a.Version, strings.Join(v.Fix.Versions, " or "))
	} else if v.Fix.State == "wont-fix" {
		remediation = fmt.Sprintf("The maintainers will not fix %s; consider replacing the package.", a.Name)
	}

	refs := make([]string, 0, len(v.URLs)+1)
	if v.DataSource != "" {
		refs = append(refs, v.DataSource)
	}
	for _, u := range v.URLs {
		if u != v.DataSource {
			refs = append(refs, u)
		}
	}

	desc := v.Description
	if desc == "" {
		desc = fmt.Sprintf("%s %s is affected by %s", a.Name, a.Version, v.ID)
	}

	return ports.RawFinding{
		RuleID:      v.ID,
		Title:       fmt.Sprintf("%s in %s@%s", v.ID, a.Name, a.Version),
		Description: desc,
		Severity:    v.Severity,
		File:        file,
		Category:    category,
		Remediation: remediation,
		References:  refs,
		Raw:         raw,
	}
}

func (p *Parser) looksLikeGrype(data []byte) bool {
	var peek struct {
		Matches    json.RawMessage `json:"matches"`
		Descriptor Descriptor      `json:"descriptor"`
	}
	if json.Unmarshal(data, &peek) != nil {
		return false
	}
	return len(peek.Matches) > 0 && strings.EqualFold(peek.Descriptor.Name, "grype")
}
