package finding

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Finding is one normalized issue reported by a scanner.
// It is immutable after creation: all fields are private and the raw
// scanner fragment is copied on the way in and on the way out.
type Finding struct {
	scanner     string
	ruleID      string
	title       string
	location    Location
	severity    Severity
	category    Category
	description string
	remediation string
	references  []string
	raw         json.RawMessage
}

// Option is a functional option for creating findings.
type Option func(*Finding)

// New creates a finding with its required fields. The scanner identifier is
// lowercased so it stays stable regardless of how adapters spell it.
func New(scanner, ruleID, title string, severity Severity, location Location, opts ...Option) *Finding {
	f := &Finding{
		scanner:  strings.ToLower(strings.TrimSpace(scanner)),
		ruleID:   strings.TrimSpace(ruleID),
		title:    strings.TrimSpace(title),
		location: location,
		severity: severity,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithDescription sets the free-text detail.
func WithDescription(desc string) Option {
	return func(f *Finding) { f.description = strings.TrimSpace(desc) }
}

// WithRemediation sets the fix hint reported by the scanner, if any.
func WithRemediation(hint string) Option {
	return func(f *Finding) { f.remediation = strings.TrimSpace(hint) }
}

// WithCategory sets the scanner category.
func WithCategory(c Category) Option {
	return func(f *Finding) { f.category = c }
}

// WithReferences sets documentation links for the rule.
func WithReferences(refs ...string) Option {
	return func(f *Finding) {
		for _, r := range refs {
			if r = strings.TrimSpace(r); r != "" {
				f.references = append(f.references, r)
			}
		}
	}
}

// WithRaw retains the original scanner fragment. The bytes are compacted
// and copied so later mutation of the input cannot reach the finding.
func WithRaw(raw []byte) Option {
	return func(f *Finding) {
		if len(raw) == 0 {
			return
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			f.raw = append(json.RawMessage(nil), raw...)
			return
		}
		f.raw = buf.Bytes()
	}
}

// Scanner returns the lowercase identifier of the producing tool.
func (f *Finding) Scanner() string { return f.scanner }

// RuleID returns the tool-specific rule identifier; may be empty.
func (f *Finding) RuleID() string { return f.ruleID }

// Title returns the short summary.
func (f *Finding) Title() string { return f.title }

// Location returns the repository location.
func (f *Finding) Location() Location { return f.location }

// File returns the repository-relative path, or "".
func (f *Finding) File() string { return f.location.File() }

// Line returns the 1-based line, or 0.
func (f *Finding) Line() int { return f.location.Line() }

// Severity returns the normalized severity.
func (f *Finding) Severity() Severity { return f.severity }

// Category returns the scanner category.
func (f *Finding) Category() Category { return f.category }

// Description returns the free-text detail.
func (f *Finding) Description() string { return f.description }

// Remediation returns the scanner-provided fix hint.
func (f *Finding) Remediation() string { return f.remediation }

// References returns a copy of the documentation links.
func (f *Finding) References() []string {
	return append([]string(nil), f.references...)
}

// Raw returns a copy of the original scanner fragment.
func (f *Finding) Raw() json.RawMessage {
	if f.raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), f.raw...)
}

// Key returns the deduplication key.
func (f *Finding) Key() Key {
	rule := f.ruleID
	if rule == "" {
		rule = f.title
	}
	return Key{
		Scanner: f.scanner,
		Rule:    rule,
		File:    f.location.File(),
		Line:    f.location.Line(),
	}
}

// ID returns a deterministic identifier derived from the dedup key.
func (f *Finding) ID() string { return f.Key().Digest() }

// IsHighImpact reports whether the finding is critical or high.
func (f *Finding) IsHighImpact() bool { return f.severity.IsAtLeast(SeverityHigh) }

type findingJSON struct {
	ID          string          `json:"id"`
	Scanner     string          `json:"scanner"`
	RuleID      string          `json:"rule_id"`
	Title       string          `json:"title"`
	File        string          `json:"file"`
	Line        int             `json:"line"`
	Severity    Severity        `json:"severity"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	Remediation string          `json:"remediation,omitempty"`
	References  []string        `json:"references,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f *Finding) MarshalJSON() ([]byte, error) {
	return json.Marshal(findingJSON{
		ID:          f.ID(),
		Scanner:     f.scanner,
		RuleID:      f.ruleID,
		Title:       f.title,
		File:        f.location.File(),
		Line:        f.location.Line(),
		Severity:    f.severity,
		Category:    f.category,
		Description: f.description,
		Remediation: f.remediation,
		References:  f.references,
		Raw:         f.raw,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var fj findingJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return err
	}
	*f = *New(fj.Scanner, fj.RuleID, fj.Title, fj.Severity, NewLocation(fj.File, fj.Line),
		WithDescription(fj.Description),
		WithRemediation(fj.Remediation),
		WithCategory(fj.Category),
		WithReferences(fj.References...),
		WithRaw(fj.Raw),
	)
	return nil
}
