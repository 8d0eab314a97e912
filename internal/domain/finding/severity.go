package finding

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the closed four-level scale every finding is normalized to.
// SeverityUnknown is the zero value and marks a finding whose adapter failed
// to map its native vocabulary; it must never reach risk scoring.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityUnknown:  "unknown",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

var severityValues = map[string]Severity{
	"low":      SeverityLow,
	"medium":   SeverityMedium,
	"high":     SeverityHigh,
	"critical": SeverityCritical,
}

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity converts one of the four canonical names to a Severity.
// The comparison is case-insensitive. Native scanner vocabularies must go
// through a SeverityTable instead.
func ParseSeverity(s string) (Severity, error) {
	if sev, ok := severityValues[strings.ToLower(strings.TrimSpace(s))]; ok {
		return sev, nil
	}
	return SeverityUnknown, fmt.Errorf("invalid severity: %q", s)
}

// IsValid reports whether s is one of the four canonical buckets.
func (s Severity) IsValid() bool {
	return s >= SeverityLow && s <= SeverityCritical
}

// IsAtLeast returns true if this severity is at least as severe as the other.
func (s Severity) IsAtLeast(other Severity) bool {
	return s >= other
}

// MarshalJSON implements json.Marshaler.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler so severities can key JSON maps.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Severity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	parsed, err := ParseSeverity(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// AllSeverities returns the four canonical severities in ascending order.
func AllSeverities() []Severity {
	return []Severity{
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}

// SeveritiesDescending returns the four canonical severities, most severe first.
func SeveritiesDescending() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
	}
}
