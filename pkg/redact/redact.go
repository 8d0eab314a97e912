// Package redact masks secrets in rendered source lines and retained
// scanner fragments.
package redact

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// RedactedPlaceholder is the default placeholder for redacted content.
	RedactedPlaceholder = "[REDACTED]"

	// RedactedPartialPrefix shows the first few characters.
	RedactedPartialPrefix = 4

	// RedactedPartialSuffix shows the last few characters.
	RedactedPartialSuffix = 4
)

// Redactor masks secrets with configurable options.
type Redactor struct {
	placeholder string
	showPartial bool
	prefixLen   int
	suffixLen   int
	patterns    []*regexp.Regexp
}

// Option configures the redactor.
type Option func(*Redactor)

// WithPlaceholder sets a custom placeholder string.
func WithPlaceholder(placeholder string) Option {
	return func(r *Redactor) {
		r.placeholder = placeholder
	}
}

// WithPartialDisplay shows first and last characters of the secret.
func WithPartialDisplay(prefixLen, suffixLen int) Option {
	return func(r *Redactor) {
		r.showPartial = true
		r.prefixLen = prefixLen
		r.suffixLen = suffixLen
	}
}

// WithPatterns adds regex patterns for automatic redaction.
func WithPatterns(patterns ...*regexp.Regexp) Option {
	return func(r *Redactor) {
		r.patterns = append(r.patterns, patterns...)
	}
}

// New creates a new Redactor with the given options.
func New(opts ...Option) *Redactor {
	r := &Redactor{
		placeholder: RedactedPlaceholder,
		prefixLen:   RedactedPartialPrefix,
		suffixLen:   RedactedPartialSuffix,
		patterns:    defaultPatterns(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// defaultPatterns returns common secret patterns.
func defaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// AWS access key ID and secret access key
		regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key['":\s]*[=:\s]['"]?([A-Za-z0-9/+=]{40})['"]?`),
		// GitHub and GitLab tokens
		regexp.MustCompile(`ghp_[A-Za-z0-9]{36}`),
		regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
		regexp.MustCompile(`glpat-[A-Za-z0-9_-]{20,}`),
		// Generic API keys
		regexp.MustCompile(`(?i)(api[_-]?key|apikey)['":\s]*[=:\s]['"]?([A-Za-z0-9_-]{20,})['"]?`),
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_.-]{20,}`),
		// Private key headers
		regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP |)PRIVATE KEY-----`),
		regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`),
		regexp.MustCompile(`xox[baprs]-[0-9A-Za-z-]+`),
	}
}

// Redact replaces a secret value with its masked form.
func (r *Redactor) Redact(secret string) string {
	if secret == "" {
		return ""
	}
	if r.showPartial {
		return r.partialRedact(secret)
	}
	return r.placeholder
}

func (r *Redactor) partialRedact(secret string) string {
	length := len(secret)
	if length <= r.prefixLen+r.suffixLen {
		return r.placeholder
	}
	return secret[:r.prefixLen] + strings.Repeat("*", length-r.prefixLen-r.suffixLen) + secret[length-r.suffixLen:]
}

// RedactString masks every substring matching a known secret pattern.
func (r *Redactor) RedactString(input string) string {
	result := input
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllStringFunc(result, r.Redact)
	}
	return result
}

var assignment = regexp.MustCompile(`^(\s*[^=:\s]+\s*[:=]\s*)(.+)$`)

// MaskLine masks the value of a line that is known to hold a secret.
// Known secrets are replaced first. When the line looks like an assignment
// (key = value, key: value) only the value side is masked; otherwise the
// whole line after its indentation is masked.
func (r *Redactor) MaskLine(line string, secrets ...string) string {
	masked := line
	replaced := false
	for _, s := range secrets {
		if s != "" && strings.Contains(masked, s) {
			masked = strings.ReplaceAll(masked, s, r.Redact(s))
			replaced = true
		}
	}
	if replaced {
		return masked
	}
	if m := assignment.FindStringSubmatch(masked); m != nil {
		return m[1] + r.placeholder
	}
	trimmed := strings.TrimLeft(masked, " \t")
	if trimmed == "" {
		return masked
	}
	return masked[:len(masked)-len(trimmed)] + r.placeholder
}

// RedactJSONFields masks the named top-level fields of a JSON object.
// String values are redacted; structured values are replaced by the
// placeholder. Field names match case-insensitively. The input is
// returned unchanged when it is not an object or no field matched.
func (r *Redactor) RedactJSONFields(raw []byte, fields ...string) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, err
	}

	changed := false
	for key, value := range obj {
		if !matchesAny(key, fields) {
			continue
		}
		replacement := r.placeholder
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			if s == "" {
				continue
			}
			replacement = r.Redact(s)
		} else if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		masked, err := json.Marshal(replacement)
		if err != nil {
			return nil, err
		}
		obj[key] = masked
		changed = true
	}
	if !changed {
		return raw, nil
	}
	return json.Marshal(obj)
}

func matchesAny(key string, fields []string) bool {
	for _, f := range fields {
		if strings.EqualFold(key, f) {
			return true
		}
	}
	return false
}

// Default is a pre-configured redactor with partial display.
var Default = New(WithPartialDisplay(4, 4))

// Redact uses the default redactor to redact a secret.
func Redact(secret string) string {
	return Default.Redact(secret)
}

// RedactFull completely redacts a secret without showing partial content.
func RedactFull(secret string) string {
	return New().Redact(secret)
}

// RedactString uses the default redactor to scan and redact secrets.
func RedactString(input string) string {
	return Default.RedactString(input)
}
