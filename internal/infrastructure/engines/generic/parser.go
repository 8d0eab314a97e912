package generic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/infrastructure/engines/rawjson"
)

// Collection keys tried in order on an object document.
var collectionKeys = []string{"results", "vulnerabilities", "findings", "issues", "alerts", "violations"}

// Field aliases, tried in order, case-insensitively.
var (
	titleKeys       = []string{"title", "name", "check_name", "message", "msg", "description", "details"}
	severityKeys    = []string{"severity", "level", "risk", "priority", "impact"}
	ruleKeys        = []string{"rule_id", "ruleid", "check_id", "checkid", "rule", "test_id", "avdid", "vulnerabilityid", "id"}
	fileKeys        = []string{"file", "filename", "file_name", "path", "file_path", "filepath", "location", "target"}
	lineKeys        = []string{"line", "line_number", "linenumber", "start_line", "startline"}
	descriptionKeys = []string{"description", "details", "message", "msg"}
	fixKeys         = []string{"remediation", "resolution", "fix", "recommendation", "solution"}
	scannerKeys     = []string{"tool", "scanner", "tool_name"}
)

// Parser extracts findings from JSON of unknown shape.
type Parser struct{}

// NewParser creates a new generic parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts findings from data. Recognized shapes are a bare array of
// objects, an object holding one of collectionKeys, and Trivy-like
// Results[].Misconfigurations[] / Results[].Vulnerabilities[] nesting.
// Each finding's Raw holds the element bytes exactly as the scanner wrote
// them.
func (p *Parser) Parse(data []byte) ([]ports.RawFinding, error) {
	if rawjson.IsEmpty(data) {
		return []ports.RawFinding{}, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON: %w", json.Unmarshal(data, new(any)))
	}

	findings := []ports.RawFinding{}
	switch bytes.TrimSpace(data)[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		findings = p.collect(findings, "unknown", "", items)
	case '{':
		var root map[string]json.RawMessage
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		findings = p.fromObject(findings, scannerName(root), root)
	}
	return findings, nil
}

func (p *Parser) fromObject(out []ports.RawFinding, scanner string, obj map[string]json.RawMessage) []ports.RawFinding {
	fields := fold(obj)
	for _, key := range collectionKeys {
		items, ok := array(fields[key])
		if !ok {
			continue
		}
		// Trivy-like nesting: each result holds its own target and
		// nested finding lists.
		if nested := p.fromNested(out, scanner, items); len(nested) > len(out) {
			return nested
		}
		return p.collect(out, scanner, "", items)
	}
	return out
}

func (p *Parser) fromNested(out []ports.RawFinding, scanner string, items []json.RawMessage) []ports.RawFinding {
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		fields := fold(obj)
		target := stringValue(decode(fields["target"]))
		for _, key := range []string{"misconfigurations", "vulnerabilities", "secrets", "findings"} {
			if nested, ok := array(fields[key]); ok {
				out = p.collect(out, scanner, target, nested)
			}
		}
	}
	return out
}

func (p *Parser) collect(out []ports.RawFinding, scanner, defaultFile string, items []json.RawMessage) []ports.RawFinding {
	for _, item := range items {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if rf, ok := p.toRawFinding(scanner, defaultFile, obj, item); ok {
			out = append(out, rf)
		}
	}
	return out
}

func (p *Parser) toRawFinding(scanner, defaultFile string, obj map[string]any, raw json.RawMessage) (ports.RawFinding, bool) {
	fields := fold(obj)

	title := firstString(fields, titleKeys)
	ruleID := firstString(fields, ruleKeys)
	if title == "" && ruleID == "" {
		return ports.RawFinding{}, false
	}

	file := firstString(fields, fileKeys)
	if file == "" {
		file = defaultFile
	}

	if s := firstString(fields, scannerKeys); s != "" {
		scanner = s
	}

	return ports.RawFinding{
		Scanner:     scanner,
		RuleID:      ruleID,
		Title:       rawjson.Truncate(rawjson.FirstLine(title), 120),
		Description: firstString(fields, descriptionKeys),
		Severity:    firstString(fields, severityKeys),
		File:        file,
		Line:        firstInt(fields, lineKeys),
		Remediation: firstString(fields, fixKeys),
		Raw:         raw,
	}, true
}

// array decodes raw as a JSON array, keeping each element's bytes.
func array(raw json.RawMessage) ([]json.RawMessage, bool) {
	if !rawjson.IsArray(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

func decode(raw json.RawMessage) any {
	var v any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &v)
	}
	return v
}

// scannerName reads a tool name from the document root, either as a plain
// string or as an object with a name.
func scannerName(root map[string]json.RawMessage) string {
	fields := fold(root)
	for _, key := range scannerKeys {
		switch v := decode(fields[key]).(type) {
		case string:
			if v != "" {
				return strings.ToLower(v)
			}
		case map[string]any:
			if name := stringField(fold(v), "name"); name != "" {
				return strings.ToLower(name)
			}
		}
	}
	return "unknown"
}

// fold lowercases object keys. On collisions the key that sorts first
// wins so results do not depend on map iteration order.
func fold[V any](obj map[string]V) map[string]V {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]V, len(obj))
	for _, k := range keys {
		lk := strings.ToLower(k)
		if _, ok := out[lk]; !ok {
			out[lk] = obj[k]
		}
	}
	return out
}

func stringField(fields map[string]any, key string) string {
	return stringValue(fields[key])
}

func stringValue(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

func firstString(fields map[string]any, keys []string) string {
	for _, k := range keys {
		if s := stringField(fields, k); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(fields map[string]any, keys []string) int {
	for _, k := range keys {
		switch v := fields[k].(type) {
		case float64:
			if v > 0 {
				return int(v)
			}
		case string:
			if n := leadingInt(v); n > 0 {
				return n
			}
		}
	}
	return 0
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
