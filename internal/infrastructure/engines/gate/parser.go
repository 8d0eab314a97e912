package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// ErrNoGateFields is returned when a gate artifact has neither a count nor
// a pass/fail verdict.
var ErrNoGateFields = errors.New("no finding count or pass/fail field found")

var (
	countKeys   = []string{"findings_count", "total_findings", "finding_count", "issues", "count", "total"}
	verdictKeys = []string{"passed", "pass", "status", "result", "conclusion"}
	nestedKeys  = []string{"summary", "result"}
)

var passWords = map[string]bool{
	"pass": true, "passed": true, "success": true, "succeeded": true, "ok": true, "green": true, "true": true,
}

var failWords = map[string]bool{
	"fail": true, "failed": true, "failure": true, "error": true, "red": true, "blocked": true, "false": true,
}

// Parser extracts a gate status from JSON.
type Parser struct{}

// NewParser creates a new gate parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the reported count and verdict. Top-level fields take
// precedence over ones nested under summary or result. A verdict without a
// count reports a count of 0.
func (p *Parser) Parse(data []byte) (*report.GateStatus, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gate status: %w", err)
	}
	fields := lower(doc)

	count, hasCount := findCount(fields)
	passed, hasVerdict := findVerdict(fields)
	for _, key := range nestedKeys {
		nested, ok := fields[key].(map[string]any)
		if !ok {
			continue
		}
		nf := lower(nested)
		if !hasCount {
			count, hasCount = findCount(nf)
		}
		if !hasVerdict {
			passed, hasVerdict = findVerdict(nf)
		}
	}

	if !hasCount && !hasVerdict {
		return nil, ErrNoGateFields
	}

	status := &report.GateStatus{Count: count}
	if hasVerdict {
		v := passed
		status.Passed = &v
	}
	return status, nil
}

func findCount(fields map[string]any) (int, bool) {
	for _, key := range countKeys {
		switch v := fields[key].(type) {
		case float64:
			if v < 0 {
				return 0, true
			}
			return int(v), true
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return max(n, 0), true
			}
		case []any:
			// Some gates list the issues rather than counting them.
			return len(v), true
		}
	}
	return 0, false
}

func findVerdict(fields map[string]any) (bool, bool) {
	for _, key := range verdictKeys {
		switch v := fields[key].(type) {
		case bool:
			return v, true
		case string:
			word := strings.ToLower(strings.TrimSpace(v))
			if passWords[word] {
				return true, true
			}
			if failWords[word] {
				return false, true
			}
		}
	}
	return false, false
}

func lower(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		lk := strings.ToLower(k)
		if _, ok := out[lk]; !ok || k == lk {
			out[lk] = v
		}
	}
	return out
}
