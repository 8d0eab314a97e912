// Package rawjson holds decoding helpers shared by the scanner adapters.
// Arrays are decoded element by element so every finding keeps the exact
// bytes the scanner wrote.
package rawjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Each decodes every element of items into T and calls fn with the typed
// value and its original bytes. It stops at the first element that fails
// to decode.
func Each[T any](items []json.RawMessage, fn func(item T, raw json.RawMessage)) error {
	for i, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		fn(item, raw)
	}
	return nil
}

// IsArray reports whether data holds a JSON array.
func IsArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// IsEmpty reports whether data holds nothing but whitespace.
func IsEmpty(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// Int accepts a JSON number or a numeric string ("42", "10-12") and returns
// the leading integer. Anything else yields 0.
type Int int

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int) UnmarshalJSON(data []byte) error {
	*n = 0
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Int(leadingInt(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	*n = Int(int(f))
	return nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// String accepts a JSON string, number, or bool and returns its text form.
// Null yields "".
type String string

// UnmarshalJSON implements json.Unmarshaler.
func (s *String) UnmarshalJSON(data []byte) error {
	*s = ""
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*s = String(v)
		return nil
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return nil
	}
	*s = String(trimmed)
	return nil
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
