package finding

import (
	"sort"
	"strings"
)

// SeverityTable maps one scanner's native severity vocabulary onto the
// canonical scale. Each adapter owns exactly one table; bumping Version is
// required whenever an entry changes so report consumers can tell mappings
// apart.
type SeverityTable struct {
	Tool    string
	Version string
	Entries map[string]Severity
	Default Severity
}

// Map returns the canonical severity for a native value. Lookup is
// case-insensitive and whitespace-tolerant; anything not in the table,
// including the empty string, maps to Default.
func (t SeverityTable) Map(native string) Severity {
	key := strings.ToUpper(strings.TrimSpace(native))
	if sev, ok := t.Entries[key]; ok {
		return sev
	}
	if t.Default.IsValid() {
		return t.Default
	}
	return SeverityMedium
}

// Keys returns the native values known to the table, sorted.
func (t SeverityTable) Keys() []string {
	keys := make([]string, 0, len(t.Entries))
	for k := range t.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
