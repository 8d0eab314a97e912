package finding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityUnknown, "unknown"},
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.String())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		input    string
		expected Severity
		hasError bool
	}{
		{"critical", SeverityCritical, false},
		{"CRITICAL", SeverityCritical, false},
		{"High", SeverityHigh, false},
		{"medium", SeverityMedium, false},
		{"  low  ", SeverityLow, false},
		{"info", SeverityUnknown, true},
		{"unknown", SeverityUnknown, true},
		{"", SeverityUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseSeverity(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSeverity_IsValid(t *testing.T) {
	for _, sev := range AllSeverities() {
		assert.True(t, sev.IsValid(), "%s should be valid", sev)
	}
	assert.False(t, SeverityUnknown.IsValid())
	assert.False(t, Severity(5).IsValid())
	assert.False(t, Severity(-1).IsValid())
}

func TestSeverity_Ordering(t *testing.T) {
	desc := SeveritiesDescending()
	require.Len(t, desc, 4)
	for i := 1; i < len(desc); i++ {
		assert.True(t, desc[i-1].IsAtLeast(desc[i]))
		assert.False(t, desc[i].IsAtLeast(desc[i-1]))
	}
}

func TestSeverity_JSONMapKey(t *testing.T) {
	data, err := json.Marshal(map[Severity]int{SeverityHigh: 2, SeverityLow: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"high":2,"low":1}`, string(data))

	var decoded map[Severity]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded[SeverityHigh])
}

func TestSeverityTable_Map(t *testing.T) {
	table := SeverityTable{
		Tool:    "bandit",
		Version: "1",
		Entries: map[string]Severity{
			"HIGH":   SeverityHigh,
			"MEDIUM": SeverityMedium,
			"LOW":    SeverityLow,
		},
		Default: SeverityMedium,
	}

	assert.Equal(t, SeverityHigh, table.Map("high"))
	assert.Equal(t, SeverityLow, table.Map(" LOW "))
	assert.Equal(t, SeverityMedium, table.Map(""))
	assert.Equal(t, SeverityMedium, table.Map("UNDEFINED"))
	assert.Len(t, table.Keys(), 3)
}

func TestSeverityTable_InvalidDefaultFallsBackToMedium(t *testing.T) {
	table := SeverityTable{Entries: map[string]Severity{}}
	assert.Equal(t, SeverityMedium, table.Map("whatever"))
}
