package gate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantCount  int
		wantPassed *bool
	}{
		{"count and bool", `{"passed": true, "findings_count": 0}`, 0, boolPtr(true)},
		{"status string", `{"status": "FAILED", "total_findings": 12}`, 12, boolPtr(false)},
		{"nested summary", `{"summary": {"count": "7"}, "conclusion": "success"}`, 7, boolPtr(true)},
		{"nested result object", `{"result": {"issues": 3, "pass": false}}`, 3, boolPtr(false)},
		{"verdict only", `{"status": "passed"}`, 0, boolPtr(true)},
		{"count only", `{"count": 5}`, 5, nil},
		{"issues listed", `{"issues": [{"id": 1}, {"id": 2}], "passed": false}`, 2, boolPtr(false)},
		{"top-level wins over nested", `{"count": 1, "summary": {"count": 9}}`, 1, nil},
		{"negative clamps", `{"count": -4}`, 0, nil},
		{"mixed case keys", `{"Passed": true, "Findings_Count": 2}`, 2, boolPtr(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewParser().Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, status.Count)
			if tt.wantPassed == nil {
				assert.Nil(t, status.Passed)
			} else {
				require.NotNil(t, status.Passed)
				assert.Equal(t, *tt.wantPassed, *status.Passed)
			}
		})
	}
}

func TestParser_Parse_Errors(t *testing.T) {
	_, err := NewParser().Parse([]byte(`{"summary": {"note": "nothing"}}`))
	assert.ErrorIs(t, err, ErrNoGateFields)

	_, err = NewParser().Parse([]byte(`[true]`))
	assert.Error(t, err)

	_, err = NewParser().Parse([]byte(`{"status": "pending"}`))
	assert.ErrorIs(t, err, ErrNoGateFields)
}

func TestAdapter_Parse(t *testing.T) {
	result, err := NewAdapter().Parse([]byte(`{"passed": true, "count": 0}`))
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
	require.NotNil(t, result.Gate)
	assert.True(t, *result.Gate.Passed)

	_, err = NewAdapter().Parse([]byte(`{}`))
	var perr *ports.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ports.AdapterGate, perr.Adapter)
}

func boolPtr(b bool) *bool { return &b }
