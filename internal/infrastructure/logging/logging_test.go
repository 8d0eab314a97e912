package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_DefaultLevelIsWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("artifact", "bandit.json"))
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "bandit.json")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "INFO", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Info("run complete", zap.Int("findings", 4))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run complete", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 4, entry["findings"])
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "error", Debug: true, Output: &buf})
	require.NoError(t, err)

	logger.Debug("fetching", zap.String("path", "app/db.py"))
	assert.Contains(t, buf.String(), "fetching")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")

	assert.Panics(t, func() { Must(Options{Level: "loud"}) })
}
