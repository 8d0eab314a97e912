package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "triage-mcp", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "MCP")
}

func TestRootCmd_Flags(t *testing.T) {
	assert.NotNil(t, rootCmd.Flags().Lookup("transport"))
	assert.NotNil(t, rootCmd.Flags().Lookup("http-addr"))
	assert.NotNil(t, rootCmd.Flags().Lookup("config"))

	flag := rootCmd.Flags().Lookup("transport")
	assert.Equal(t, "stdio", flag.DefValue)
}

func TestLoadConfig_Default(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = ""

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, 25, cfg.MCP.MaxFindings)
}

func TestLoadConfig_FromFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`version: "1"
adapters:
  disabled: [kics]
mcp:
  max_findings: 5
  min_severity: MEDIUM
`)
	require.NoError(t, os.WriteFile(cfgPath, content, 0o600))

	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = cfgPath

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MCP.MaxFindings)
	assert.Equal(t, "MEDIUM", cfg.MCP.MinSeverity)
	assert.Equal(t, []string{"kics"}, cfg.Adapters.Disabled)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("engine:\n  max_workers: 99\n"), 0o600))

	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = cfgPath

	_, err := loadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	oldConfigPath := configPath
	defer func() { configPath = oldConfigPath }()
	configPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := loadConfig()
	assert.Error(t, err)
}
