package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()

	assert.Equal(t, []string{
		filepath.Join(".triage", "config.yaml"),
		"triage.yaml",
		".triage.yaml",
	}, loader.configPaths)
}

func TestLoader_Load_NoFile(t *testing.T) {
	loader := NewLoaderWithPaths([]string{"/nonexistent/config.yaml"})

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_LoadFromBytes_ValidYAML(t *testing.T) {
	data := []byte(`
version: "1"
engine:
  max_workers: 4
  context_lines: 5
  ref: main
adapters:
  disabled: [hadolint]
source:
  provider: github
  repository: acme/api
output:
  dir: out
  color: false
evidence:
  driver: postgres
  dsn: postgres://triage@db/triage?sslmode=disable
logging:
  level: debug
  format: json
`)

	cfg, err := NewLoader().LoadFromBytes(data)

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.MaxWorkers)
	assert.Equal(t, 5, cfg.Engine.ContextLines)
	assert.Equal(t, "main", cfg.Engine.Ref)
	assert.Equal(t, []string{"hadolint"}, cfg.Adapters.Disabled)
	assert.Equal(t, "acme/api", cfg.Source.Repository)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.False(t, cfg.Output.Color)
	// unset keys keep their defaults
	assert.Equal(t, "fix-guide.md", cfg.Output.FixGuideFile)
	assert.Equal(t, EvidencePostgres, cfg.Evidence.Driver)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoader_LoadFromBytes_InvalidYAML(t *testing.T) {
	_, err := NewLoader().LoadFromBytes([]byte("engine: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoader_LoadFromBytes_InvalidConfig(t *testing.T) {
	_, err := NewLoader().LoadFromBytes([]byte("engine:\n  max_workers: 100\nlogging:\n  level: loud\n"))

	var cfgErrs *ConfigErrors
	require.ErrorAs(t, err, &cfgErrs)
	assert.Len(t, cfgErrs.Errors, 2)
}

func TestLoader_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  ref: v2.0.0\n"), 0o600))

	cfg, err := NewLoader().LoadFromFile(path)

	require.NoError(t, err)
	assert.Equal(t, "v2.0.0", cfg.Engine.Ref)
}

func TestLoader_LoadFromFile_NotFound(t *testing.T) {
	_, err := NewLoader().LoadFromFile("/nonexistent/triage.yaml")
	assert.Error(t, err)
}

func TestLoader_LoadWithOverrides(t *testing.T) {
	workers := 2
	ref := "feature"
	noColor := true
	noEvidence := true
	provider := "none"
	loader := NewLoaderWithPaths([]string{"/nonexistent/config.yaml"})

	cfg, err := loader.LoadWithOverrides(&CLIOverrides{
		Workers:         &workers,
		Ref:             &ref,
		NoColor:         &noColor,
		NoEvidence:      &noEvidence,
		SourceProvider:  &provider,
		DisableAdapters: []string{"Trivy", "trivy", "grype"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Engine.MaxWorkers)
	assert.Equal(t, "feature", cfg.Engine.Ref)
	assert.False(t, cfg.Output.Color)
	assert.Equal(t, EvidenceNone, cfg.Evidence.Driver)
	assert.Equal(t, "none", cfg.Source.Provider)
	assert.Equal(t, []string{"trivy", "grype"}, cfg.Adapters.Disabled)
}

func TestLoader_LoadWithOverrides_Invalid(t *testing.T) {
	workers := 99
	loader := NewLoaderWithPaths([]string{"/nonexistent/config.yaml"})

	_, err := loader.LoadWithOverrides(&CLIOverrides{Workers: &workers})

	var cfgErrs *ConfigErrors
	require.ErrorAs(t, err, &cfgErrs)
}

func TestLoader_LoadWithOverrides_NilOverrides(t *testing.T) {
	loader := NewLoaderWithPaths([]string{"/nonexistent/config.yaml"})

	cfg, err := loader.LoadWithOverrides(nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_LoadFromFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: reports\n"), 0o600))
	dir := "elsewhere"

	cfg, err := NewLoader().LoadFromFileWithOverrides(path, &CLIOverrides{OutputDir: &dir})

	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.yaml")
	cfg := DefaultConfig()
	cfg.Engine.ContextLines = 7

	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Engine.ContextLines)
}

func TestGenerateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, GenerateDefaultConfig(path))

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigErrors_Error(t *testing.T) {
	errs := &ConfigErrors{Errors: []error{}}
	assert.Equal(t, "no configuration errors", errs.Error())

	errs = &ConfigErrors{Errors: []error{&ValidationError{Field: "test", Message: "error"}}}
	assert.Equal(t, "configuration error: test: error", errs.Error())

	errs = &ConfigErrors{Errors: []error{
		&ValidationError{Field: "test1", Message: "error1"},
		&ValidationError{Field: "test2", Message: "error2"},
	}}
	assert.Contains(t, errs.Error(), "2 configuration errors")
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "test.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

	assert.True(t, fileExists(tmpFile))
	assert.False(t, fileExists("/nonexistent/file.txt"))
	assert.False(t, fileExists(tmpDir))
}
