package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, 8, cfg.Engine.MaxWorkers)
	assert.Equal(t, 3, cfg.Engine.ContextLines)
	assert.Equal(t, "HEAD", cfg.Engine.Ref)
	assert.Equal(t, "auto", cfg.Source.Provider)
	assert.Equal(t, ".triage", cfg.Output.Dir)
	assert.Equal(t, "consolidated-results.json", cfg.Output.ResultsFile)
	assert.Equal(t, "fix-guide.md", cfg.Output.FixGuideFile)
	assert.Equal(t, EvidenceJSONL, cfg.Evidence.Driver)
	assert.Empty(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing version", func(c *Config) { c.Version = "" }, "version"},
		{"too many workers", func(c *Config) { c.Engine.MaxWorkers = 64 }, "engine.max_workers"},
		{"negative workers", func(c *Config) { c.Engine.MaxWorkers = -1 }, "engine.max_workers"},
		{"negative context", func(c *Config) { c.Engine.ContextLines = -2 }, "engine.context_lines"},
		{"unknown adapter", func(c *Config) { c.Adapters.Disabled = []string{"bandit", "nessus"} }, "adapters.disabled[1]"},
		{"bad provider", func(c *Config) { c.Source.Provider = "svn" }, "source.provider"},
		{"bad verbosity", func(c *Config) { c.Output.Verbosity = "loud" }, "output.verbosity"},
		{"results path", func(c *Config) { c.Output.ResultsFile = "../x.json" }, "output.results_file"},
		{"jsonl without path", func(c *Config) { c.Evidence.Path = "" }, "evidence.path"},
		{"postgres without dsn", func(c *Config) { c.Evidence.Driver = EvidencePostgres }, "evidence.dsn"},
		{"bad driver", func(c *Config) { c.Evidence.Driver = "s3" }, "evidence.driver"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad mcp severity", func(c *Config) { c.MCP.MinSeverity = "SEVERE" }, "mcp.min_severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			errs := cfg.Validate()
			require.Len(t, errs, 1)
			var verr *ValidationError
			require.ErrorAs(t, errs[0], &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestConfig_ToPortsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.MaxWorkers = 2
	cfg.Adapters.Disabled = []string{" Gosec "}
	cfg.Output.Verbosity = "verbose"

	pc := cfg.ToPortsConfig()

	assert.Equal(t, 2, pc.Engine.MaxWorkers)
	assert.Equal(t, "HEAD", pc.Engine.Ref)
	assert.Equal(t, []ports.AdapterID{ports.AdapterGosec}, pc.Engine.DisabledAdapters)
	assert.False(t, pc.Engine.IsAdapterEnabled(ports.AdapterGosec))
	assert.Equal(t, ports.VerbosityVerbose, pc.Output.Verbosity)
	assert.Equal(t, "fix-guide.md", pc.Output.FixGuideFile)
}

func TestConfig_GetVerbosity(t *testing.T) {
	tests := map[string]ports.Verbosity{
		"quiet":   ports.VerbosityQuiet,
		"normal":  ports.VerbosityNormal,
		"verbose": ports.VerbosityVerbose,
		"debug":   ports.VerbosityDebug,
		"":        ports.VerbosityNormal,
	}
	for in, want := range tests {
		cfg := DefaultConfig()
		cfg.Output.Verbosity = in
		assert.Equal(t, want, cfg.GetVerbosity(), in)
	}
}

func TestConfig_GetMCPConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MCP = MCPConfig{}
	assert.Equal(t, 25, cfg.GetMCPConfig().MaxFindings)
	assert.Equal(t, finding.SeverityHigh, cfg.MCPMinSeverity())

	cfg.MCP = MCPConfig{MaxFindings: -1, MinSeverity: "medium"}
	assert.Equal(t, 0, cfg.GetMCPConfig().MaxFindings)
	assert.Equal(t, finding.SeverityMedium, cfg.MCPMinSeverity())
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "engine.ref", Message: "is required"}
	assert.Equal(t, "engine.ref: is required", err.Error())
}
