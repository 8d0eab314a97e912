package config

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
)

// Config represents the complete triage configuration.
type Config struct {
	Version  string         `yaml:"version" json:"version"`
	Engine   EngineSettings `yaml:"engine" json:"engine"`
	Adapters AdaptersConfig `yaml:"adapters" json:"adapters"`
	Source   SourceConfig   `yaml:"source" json:"source"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Evidence EvidenceConfig `yaml:"evidence" json:"evidence"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	MCP      MCPConfig      `yaml:"mcp" json:"mcp"`
}

// EngineSettings holds consolidation engine settings.
type EngineSettings struct {
	MaxWorkers   int    `yaml:"max_workers" json:"max_workers"`     // 0 = one per artifact
	ContextLines int    `yaml:"context_lines" json:"context_lines"` // lines before and after a finding
	Ref          string `yaml:"ref" json:"ref"`                     // source ref for context fetches
}

// AdaptersConfig toggles scanner adapters.
type AdaptersConfig struct {
	Disabled []string `yaml:"disabled" json:"disabled"`
}

// SourceConfig selects where source context is read from.
type SourceConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // auto, local, github, gitlab, none
	Root       string `yaml:"root" json:"root"`
	Repository string `yaml:"repository" json:"repository"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	Token      string `yaml:"token" json:"-"`
}

// OutputConfig defines output settings.
type OutputConfig struct {
	Dir          string `yaml:"dir" json:"dir"`
	ResultsFile  string `yaml:"results_file" json:"results_file"`
	FixGuideFile string `yaml:"fix_guide_file" json:"fix_guide_file"`
	Verbosity    string `yaml:"verbosity" json:"verbosity"` // quiet, normal, verbose, debug
	Color        bool   `yaml:"color" json:"color"`
}

// EvidenceConfig selects the append-only evidence log.
type EvidenceConfig struct {
	Driver string `yaml:"driver" json:"driver"` // jsonl, postgres, none
	Path   string `yaml:"path" json:"path"`
	DSN    string `yaml:"dsn" json:"-"`
	Table  string `yaml:"table" json:"table"`
	Target string `yaml:"target" json:"target"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // console, json
}

// MCPConfig defines MCP server output limits.
type MCPConfig struct {
	MaxFindings int    `yaml:"max_findings" json:"max_findings"` // 0 = default, -1 = unlimited
	MinSeverity string `yaml:"min_severity" json:"min_severity"`
}

// Evidence drivers.
const (
	EvidenceJSONL    = "jsonl"
	EvidencePostgres = "postgres"
	EvidenceNone     = "none"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Engine: EngineSettings{
			MaxWorkers:   ports.MaxParseWorkers,
			ContextLines: ports.DefaultContextLines,
			Ref:          "HEAD",
		},
		Adapters: AdaptersConfig{
			Disabled: []string{},
		},
		Source: SourceConfig{
			Provider: "auto",
			Root:     ".",
		},
		Output: OutputConfig{
			Dir:          ".triage",
			ResultsFile:  "consolidated-results.json",
			FixGuideFile: "fix-guide.md",
			Verbosity:    "normal",
			Color:        true,
		},
		Evidence: EvidenceConfig{
			Driver: EvidenceJSONL,
			Path:   ".triage/evidence.jsonl",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		MCP: MCPConfig{
			MaxFindings: 25,
			MinSeverity: "HIGH",
		},
	}
}

// ToPortsConfig converts Config to ports.Config for use in use cases.
func (c *Config) ToPortsConfig() ports.Config {
	return ports.Config{
		Version: c.Version,
		Engine: ports.EngineConfig{
			MaxWorkers:       c.Engine.MaxWorkers,
			ContextLines:     c.Engine.ContextLines,
			Ref:              c.Engine.Ref,
			DisabledAdapters: c.DisabledAdapters(),
		},
		Output: ports.OutputConfig{
			Dir:          c.Output.Dir,
			ResultsFile:  c.Output.ResultsFile,
			FixGuideFile: c.Output.FixGuideFile,
			Verbosity:    c.GetVerbosity(),
			Color:        c.Output.Color,
		},
	}
}

// DisabledAdapters returns the disabled adapter IDs.
func (c *Config) DisabledAdapters() []ports.AdapterID {
	ids := make([]ports.AdapterID, 0, len(c.Adapters.Disabled))
	for _, d := range c.Adapters.Disabled {
		ids = append(ids, ports.AdapterID(strings.ToLower(strings.TrimSpace(d))))
	}
	return ids
}

// GetVerbosity returns the verbosity as a ports.Verbosity.
func (c *Config) GetVerbosity() ports.Verbosity {
	switch c.Output.Verbosity {
	case "quiet":
		return ports.VerbosityQuiet
	case "verbose":
		return ports.VerbosityVerbose
	case "debug":
		return ports.VerbosityDebug
	default:
		return ports.VerbosityNormal
	}
}

// GetMCPConfig returns the MCP configuration with defaults applied.
// A negative MaxFindings disables truncation.
func (c *Config) GetMCPConfig() MCPConfig {
	cfg := c.MCP
	if cfg.MaxFindings == 0 {
		cfg.MaxFindings = 25
	} else if cfg.MaxFindings < 0 {
		cfg.MaxFindings = 0
	}
	if cfg.MinSeverity == "" {
		cfg.MinSeverity = "HIGH"
	}
	return cfg
}

// MCPMinSeverity returns the parsed MCP severity floor.
func (c *Config) MCPMinSeverity() finding.Severity {
	sev, err := finding.ParseSeverity(c.GetMCPConfig().MinSeverity)
	if err != nil {
		return finding.SeverityHigh
	}
	return sev
}

var knownAdapters = map[ports.AdapterID]bool{
	ports.AdapterBandit: true, ports.AdapterCheckov: true, ports.AdapterTrivy: true,
	ports.AdapterTfsec: true, ports.AdapterKics: true, ports.AdapterSemgrep: true,
	ports.AdapterGitleaks: true, ports.AdapterGosec: true, ports.AdapterConftest: true,
	ports.AdapterHadolint: true, ports.AdapterNpmAudit: true, ports.AdapterGrype: true,
	ports.AdapterSARIF: true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() []error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, &ValidationError{Field: "version", Message: "version is required"})
	}

	if c.Engine.MaxWorkers < 0 || c.Engine.MaxWorkers > ports.MaxParseWorkers {
		errs = append(errs, &ValidationError{
			Field:   "engine.max_workers",
			Message: fmt.Sprintf("must be between 0 and %d", ports.MaxParseWorkers),
		})
	}
	if c.Engine.ContextLines < 0 || c.Engine.ContextLines > 50 {
		errs = append(errs, &ValidationError{
			Field:   "engine.context_lines",
			Message: "must be between 0 and 50",
		})
	}

	for i, id := range c.DisabledAdapters() {
		if !knownAdapters[id] {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("adapters.disabled[%d]", i),
				Message: fmt.Sprintf("unknown adapter %q", id),
			})
		}
	}

	validProviders := map[string]bool{"": true, "auto": true, "local": true, "github": true, "gitlab": true, "none": true}
	if !validProviders[c.Source.Provider] {
		errs = append(errs, &ValidationError{
			Field:   "source.provider",
			Message: "must be one of: auto, local, github, gitlab, none",
		})
	}

	validVerbosity := map[string]bool{"quiet": true, "normal": true, "verbose": true, "debug": true}
	if c.Output.Verbosity != "" && !validVerbosity[c.Output.Verbosity] {
		errs = append(errs, &ValidationError{
			Field:   "output.verbosity",
			Message: "must be one of: quiet, normal, verbose, debug",
		})
	}
	if c.Output.ResultsFile != "" && strings.ContainsAny(c.Output.ResultsFile, `/\`) {
		errs = append(errs, &ValidationError{Field: "output.results_file", Message: "must be a file name, not a path"})
	}
	if c.Output.FixGuideFile != "" && strings.ContainsAny(c.Output.FixGuideFile, `/\`) {
		errs = append(errs, &ValidationError{Field: "output.fix_guide_file", Message: "must be a file name, not a path"})
	}

	switch c.Evidence.Driver {
	case "", EvidenceNone:
	case EvidenceJSONL:
		if c.Evidence.Path == "" {
			errs = append(errs, &ValidationError{Field: "evidence.path", Message: "is required for the jsonl driver"})
		}
	case EvidencePostgres:
		if c.Evidence.DSN == "" {
			errs = append(errs, &ValidationError{Field: "evidence.dsn", Message: "is required for the postgres driver"})
		}
	default:
		errs = append(errs, &ValidationError{
			Field:   "evidence.driver",
			Message: "must be one of: jsonl, postgres, none",
		})
	}

	validLevels := map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: "must be one of: debug, info, warn, error",
		})
	}
	validFormats := map[string]bool{"": true, "console": true, "json": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, &ValidationError{
			Field:   "logging.format",
			Message: "must be one of: console, json",
		})
	}

	if c.MCP.MinSeverity != "" {
		if _, err := finding.ParseSeverity(c.MCP.MinSeverity); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "mcp.min_severity",
				Message: "must be one of: CRITICAL, HIGH, MEDIUM, LOW",
			})
		}
	}

	return errs
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
