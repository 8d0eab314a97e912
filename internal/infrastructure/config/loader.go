package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

const (
	// DefaultConfigDir is the default directory for triage config.
	DefaultConfigDir = ".triage"

	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Loader handles loading and merging configuration.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			filepath.Join(DefaultConfigDir, DefaultConfigFile),
			"triage.yaml",
			".triage.yaml",
		},
	}
}

// NewLoaderWithPaths creates a loader with custom config paths.
func NewLoaderWithPaths(paths []string) *Loader {
	return &Loader{
		configPaths: paths,
	}
}

// Load loads configuration from the first available config file.
// Returns default config if no file is found.
func (l *Loader) Load() (*Config, error) {
	for _, path := range l.configPaths {
		if fileExists(path) {
			return l.LoadFromFile(path)
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	// Validate path to prevent path traversal attacks
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return l.LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes.
func (l *Loader) LoadFromBytes(data []byte) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal YAML into config
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate config
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigErrors{Errors: errs}
	}

	return cfg, nil
}

// LoadWithOverrides loads config and applies CLI overrides.
func (l *Loader) LoadWithOverrides(overrides *CLIOverrides) (*Config, error) {
	cfg, err := l.Load()
	if err != nil {
		return nil, err
	}

	return withOverrides(cfg, overrides)
}

// LoadFromFileWithOverrides loads from a specific file and applies overrides.
func (l *Loader) LoadFromFileWithOverrides(path string, overrides *CLIOverrides) (*Config, error) {
	cfg, err := l.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	return withOverrides(cfg, overrides)
}

// withOverrides applies overrides and validates the result, so a bad flag
// is reported the same way as a bad config key.
func withOverrides(cfg *Config, overrides *CLIOverrides) (*Config, error) {
	if overrides == nil {
		return cfg, nil
	}
	cfg = applyOverrides(cfg, overrides)
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigErrors{Errors: errs}
	}
	return cfg, nil
}

// CLIOverrides represents command-line configuration overrides.
type CLIOverrides struct {
	// Output settings
	OutputDir *string
	Verbosity *string
	NoColor   *bool

	// Engine settings
	Workers      *int
	ContextLines *int
	Ref          *string

	// Adapter toggles
	DisableAdapters []string

	// Source and evidence
	SourceProvider *string
	NoEvidence     *bool

	// Logging
	LogLevel *string
}

// applyOverrides applies CLI overrides to a config.
func applyOverrides(cfg *Config, overrides *CLIOverrides) *Config {
	if overrides.OutputDir != nil && *overrides.OutputDir != "" {
		cfg.Output.Dir = *overrides.OutputDir
	}
	if overrides.Verbosity != nil {
		cfg.Output.Verbosity = *overrides.Verbosity
	}
	if overrides.NoColor != nil {
		cfg.Output.Color = !*overrides.NoColor
	}

	if overrides.Workers != nil {
		cfg.Engine.MaxWorkers = *overrides.Workers
	}
	if overrides.ContextLines != nil {
		cfg.Engine.ContextLines = *overrides.ContextLines
	}
	if overrides.Ref != nil && *overrides.Ref != "" {
		cfg.Engine.Ref = *overrides.Ref
	}

	for _, adapter := range overrides.DisableAdapters {
		disableAdapter(cfg, adapter)
	}

	if overrides.SourceProvider != nil && *overrides.SourceProvider != "" {
		cfg.Source.Provider = *overrides.SourceProvider
	}
	if overrides.NoEvidence != nil && *overrides.NoEvidence {
		cfg.Evidence.Driver = EvidenceNone
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.Logging.Level = *overrides.LogLevel
	}

	return cfg
}

// disableAdapter adds an adapter to the disabled list once.
func disableAdapter(cfg *Config, adapter string) {
	id := strings.ToLower(strings.TrimSpace(adapter))
	if id == "" {
		return
	}
	for _, d := range cfg.Adapters.Disabled {
		if strings.EqualFold(d, id) {
			return
		}
	}
	cfg.Adapters.Disabled = append(cfg.Adapters.Disabled, id)
}

// SaveToFile saves configuration to a file.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateDefaultConfig creates a default config file at the given path.
func GenerateDefaultConfig(path string) error {
	return SaveToFile(DefaultConfig(), path)
}

// FindConfigFile finds the first available config file.
func FindConfigFile() (string, bool) {
	loader := NewLoader()
	for _, path := range loader.configPaths {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ConfigErrors wraps multiple configuration errors.
type ConfigErrors struct {
	Errors []error
}

func (e *ConfigErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no configuration errors"
	}
	if len(e.Errors) == 1 {
		return "configuration error: " + e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Unwrap returns the underlying errors.
func (e *ConfigErrors) Unwrap() []error {
	return e.Errors
}
