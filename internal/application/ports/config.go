package ports

// MaxParseWorkers is the hard cap on concurrent artifact parsers.
const MaxParseWorkers = 8

// DefaultContextLines is the number of source lines shown on each side of a
// finding.
const DefaultContextLines = 3

// Config represents the configuration the analysis use case needs.
type Config struct {
	Version string
	Engine  EngineConfig
	Output  OutputConfig
}

// EngineConfig holds consolidation engine settings.
type EngineConfig struct {
	MaxWorkers       int    // 0 means one per artifact, always capped at MaxParseWorkers
	ContextLines     int    // lines before and after a finding
	Ref              string // source ref used for context fetches
	DisabledAdapters []AdapterID
}

// Workers returns the parse pool size for n artifacts.
func (c EngineConfig) Workers(n int) int {
	w := c.MaxWorkers
	if w <= 0 || w > n {
		w = n
	}
	if w > MaxParseWorkers {
		w = MaxParseWorkers
	}
	if w < 1 {
		w = 1
	}
	return w
}

// IsAdapterEnabled reports whether an adapter may be used.
func (c EngineConfig) IsAdapterEnabled(id AdapterID) bool {
	for _, d := range c.DisabledAdapters {
		if d == id {
			return false
		}
	}
	return true
}

// OutputConfig configures output destinations and behavior.
type OutputConfig struct {
	Dir          string
	ResultsFile  string
	FixGuideFile string
	Verbosity    Verbosity
	Color        bool
}

// Verbosity controls output detail level.
type Verbosity string

// Available verbosity levels.
const (
	VerbosityQuiet   Verbosity = "quiet"
	VerbosityNormal  Verbosity = "normal"
	VerbosityVerbose Verbosity = "verbose"
	VerbosityDebug   Verbosity = "debug"
)

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		Engine: EngineConfig{
			ContextLines:     DefaultContextLines,
			Ref:              "HEAD",
			DisabledAdapters: []AdapterID{},
		},
		Output: OutputConfig{
			Dir:          ".triage",
			ResultsFile:  "consolidated-results.json",
			FixGuideFile: "fix-guide.md",
			Verbosity:    VerbosityNormal,
			Color:        true,
		},
	}
}
