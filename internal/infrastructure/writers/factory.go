package writers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// Factory creates writers based on configuration.
type Factory struct {
	stdout io.Writer
	stderr io.Writer
}

// NewFactory creates a new writer factory writing to the process streams.
func NewFactory() *Factory {
	return &Factory{stdout: os.Stdout, stderr: os.Stderr}
}

// NewFactoryWithStreams creates a factory writing console output to the
// given streams.
func NewFactoryWithStreams(stdout, stderr io.Writer) *Factory {
	return &Factory{stdout: stdout, stderr: stderr}
}

// Create returns the standard run writer set: console output plus
// results.json and fix-guide.md under config.Dir. On an interactive
// stderr, progress is shown as a spinner instead of console lines.
func (f *Factory) Create(config ports.OutputConfig) *ports.MultiWriter {
	var ws []ports.ArtifactWriter
	progress := f.CreateProgress(config)
	if progress != nil {
		ws = append(ws, progress)
	}
	ws = append(ws,
		f.CreateJSONFile(config),
		f.CreateFixGuide(config),
		f.createConsole(config, progress == nil),
	)
	return ports.NewMultiWriter(ws...)
}

// CreateConsole returns a console writer.
func (f *Factory) CreateConsole(config ports.OutputConfig) ports.ConsoleWriter {
	return f.createConsole(config, true)
}

func (f *Factory) createConsole(config ports.OutputConfig, progressLines bool) *ConsoleWriter {
	return NewConsoleWriter(
		WithOutput(f.stdout),
		WithErrorOutput(f.stderr),
		WithColor(config.Color),
		WithVerbosity(config.Verbosity),
		WithFixGuidePath(FixGuidePath(config)),
		WithProgressLines(progressLines),
	)
}

// CreateProgress returns a spinner on stderr, or nil when stderr is not a
// terminal or the verbosity is not normal.
func (f *Factory) CreateProgress(config ports.OutputConfig) *ProgressWriter {
	if config.Verbosity != ports.VerbosityNormal {
		return nil
	}
	file, ok := isTerminal(f.stderr)
	if !ok {
		return nil
	}
	return NewProgressWriter(file)
}

// CreateJSON returns a JSON writer on w.
func (f *Factory) CreateJSON(w io.Writer, pretty bool) *JSONWriter {
	return NewJSONWriter(
		WithJSONOutput(w),
		WithPrettyPrint(pretty),
	)
}

// CreateJSONFile returns a JSON writer targeting the results file.
func (f *Factory) CreateJSONFile(config ports.OutputConfig) *JSONWriter {
	return NewJSONWriter(
		WithJSONFile(ResultsPath(config)),
		WithPrettyPrint(true),
	)
}

// CreateFixGuide returns a markdown writer targeting the fix guide file.
func (f *Factory) CreateFixGuide(config ports.OutputConfig) *MarkdownWriter {
	return NewMarkdownWriter(WithMarkdownFile(FixGuidePath(config)))
}

// ResultsPath joins the output directory and results file name.
func ResultsPath(config ports.OutputConfig) string {
	return filepath.Join(config.Dir, config.ResultsFile)
}

// FixGuidePath joins the output directory and fix guide file name.
func FixGuidePath(config ports.OutputConfig) string {
	return filepath.Join(config.Dir, config.FixGuideFile)
}
