package writers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// JSONWriter writes the consolidated report as JSON, either to a stream or
// atomically to a file.
type JSONWriter struct {
	out    io.Writer
	path   string
	pretty bool
}

// JSONOption configures the JSON writer.
type JSONOption func(*JSONWriter)

// WithJSONOutput sets the output writer.
func WithJSONOutput(out io.Writer) JSONOption {
	return func(w *JSONWriter) {
		w.out = out
		w.path = ""
	}
}

// WithJSONFile writes the report to path instead of a stream.
func WithJSONFile(path string) JSONOption {
	return func(w *JSONWriter) {
		w.path = path
	}
}

// WithPrettyPrint enables pretty-printed JSON.
func WithPrettyPrint(enabled bool) JSONOption {
	return func(w *JSONWriter) {
		w.pretty = enabled
	}
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(opts ...JSONOption) *JSONWriter {
	w := &JSONWriter{
		out:    os.Stdout,
		pretty: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the destination file, or "" for a stream.
func (w *JSONWriter) Path() string { return w.path }

// WriteReport writes consolidated-results.json.
func (w *JSONWriter) WriteReport(r *report.ConsolidatedReport, _ services.FixGuide) error {
	var data []byte
	var err error
	if w.pretty {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')

	if w.path != "" {
		return writeFileAtomic(w.path, data)
	}
	if _, err := w.out.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteSummary is a no-op; the report already carries the summary.
func (w *JSONWriter) WriteSummary(*report.ConsolidatedReport, services.FixGuide) error {
	return nil
}

// WriteProgress is a no-op so the stream stays valid JSON.
func (w *JSONWriter) WriteProgress(string) error { return nil }

// WriteError is a no-op; errors are part of the report.
func (w *JSONWriter) WriteError(error) error { return nil }

// Flush ensures all output is written.
func (w *JSONWriter) Flush() error { return nil }

var _ ports.ArtifactWriter = (*JSONWriter)(nil)
