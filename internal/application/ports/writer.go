package ports

import (
	"errors"

	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// ArtifactWriter defines the interface for emitting run results.
type ArtifactWriter interface {
	// WriteReport writes the consolidated report and its fix guide.
	WriteReport(r *report.ConsolidatedReport, guide services.FixGuide) error

	// WriteSummary writes a brief summary of the run.
	WriteSummary(r *report.ConsolidatedReport, guide services.FixGuide) error

	// WriteProgress writes progress updates during the run.
	WriteProgress(message string) error

	// WriteError writes error messages.
	WriteError(err error) error

	// Flush ensures all output is written.
	Flush() error
}

// ConsoleWriter writes to stdout/stderr with optional colors.
type ConsoleWriter interface {
	ArtifactWriter

	// SetColor enables or disables colored output.
	SetColor(enabled bool)

	// SetVerbosity sets the output detail level.
	SetVerbosity(v Verbosity)
}

// MultiWriter fans output out to several writers. Every writer is called
// even when an earlier one fails, so a broken results file never hides the
// console summary; failures are joined.
type MultiWriter struct {
	writers []ArtifactWriter
}

// NewMultiWriter creates a writer that writes to all provided writers.
func NewMultiWriter(writers ...ArtifactWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) each(fn func(ArtifactWriter) error) error {
	var errs []error
	for _, w := range m.writers {
		if err := fn(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteReport writes to all writers.
func (m *MultiWriter) WriteReport(r *report.ConsolidatedReport, guide services.FixGuide) error {
	return m.each(func(w ArtifactWriter) error { return w.WriteReport(r, guide) })
}

// WriteSummary writes to all writers.
func (m *MultiWriter) WriteSummary(r *report.ConsolidatedReport, guide services.FixGuide) error {
	return m.each(func(w ArtifactWriter) error { return w.WriteSummary(r, guide) })
}

// WriteProgress writes to all writers.
func (m *MultiWriter) WriteProgress(message string) error {
	return m.each(func(w ArtifactWriter) error { return w.WriteProgress(message) })
}

// WriteError writes to all writers.
func (m *MultiWriter) WriteError(err error) error {
	return m.each(func(w ArtifactWriter) error { return w.WriteError(err) })
}

// Flush flushes all writers.
func (m *MultiWriter) Flush() error {
	return m.each(func(w ArtifactWriter) error { return w.Flush() })
}
