package writers

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// ProgressWriter shows run progress as a spinner on an interactive
// terminal. It stops before any report output so stdout stays clean.
type ProgressWriter struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	active  bool
}

// NewProgressWriter creates a spinner writing to f.
func NewProgressWriter(f *os.File) *ProgressWriter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	return &ProgressWriter{spinner: s}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return nil, false
	}
	return f, term.IsTerminal(int(f.Fd()))
}

// WriteProgress updates the spinner message, starting it on first use.
func (p *ProgressWriter) WriteProgress(message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.spinner.Lock()
	p.spinner.Suffix = " " + message
	p.spinner.Unlock()

	if !p.active {
		p.spinner.Start()
		p.active = true
	}
	return nil
}

// WriteReport stops the spinner.
func (p *ProgressWriter) WriteReport(*report.ConsolidatedReport, services.FixGuide) error {
	p.stop()
	return nil
}

// WriteSummary stops the spinner.
func (p *ProgressWriter) WriteSummary(*report.ConsolidatedReport, services.FixGuide) error {
	p.stop()
	return nil
}

// WriteError stops the spinner so the error is readable.
func (p *ProgressWriter) WriteError(error) error {
	p.stop()
	return nil
}

// Flush stops the spinner.
func (p *ProgressWriter) Flush() error {
	p.stop()
	return nil
}

func (p *ProgressWriter) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		p.spinner.Stop()
		p.active = false
	}
}

var _ ports.ArtifactWriter = (*ProgressWriter)(nil)
