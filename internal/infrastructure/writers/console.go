package writers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
	"github.com/felixgeelhaar/triagesec/pkg/redact"
)

// ConsoleWriter writes human-readable output to the console.
type ConsoleWriter struct {
	out          io.Writer
	err          io.Writer
	color        bool
	verbosity    ports.Verbosity
	redactor     *redact.Redactor
	fixGuidePath string
	progress     bool

	// Color functions
	red    func(a ...interface{}) string
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	blue   func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	bold   func(a ...interface{}) string
	dim    func(a ...interface{}) string
}

// NewConsoleWriter creates a new console writer.
func NewConsoleWriter(opts ...ConsoleOption) *ConsoleWriter {
	w := &ConsoleWriter{
		out:       os.Stdout,
		err:       os.Stderr,
		color:     true,
		verbosity: ports.VerbosityNormal,
		redactor:  redact.New(),
		progress:  true,
	}

	for _, opt := range opts {
		opt(w)
	}

	w.initColors()
	return w
}

// ConsoleOption configures the console writer.
type ConsoleOption func(*ConsoleWriter)

// WithOutput sets the output writer.
func WithOutput(out io.Writer) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.out = out
	}
}

// WithErrorOutput sets the error output writer.
func WithErrorOutput(err io.Writer) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.err = err
	}
}

// WithColor enables or disables colored output.
func WithColor(enabled bool) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.color = enabled
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v ports.Verbosity) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.verbosity = v
	}
}

// WithFixGuidePath sets the fix guide location mentioned in the summary.
func WithFixGuidePath(path string) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.fixGuidePath = path
	}
}

// WithProgressLines enables or disables ">>>" progress lines.
func WithProgressLines(enabled bool) ConsoleOption {
	return func(w *ConsoleWriter) {
		w.progress = enabled
	}
}

// initColors initializes color functions based on color setting.
func (w *ConsoleWriter) initColors() {
	if w.color {
		w.red = color.New(color.FgRed).SprintFunc()
		w.green = color.New(color.FgGreen).SprintFunc()
		w.yellow = color.New(color.FgYellow).SprintFunc()
		w.blue = color.New(color.FgBlue).SprintFunc()
		w.cyan = color.New(color.FgCyan).SprintFunc()
		w.bold = color.New(color.Bold).SprintFunc()
		w.dim = color.New(color.Faint).SprintFunc()
	} else {
		noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
		w.red = noColor
		w.green = noColor
		w.yellow = noColor
		w.blue = noColor
		w.cyan = noColor
		w.bold = noColor
		w.dim = noColor
	}
}

// SetColor enables or disables colored output.
func (w *ConsoleWriter) SetColor(enabled bool) {
	w.color = enabled
	w.initColors()
}

// SetVerbosity sets the output detail level.
func (w *ConsoleWriter) SetVerbosity(v ports.Verbosity) {
	w.verbosity = v
}

// WriteReport lists the findings in verbose mode. The summary is written
// separately by WriteSummary.
func (w *ConsoleWriter) WriteReport(r *report.ConsolidatedReport, _ services.FixGuide) error {
	if !w.verbose() || r.TotalFindings() == 0 {
		return nil
	}

	w.writeHeader(r)
	fmt.Fprintf(w.out, "%s\n", w.bold("Findings"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("-", 40))
	for _, sev := range finding.SeveritiesDescending() {
		for _, f := range r.FindingsBySeverity(sev) {
			w.writeFinding(f)
		}
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteSummary writes the histogram, risk score, discrepancy and errors.
func (w *ConsoleWriter) WriteSummary(r *report.ConsolidatedReport, guide services.FixGuide) error {
	if w.verbosity == ports.VerbosityQuiet {
		fmt.Fprintf(w.out, "risk=%d tier=%s findings=%d\n", r.RiskScore(), r.RiskTier(), r.TotalFindings())
		return nil
	}

	hist := r.Histogram()
	fmt.Fprintf(w.out, "%s\n", w.bold("Summary"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(w.out, "Total Findings: %d\n", r.TotalFindings())
	fmt.Fprintf(w.out, "  %s: %d\n", w.red("Critical"), hist[finding.SeverityCritical])
	fmt.Fprintf(w.out, "  %s: %d\n", w.red("High"), hist[finding.SeverityHigh])
	fmt.Fprintf(w.out, "  %s: %d\n", w.yellow("Medium"), hist[finding.SeverityMedium])
	fmt.Fprintf(w.out, "  %s: %d\n", w.blue("Low"), hist[finding.SeverityLow])
	if scanners := r.ScannersUsed(); len(scanners) > 0 {
		fmt.Fprintf(w.out, "Scanners: %s\n", strings.Join(scanners, ", "))
	}
	fmt.Fprintln(w.out)

	fmt.Fprintf(w.out, "%s: %d (%s)\n", w.bold("Risk Score"), r.RiskScore(), w.tierString(r.RiskTier()))

	if d := r.Discrepancy(); d != nil && d.Flagged {
		w.writeDiscrepancy(d)
	}

	if errs := r.Errors(); len(errs) > 0 {
		fmt.Fprintln(w.out)
		fmt.Fprintf(w.out, "%s\n", w.yellow(fmt.Sprintf("%d input(s) could not be processed:", len(errs))))
		for _, e := range errs {
			fmt.Fprintf(w.out, "  - [%s] %s: %s\n", e.Kind, e.Source, e.Message)
		}
	}

	if !guide.IsEmpty() {
		fmt.Fprintln(w.out)
		target := "the fix guide"
		if w.fixGuidePath != "" {
			target = w.cyan(w.fixGuidePath)
		}
		fmt.Fprintf(w.out, "%d high-impact finding(s) ranked in %s\n", guide.Len(), target)
	}

	fmt.Fprintf(w.out, "%s\n", strings.Repeat("=", 40))
	return nil
}

// WriteProgress writes a progress message.
func (w *ConsoleWriter) WriteProgress(message string) error {
	if w.verbosity == ports.VerbosityQuiet || !w.progress {
		return nil
	}

	fmt.Fprintf(w.out, "%s %s\n", w.dim(">>>"), message)
	return nil
}

// WriteError writes an error message.
func (w *ConsoleWriter) WriteError(err error) error {
	fmt.Fprintf(w.err, "%s %s\n", w.red("ERROR:"), err.Error())
	return nil
}

// Flush ensures all output is written.
func (w *ConsoleWriter) Flush() error {
	return nil
}

func (w *ConsoleWriter) verbose() bool {
	return w.verbosity == ports.VerbosityVerbose || w.verbosity == ports.VerbosityDebug
}

func (w *ConsoleWriter) writeHeader(r *report.ConsolidatedReport) {
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "%s\n", w.bold("Security Triage Report"))
	fmt.Fprintf(w.out, "%s\n", strings.Repeat("=", 40))
	fmt.Fprintf(w.out, "Run ID: %s\n", r.RunID())
	fmt.Fprintf(w.out, "Generated: %s\n", r.GeneratedAt().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintln(w.out)
}

func (w *ConsoleWriter) writeFinding(f *finding.Finding) {
	fmt.Fprintf(w.out, "\n%s %s\n", w.severityString(f.Severity()), w.bold(f.Title()))
	if f.Location().HasFile() {
		fmt.Fprintf(w.out, "  %s %s\n", w.dim("Location:"), f.Location())
	}
	fmt.Fprintf(w.out, "  %s %s [%s]\n", w.dim("Rule:"), f.RuleID(), f.Scanner())
	fmt.Fprintf(w.out, "  %s %s\n", w.dim("Category:"), f.Category())

	if w.verbosity == ports.VerbosityDebug && f.Description() != "" {
		// Scanner descriptions occasionally echo the matched secret.
		fmt.Fprintf(w.out, "  %s %s\n", w.dim("Description:"), w.redactor.RedactString(f.Description()))
	}
}

func (w *ConsoleWriter) writeDiscrepancy(d *report.Discrepancy) {
	fmt.Fprintln(w.out)
	if !d.GatePresent {
		fmt.Fprintf(w.out, "%s no security gate result was supplied for %d finding(s)\n",
			w.yellow("WARNING:"), d.ActualCount)
		return
	}
	fmt.Fprintf(w.out, "%s security gate reported %d finding(s) but %d were found (under-reported by %d)\n",
		w.red("GATE DISCREPANCY:"), d.GateReportedCount, d.ActualCount, d.UnderReportedBy)
	if d.GatePassed != nil && *d.GatePassed {
		fmt.Fprintf(w.out, "  %s\n", w.red("the gate passed despite unreported findings"))
	}
}

func (w *ConsoleWriter) tierString(tier report.RiskTier) string {
	switch tier {
	case report.TierClean:
		return w.green(string(tier))
	case report.TierLowMedium:
		return w.yellow(string(tier))
	case report.TierHigh, report.TierCritical:
		return w.red(string(tier))
	default:
		return string(tier)
	}
}

// severityString returns a colored severity string.
func (w *ConsoleWriter) severityString(sev finding.Severity) string {
	switch sev {
	case finding.SeverityCritical:
		return w.red("[CRITICAL]")
	case finding.SeverityHigh:
		return w.red("[HIGH]")
	case finding.SeverityMedium:
		return w.yellow("[MEDIUM]")
	case finding.SeverityLow:
		return w.blue("[LOW]")
	default:
		return "[UNKNOWN]"
	}
}

// Ensure ConsoleWriter implements the interface.
var _ ports.ConsoleWriter = (*ConsoleWriter)(nil)
