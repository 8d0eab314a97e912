package writers

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// MarkdownWriter renders the fix guide as fix-guide.md. Nothing is written
// for an empty guide, and a guide left over from an earlier run is removed.
type MarkdownWriter struct {
	out  io.Writer
	path string
}

// MarkdownOption configures the markdown writer.
type MarkdownOption func(*MarkdownWriter)

// WithMarkdownOutput renders to a stream.
func WithMarkdownOutput(out io.Writer) MarkdownOption {
	return func(w *MarkdownWriter) {
		w.out = out
		w.path = ""
	}
}

// WithMarkdownFile renders to path.
func WithMarkdownFile(path string) MarkdownOption {
	return func(w *MarkdownWriter) {
		w.path = path
	}
}

// NewMarkdownWriter creates a new fix guide writer.
func NewMarkdownWriter(opts ...MarkdownOption) *MarkdownWriter {
	w := &MarkdownWriter{out: os.Stdout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the destination file, or "" for a stream.
func (w *MarkdownWriter) Path() string { return w.path }

// WriteReport renders the guide.
func (w *MarkdownWriter) WriteReport(r *report.ConsolidatedReport, guide services.FixGuide) error {
	if guide.IsEmpty() {
		if w.path != "" {
			if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove stale fix guide: %w", err)
			}
		}
		return nil
	}

	content := RenderFixGuide(r, guide)
	if w.path != "" {
		return writeFileAtomic(w.path, []byte(content))
	}
	if _, err := io.WriteString(w.out, content); err != nil {
		return fmt.Errorf("failed to write fix guide: %w", err)
	}
	return nil
}

// WriteSummary is a no-op.
func (w *MarkdownWriter) WriteSummary(*report.ConsolidatedReport, services.FixGuide) error {
	return nil
}

// WriteProgress is a no-op.
func (w *MarkdownWriter) WriteProgress(string) error { return nil }

// WriteError is a no-op.
func (w *MarkdownWriter) WriteError(error) error { return nil }

// Flush is a no-op.
func (w *MarkdownWriter) Flush() error { return nil }

// RenderFixGuide returns the markdown document for a non-empty guide.
func RenderFixGuide(r *report.ConsolidatedReport, guide services.FixGuide) string {
	var b strings.Builder

	b.WriteString("# Security Fix Guide\n\n")
	fmt.Fprintf(&b, "%d finding(s) need attention, ordered by severity.\n\n", guide.Len())
	if r != nil {
		fmt.Fprintf(&b, "| Risk score | Tier | Total findings | Generated |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %d | %s | %d | %s |\n\n",
			r.RiskScore(), r.RiskTier(), r.TotalFindings(), r.GeneratedAt().Format("2006-01-02T15:04:05Z"))
		if d := r.Discrepancy(); d != nil && d.Flagged && d.GatePresent {
			fmt.Fprintf(&b, "> **Gate discrepancy:** the security gate reported %d finding(s) but %d were found.\n\n",
				d.GateReportedCount, d.ActualCount)
		}
	}

	for _, e := range guide.Entries {
		f := e.Finding
		fmt.Fprintf(&b, "## %d. [%s] %s\n\n", e.Rank, strings.ToUpper(f.Severity().String()), escapeMarkdown(f.Title()))
		fmt.Fprintf(&b, "- **Scanner:** %s\n", f.Scanner())
		if f.RuleID() != "" {
			fmt.Fprintf(&b, "- **Rule:** `%s`\n", f.RuleID())
		}
		if f.Location().HasFile() {
			fmt.Fprintf(&b, "- **Location:** `%s`\n", f.Location().String())
		}
		b.WriteString("\n")

		if desc := strings.TrimSpace(f.Description()); desc != "" {
			b.WriteString(desc)
			b.WriteString("\n\n")
		}

		if e.ContextAvailable && len(e.Context) > 0 {
			fmt.Fprintf(&b, "```%s\n", fenceLanguage(f.File()))
			width := len(fmt.Sprint(e.Context[len(e.Context)-1].Number))
			for _, l := range e.Context {
				marker := " "
				if l.Marked {
					marker = ">"
				}
				fmt.Fprintf(&b, "%s %*d | %s\n", marker, width, l.Number, l.Text)
			}
			b.WriteString("```\n\n")
		} else if e.ContextReason != "" {
			fmt.Fprintf(&b, "_Source context unavailable: %s._\n\n", e.ContextReason)
		}

		fmt.Fprintf(&b, "**Recommended fix:** %s\n\n", e.Recommendation)

		if refs := f.References(); len(refs) > 0 {
			b.WriteString("References:\n")
			for _, ref := range refs {
				fmt.Fprintf(&b, "- %s\n", ref)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

var fenceLanguages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".java": "java",
	".rb":   "ruby",
	".php":  "php",
	".cs":   "csharp",
	".tf":   "hcl",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
	".sh":   "bash",
	".xml":  "xml",
}

func fenceLanguage(file string) string {
	base := strings.ToLower(path.Base(file))
	if base == "dockerfile" || strings.HasPrefix(base, "dockerfile.") || strings.HasSuffix(base, ".dockerfile") {
		return "dockerfile"
	}
	return fenceLanguages[path.Ext(base)]
}

var markdownEscaper = strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`", "[", "\\[", "]", "\\]", "<", "&lt;")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var _ ports.ArtifactWriter = (*MarkdownWriter)(nil)
