package ports

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/domain/finding"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// AdapterID uniquely identifies a scanner output adapter.
type AdapterID string

// Known adapter IDs.
const (
	AdapterBandit   AdapterID = "bandit"
	AdapterCheckov  AdapterID = "checkov"
	AdapterTrivy    AdapterID = "trivy"
	AdapterTfsec    AdapterID = "tfsec"
	AdapterKics     AdapterID = "kics"
	AdapterSemgrep  AdapterID = "semgrep"
	AdapterGitleaks AdapterID = "gitleaks"
	AdapterGosec    AdapterID = "gosec"
	AdapterConftest AdapterID = "conftest"
	AdapterHadolint AdapterID = "hadolint"
	AdapterNpmAudit AdapterID = "npm-audit"
	AdapterGrype    AdapterID = "grype"
	AdapterSARIF    AdapterID = "sarif"
	AdapterGeneric  AdapterID = "generic"
	AdapterGate     AdapterID = "gate"
)

// Artifact is one scanner output file handed to the engine.
type Artifact struct {
	Name string // slash-separated name relative to the input root
	Path string // filesystem path
	Data []byte
}

// RawFinding is an adapter's view of one finding before normalization.
// Severity is still in the tool's own vocabulary.
type RawFinding struct {
	Scanner     string // producing tool when it differs from the adapter (SARIF, generic)
	RuleID      string
	Title       string
	Description string
	Severity    string
	File        string
	Line        int
	Category    finding.Category
	Remediation string
	References  []string
	Raw         json.RawMessage // the scanner's original fragment
}

// ParseResult is what an adapter extracts from one artifact. Gate is set
// only by adapters that read pipeline gate status artifacts.
type ParseResult struct {
	Findings []RawFinding
	Gate     *report.GateStatus
}

// AdapterInfo describes an adapter for catalogs and diagnostics.
type AdapterInfo struct {
	ID          AdapterID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    finding.Category `json:"category"`
	Keywords    []string         `json:"keywords"`
	TableVer    string           `json:"severity_table_version"`
}

// Adapter translates one scanner's native output into raw findings.
// Implementations must be pure: no I/O beyond the given bytes.
type Adapter interface {
	// ID returns the unique identifier for this adapter.
	ID() AdapterID

	// Info returns catalog metadata.
	Info() AdapterInfo

	// Keywords returns the filename substrings that select this adapter.
	Keywords() []string

	// SeverityTable returns the versioned native-to-canonical severity map.
	SeverityTable() finding.SeverityTable

	// Parse extracts findings from an artifact's bytes. A ParseError means
	// the artifact is unusable; the run continues without it.
	Parse(data []byte) (ParseResult, error)
}

// ContentDetector is implemented by adapters that can recognize their
// format from the document itself when the filename gives no hint.
type ContentDetector interface {
	Detect(data []byte) bool
}

// ExtensionClaimer is implemented by adapters whose format owns a file
// extension. A claimed extension outranks keyword matches, so
// "semgrep.sarif" goes to the SARIF adapter.
type ExtensionClaimer interface {
	Extensions() []string
}

// AdapterRegistry manages available adapters.
type AdapterRegistry interface {
	// Register adds an adapter to the registry.
	Register(adapter Adapter)

	// Get returns an adapter by ID.
	Get(id AdapterID) (Adapter, bool)

	// All returns all registered adapters sorted by ID.
	All() []Adapter

	// Resolve picks the adapter for an artifact, falling back to the
	// generic adapter when nothing matches.
	Resolve(artifact Artifact) Adapter
}

// ParseError reports that one adapter could not parse one artifact.
type ParseError struct {
	Artifact string
	Adapter  AdapterID
	Err      error
}

// NewParseError creates a parse error.
func NewParseError(artifact string, adapter AdapterID, err error) *ParseError {
	return &ParseError{Artifact: artifact, Adapter: adapter, Err: err}
}

func (e *ParseError) Error() string {
	if e.Artifact == "" {
		return fmt.Sprintf("%s: parse failed: %v", e.Adapter, e.Err)
	}
	return fmt.Sprintf("%s: failed to parse %s: %v", e.Adapter, e.Artifact, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
