package report

// ErrorKind classifies a recovered, per-item failure recorded in a report.
type ErrorKind string

const (
	ErrorKindParse ErrorKind = "parse"
	ErrorKindFetch ErrorKind = "fetch"
	ErrorKindRead  ErrorKind = "read"
)

// RunError is a failure the run recovered from. It is kept in the report so
// a dropped artifact or missing context stays auditable.
type RunError struct {
	Kind    ErrorKind `json:"kind"`
	Source  string    `json:"source"`
	Adapter string    `json:"adapter,omitempty"`
	Message string    `json:"message"`
}
