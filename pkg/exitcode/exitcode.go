// Package exitcode defines exit codes for the triage CLI.
package exitcode

import (
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// Exit codes follow a standard convention:
// 0 = Success (no critical or high findings)
// 1 = Critical or high findings present
// 2 = Inputs unreadable, invariant violation or configuration error
const (
	// Success indicates no critical or high findings.
	Success = 0

	// HighImpact indicates at least one critical or high finding.
	HighImpact = 1

	// Error indicates the run could not produce a trustworthy report.
	Error = 2
)

// FromReport converts a finished report to an exit code. Recovered
// per-artifact errors do not change the code; a nil report is an error.
func FromReport(r *report.ConsolidatedReport) int {
	if r == nil {
		return Error
	}
	if r.HasHighImpact() {
		return HighImpact
	}
	return Success
}

// FromError returns Error for any non-nil err and Success otherwise.
func FromError(err error) int {
	if err != nil {
		return Error
	}
	return Success
}

// Description returns a human-readable description of the exit code.
func Description(code int) string {
	switch code {
	case Success:
		return "No critical or high findings"
	case HighImpact:
		return "Critical or high findings present"
	case Error:
		return "Input, invariant or configuration error"
	default:
		return "Unknown exit code"
	}
}

// IsSuccess returns true if the exit code indicates success.
func IsSuccess(code int) bool {
	return code == Success
}

// IsHighImpact returns true if the exit code signals critical or high findings.
func IsHighImpact(code int) bool {
	return code == HighImpact
}

// IsError returns true if the exit code indicates an error.
func IsError(code int) bool {
	return code == Error
}
