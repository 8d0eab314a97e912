package ports

import (
	"context"
	"errors"
	"fmt"
)

// ErrFileNotFound is returned when a file does not exist at the requested ref.
var ErrFileNotFound = errors.New("file not found at ref")

// SourceLine is one numbered line of a source file.
type SourceLine struct {
	Number int
	Text   string
}

// SourceFetcher reads source lines from a code host or working tree.
type SourceFetcher interface {
	// FetchFileLines returns lines start..end (1-based, inclusive) of path
	// at ref. An end of 0 or less means through the end of the file.
	FetchFileLines(ctx context.Context, ref, path string, start, end int) ([]SourceLine, error)

	// Name identifies the fetcher in logs.
	Name() string
}

// FetchError reports a failed source fetch for one (ref, path) pair.
type FetchError struct {
	Ref  string
	Path string
	Err  error
}

// NewFetchError creates a fetch error.
func NewFetchError(ref, path string, err error) *FetchError {
	return &FetchError{Ref: ref, Path: path, Err: err}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s@%s: %v", e.Path, e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
