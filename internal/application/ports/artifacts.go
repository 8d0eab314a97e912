package ports

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNoArtifacts is returned when discovery found nothing to analyze.
	ErrNoArtifacts = errors.New("no scanner artifacts found")

	// ErrArtifactNotFound is returned when an input path does not exist.
	ErrArtifactNotFound = errors.New("artifact path not found")
)

// SkippedPath is an input, or a file under one, that could not be read.
type SkippedPath struct {
	Path string
	Err  error
}

// SkippedPathsError lists the inputs Discover skipped. It accompanies any
// artifacts that were read, and is returned alone when none were.
type SkippedPathsError struct {
	Skipped []SkippedPath
}

func (e *SkippedPathsError) Error() string {
	msgs := make([]string, 0, len(e.Skipped))
	for _, s := range e.Skipped {
		msgs = append(msgs, s.Err.Error())
	}
	return "skipped unreadable inputs: " + strings.Join(msgs, "; ")
}

func (e *SkippedPathsError) Unwrap() []error {
	errs := make([]error, 0, len(e.Skipped))
	for _, s := range e.Skipped {
		errs = append(errs, s.Err)
	}
	return errs
}

// ArtifactSource locates and reads scanner artifacts.
type ArtifactSource interface {
	// Discover expands files and directories into artifacts, sorted by
	// slash-separated name. Inputs that cannot be read do not stop the
	// others: they are reported in a *SkippedPathsError returned next to
	// the artifacts that were found.
	Discover(ctx context.Context, paths []string) ([]Artifact, error)

	// Load reads a single artifact.
	Load(ctx context.Context, path string) (Artifact, error)
}
