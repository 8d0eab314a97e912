package usecases

import (
	"fmt"
	"strings"
)

// InputNotFoundError means no artifacts could be located or read at all.
// It is fatal for the run, unlike a per-artifact ParseError.
type InputNotFoundError struct {
	Paths []string
	Err   error
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("no readable artifacts in %s: %v", strings.Join(e.Paths, ", "), e.Err)
}

func (e *InputNotFoundError) Unwrap() error { return e.Err }
