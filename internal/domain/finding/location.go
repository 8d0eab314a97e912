package finding

import (
	"fmt"
	"strings"
)

// Location is the repository-relative position a finding points at.
// An empty file means the finding is not file-scoped; line 0 means it is
// not line-scoped. Paths are normalized to forward slashes so keys built
// from them are identical across platforms.
type Location struct {
	file string
	line int
}

// NewLocation creates a Location, normalizing the path and clamping
// negative lines to 0.
func NewLocation(file string, line int) Location {
	if line < 0 {
		line = 0
	}
	return Location{
		file: NormalizePath(file),
		line: line,
	}
}

// containerMounts are the absolute directories scanners mount the
// repository at.
var containerMounts = []string{"/scan/", "/src/", "/github/workspace/"}

// NormalizePath converts scanner-reported paths into repository-relative,
// slash-separated form. Scanners running in containers report paths such as
// "../../scan/main.tf" or "/src/app.py". Leading "./" and "../" are
// stripped, as is a container mount reached from the filesystem root or
// through "../". A repository-relative "scan/handler.go" is kept as is.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")
	escaped := false
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
		escaped = true
	}
	p = strings.TrimPrefix(p, "./")
	for _, mount := range containerMounts {
		if escaped {
			mount = strings.TrimPrefix(mount, "/")
		}
		if strings.HasPrefix(p, mount) {
			return strings.TrimPrefix(p, mount)
		}
	}
	return p
}

// File returns the normalized file path.
func (l Location) File() string { return l.file }

// Line returns the 1-based line number, or 0.
func (l Location) Line() int { return l.line }

// HasFile reports whether the finding is file-scoped.
func (l Location) HasFile() bool { return l.file != "" }

// HasLine reports whether the finding points at a concrete line in a file.
func (l Location) HasLine() bool { return l.file != "" && l.line > 0 }

// String returns a human-readable string representation.
func (l Location) String() string {
	if l.line > 0 {
		return fmt.Sprintf("%s:%d", l.file, l.line)
	}
	return l.file
}
