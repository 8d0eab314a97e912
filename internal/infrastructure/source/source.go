// Package source provides SourceFetcher implementations that read the code
// a finding points at, from the working tree, git history or a code host.
package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

// ProviderName selects a fetcher implementation.
type ProviderName string

const (
	ProviderAuto   ProviderName = "auto"
	ProviderLocal  ProviderName = "local"
	ProviderGitHub ProviderName = "github"
	ProviderGitLab ProviderName = "gitlab"
	ProviderNone   ProviderName = "none"
)

// Common errors.
var (
	ErrMissingToken         = errors.New("authentication token not configured")
	ErrMissingRepository    = errors.New("repository not configured")
	ErrUnsupportedProvider  = errors.New("unsupported source provider")
	ErrInvalidConfiguration = errors.New("invalid source configuration")
	ErrInvalidRef           = errors.New("invalid git ref")
)

// Config contains the settings shared by all fetchers.
type Config struct {
	// Provider selects the fetcher; auto detects from the CI environment.
	Provider ProviderName

	// Root is the working tree for the local fetcher.
	Root string

	// Repository is owner/repo on GitHub or group/project on GitLab.
	Repository string

	// BaseURL overrides the API endpoint for self-hosted instances.
	BaseURL string

	// Token authenticates against the code host.
	Token string
}

// ParseProviderName converts a string to ProviderName.
func ParseProviderName(s string) (ProviderName, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return ProviderAuto, nil
	case "local", "git":
		return ProviderLocal, nil
	case "github", "gh":
		return ProviderGitHub, nil
	case "gitlab", "gl":
		return ProviderGitLab, nil
	case "none", "off", "disabled":
		return ProviderNone, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, s)
	}
}

// splitLines numbers the lines of content. A trailing newline does not
// produce an extra empty line; CRLF endings are trimmed.
func splitLines(content []byte) []ports.SourceLine {
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return []ports.SourceLine{}
	}
	raw := strings.Split(text, "\n")
	lines := make([]ports.SourceLine, len(raw))
	for i, l := range raw {
		lines[i] = ports.SourceLine{Number: i + 1, Text: strings.TrimSuffix(l, "\r")}
	}
	return lines
}

// window returns lines start..end, 1-based and inclusive. An end of 0 or
// less means through the end of the file.
func window(lines []ports.SourceLine, start, end int) []ports.SourceLine {
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return []ports.SourceLine{}
	}
	return lines[start-1 : end]
}

// cleanRepoPath turns a finding path into a repository-relative one.
func cleanRepoPath(path string) (string, error) {
	p, err := pathutil.RepoRelative(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidConfiguration, path, err)
	}
	return p, nil
}
