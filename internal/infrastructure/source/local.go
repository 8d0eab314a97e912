package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

// WorktreeRef reads files from disk instead of git history.
const WorktreeRef = "WORKTREE"

// gitRunner runs git in dir and returns stdout.
type gitRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// LocalFetcher reads files from a local checkout. Any ref other than
// WorktreeRef (or empty) is resolved with `git show <ref>:<path>`.
type LocalFetcher struct {
	root string
	git  gitRunner
}

// NewLocalFetcher creates a fetcher rooted at root.
func NewLocalFetcher(root string) *LocalFetcher {
	if root == "" {
		root = "."
	}
	return &LocalFetcher{root: root, git: runGit}
}

// Name identifies the fetcher in logs.
func (f *LocalFetcher) Name() string { return string(ProviderLocal) }

// FetchFileLines returns lines start..end of path at ref.
func (f *LocalFetcher) FetchFileLines(ctx context.Context, ref, path string, start, end int) ([]ports.SourceLine, error) {
	rel, err := cleanRepoPath(path)
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}

	var content []byte
	if ref == "" || ref == WorktreeRef {
		content, err = f.readWorktree(rel)
	} else {
		// git would read a leading dash as an option
		if strings.HasPrefix(ref, "-") {
			return nil, ports.NewFetchError(ref, path, fmt.Errorf("%w: %q", ErrInvalidRef, ref))
		}
		content, err = f.git(ctx, f.root, "show", ref+":"+rel)
		if err != nil && isMissingInGit(err) {
			err = fmt.Errorf("%w: %s", ports.ErrFileNotFound, rel)
		}
	}
	if err != nil {
		return nil, ports.NewFetchError(ref, path, err)
	}
	return window(splitLines(content), start, end), nil
}

func (f *LocalFetcher) readWorktree(rel string) ([]byte, error) {
	full, err := pathutil.ValidatePathInDir(filepath.Join(f.root, filepath.FromSlash(rel)), f.root)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- full is validated to stay under the source root
	content, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ports.ErrFileNotFound, rel)
	}
	return content, err
}

type gitError struct {
	args   []string
	stderr string
	err    error
}

func (e *gitError) Error() string {
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.args, " "), e.err, strings.TrimSpace(e.stderr))
}

func (e *gitError) Unwrap() error { return e.err }

func isMissingInGit(err error) bool {
	var gerr *gitError
	if !errors.As(err, &gerr) {
		return false
	}
	return strings.Contains(gerr.stderr, "does not exist in") || strings.Contains(gerr.stderr, "exists on disk, but not in")
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	// #nosec G204 -- args are a fixed subcommand plus a ref:path pair
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &gitError{args: args, stderr: stderr.String(), err: err}
	}
	return stdout.Bytes(), nil
}
