// Package artifacts locates scanner output files on disk.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

// maxArtifactBytes bounds one artifact; larger files are not scanner output
// the engine can reasonably hold.
const maxArtifactBytes = 256 << 20

// Options configures artifact discovery.
type Options struct {
	// Extensions are the file suffixes collected when walking directories.
	Extensions []string

	// ExcludePatterns are glob patterns, matched against slash names, that
	// are skipped while walking.
	ExcludePatterns []string

	// MaxDepth limits the directory search depth (0 = unlimited).
	MaxDepth int
}

// DefaultOptions returns the discovery defaults.
func DefaultOptions() Options {
	return Options{
		Extensions: []string{".json", ".sarif"},
		ExcludePatterns: []string{
			".git",
			"node_modules",
			".triage",
		},
		MaxDepth: 10,
	}
}

// Discovery finds artifacts in files and directories.
type Discovery struct {
	opts Options
}

// NewDiscovery creates a new artifact discovery.
func NewDiscovery(opts Options) *Discovery {
	return &Discovery{opts: opts}
}

// Discover expands paths into artifacts. Explicit files are taken as-is,
// whatever their extension; directories are walked. Artifact names are
// relative to the directory they were found in, or the base name for
// explicit files, and the result is sorted by name.
//
// A missing, unreadable or oversized input is skipped and reported in a
// *ports.SkippedPathsError alongside whatever else was read. Only a
// cancelled context aborts discovery.
func (d *Discovery) Discover(ctx context.Context, paths []string) ([]ports.Artifact, error) {
	if len(paths) == 0 {
		return nil, ports.ErrNoArtifacts
	}

	var found []ports.Artifact
	var skipped []ports.SkippedPath
	seen := make(map[string]bool)
	add := func(a ports.Artifact) {
		if seen[a.Path] {
			return
		}
		seen[a.Path] = true
		found = append(found, a)
	}
	skip := func(path string, err error) {
		skipped = append(skipped, ports.SkippedPath{Path: path, Err: err})
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clean, err := pathutil.ValidatePath(p)
		if err != nil {
			skip(p, fmt.Errorf("invalid artifact path %q: %w", p, err))
			continue
		}
		info, err := os.Stat(clean)
		if errors.Is(err, fs.ErrNotExist) {
			skip(p, fmt.Errorf("%w: %s", ports.ErrArtifactNotFound, p))
			continue
		}
		if err != nil {
			skip(p, fmt.Errorf("failed to stat %s: %w", p, err))
			continue
		}

		if !info.IsDir() {
			a, err := d.read(clean, filepath.Base(clean))
			if err != nil {
				skip(p, err)
				continue
			}
			add(a)
			continue
		}

		arts, walkSkipped, err := d.walk(ctx, clean)
		if err != nil {
			return nil, err
		}
		skipped = append(skipped, walkSkipped...)
		for _, a := range arts {
			add(a)
		}
	}

	var skipErr error
	if len(skipped) > 0 {
		skipErr = &ports.SkippedPathsError{Skipped: skipped}
	}
	if len(found) == 0 {
		if skipErr != nil {
			return nil, skipErr
		}
		return nil, ports.ErrNoArtifacts
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].Path < found[j].Path
	})
	return found, skipErr
}

// Load reads a single artifact file.
func (d *Discovery) Load(_ context.Context, path string) (ports.Artifact, error) {
	clean, err := pathutil.ValidatePath(path)
	if err != nil {
		return ports.Artifact{}, fmt.Errorf("invalid artifact path %q: %w", path, err)
	}
	info, err := os.Stat(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.Artifact{}, fmt.Errorf("%w: %s", ports.ErrArtifactNotFound, path)
	}
	if err != nil {
		return ports.Artifact{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return ports.Artifact{}, fmt.Errorf("%s is a directory", path)
	}
	return d.read(clean, filepath.Base(clean))
}

// walk collects artifacts under root. Unreadable entries are skipped; the
// returned error is non-nil only when ctx is done.
func (d *Discovery) walk(ctx context.Context, root string) ([]ports.Artifact, []ports.SkippedPath, error) {
	var out []ports.Artifact
	var skipped []ports.SkippedPath
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			skipped = append(skipped, ports.SkippedPath{
				Path: path,
				Err:  fmt.Errorf("failed to discover artifacts in %s: %w", path, err),
			})
			if entry != nil && entry.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		name := filepath.ToSlash(rel)

		if entry.IsDir() {
			if path == root {
				return nil
			}
			if d.shouldExclude(name) {
				return filepath.SkipDir
			}
			if d.opts.MaxDepth > 0 && strings.Count(name, "/") >= d.opts.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !d.hasExtension(name) || d.shouldExclude(name) {
			return nil
		}

		a, err := d.read(path, name)
		if err != nil {
			skipped = append(skipped, ports.SkippedPath{Path: path, Err: err})
			return nil
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, skipped, nil
}

func (d *Discovery) read(path, name string) (ports.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ports.Artifact{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxArtifactBytes {
		return ports.Artifact{}, fmt.Errorf("artifact %s exceeds %d bytes", name, maxArtifactBytes)
	}
	// #nosec G304 -- path comes from validated user input or a directory walk under it
	data, err := os.ReadFile(path)
	if err != nil {
		return ports.Artifact{}, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return ports.Artifact{Name: name, Path: path, Data: data}, nil
}

func (d *Discovery) hasExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range d.opts.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// shouldExclude checks the path and each of its segments against the
// exclusion patterns.
func (d *Discovery) shouldExclude(name string) bool {
	segments := strings.Split(name, "/")
	for _, pattern := range d.opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		for _, seg := range segments {
			if matched, _ := filepath.Match(pattern, seg); matched {
				return true
			}
		}
	}
	return false
}
