package writers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

// writeFileAtomic replaces path with data through a temp file in the same
// directory, so readers never observe a partial report.
func writeFileAtomic(path string, data []byte) error {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(cleanPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", cleanPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", cleanPath, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", cleanPath, err)
	}
	if err := os.Rename(tmpName, cleanPath); err != nil {
		return fmt.Errorf("failed to replace %s: %w", cleanPath, err)
	}
	return nil
}
