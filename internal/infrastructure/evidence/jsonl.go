// Package evidence provides append-only EvidenceLog implementations.
package evidence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/pkg/pathutil"
)

// ErrClosed is returned when logging to a closed evidence log.
var ErrClosed = errors.New("evidence log is closed")

// JSONLLog appends one JSON object per line to a file. The file is opened
// in append mode, so earlier records are never rewritten.
type JSONLLog struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// OpenJSONL opens (creating if needed) the evidence file at path.
func OpenJSONL(path string) (*JSONLLog, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid evidence path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}

	// #nosec G304 - path is validated above
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence log: %w", err)
	}
	return &JSONLLog{file: f, path: cleanPath}, nil
}

// Path returns the evidence file path.
func (l *JSONLLog) Path() string { return l.path }

// Log appends record as a single line.
func (l *JSONLLog) Log(_ context.Context, record report.EvidenceRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ErrClosed
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("failed to append evidence record: %w", err)
	}
	return nil
}

// Close syncs and closes the file. Closing twice is a no-op.
func (l *JSONLLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync evidence log: %w", err)
	}
	return f.Close()
}

// ReadJSONL returns every record in an evidence file, in append order.
func ReadJSONL(path string) ([]report.EvidenceRecord, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid evidence path: %w", err)
	}
	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read evidence log: %w", err)
	}

	var records []report.EvidenceRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec report.EvidenceRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("corrupt evidence record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

var _ ports.EvidenceLog = (*JSONLLog)(nil)
