package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// MockSourceFetcher serves files from memory and counts fetches per path.
type MockSourceFetcher struct {
	mu    sync.Mutex
	Files map[string]string // path -> content
	Errs  map[string]error  // path -> error to return
	calls map[string]int
	NameV string
}

// NewMockSourceFetcher creates a fetcher for the given files.
func NewMockSourceFetcher(files map[string]string) *MockSourceFetcher {
	return &MockSourceFetcher{
		Files: files,
		Errs:  make(map[string]error),
		calls: make(map[string]int),
		NameV: "mock",
	}
}

// FetchFileLines returns lines start..end of the file.
func (m *MockSourceFetcher) FetchFileLines(ctx context.Context, _ string, path string, start, end int) ([]ports.SourceLine, error) {
	m.mu.Lock()
	m.calls[path]++
	err := m.Errs[path]
	content, ok := m.Files[path]
	m.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ports.ErrFileNotFound
	}

	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return []ports.SourceLine{}, nil
	}
	out := make([]ports.SourceLine, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, ports.SourceLine{Number: i, Text: lines[i-1]})
	}
	return out, nil
}

// Name identifies the fetcher.
func (m *MockSourceFetcher) Name() string { return m.NameV }

// Calls returns how many times path was fetched.
func (m *MockSourceFetcher) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// TotalCalls returns the number of fetches across all paths.
func (m *MockSourceFetcher) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}
