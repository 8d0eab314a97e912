package mocks

import (
	"sync"

	"github.com/felixgeelhaar/triagesec/internal/domain/report"
	"github.com/felixgeelhaar/triagesec/internal/domain/services"
)

// MockWriter captures what the use case writes.
type MockWriter struct {
	mu        sync.Mutex
	Report    *report.ConsolidatedReport
	Guide     services.FixGuide
	Summaries int
	Progress  []string
	Errors    []error
	ReportErr error
}

// WriteReport records the report and guide.
func (m *MockWriter) WriteReport(r *report.ConsolidatedReport, guide services.FixGuide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReportErr != nil {
		return m.ReportErr
	}
	m.Report = r
	m.Guide = guide
	return nil
}

// WriteSummary counts summary writes.
func (m *MockWriter) WriteSummary(*report.ConsolidatedReport, services.FixGuide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries++
	return nil
}

// WriteProgress records a progress message.
func (m *MockWriter) WriteProgress(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Progress = append(m.Progress, message)
	return nil
}

// WriteError records an error.
func (m *MockWriter) WriteError(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, err)
	return nil
}

// Flush is a no-op.
func (m *MockWriter) Flush() error { return nil }
