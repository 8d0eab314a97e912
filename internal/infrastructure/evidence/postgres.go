package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// DefaultTable is the evidence table used when none is configured.
const DefaultTable = "triage_evidence"

// execer is the subset of *sql.DB the Postgres log needs.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// PostgresLog inserts evidence records into a Postgres table. It only ever
// issues INSERT statements.
type PostgresLog struct {
	mu     sync.Mutex
	db     execer
	closer func() error
	table  string
	insert string
}

// OpenPostgres connects to dsn and ensures the evidence table exists.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresLog, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open evidence database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to evidence database: %w", err)
	}

	l := newPostgresLog(db, table)
	l.closer = db.Close
	if err := l.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func newPostgresLog(db execer, table string) *PostgresLog {
	if table == "" {
		table = DefaultTable
	}
	quoted := pq.QuoteIdentifier(table)
	return &PostgresLog{
		db:    db,
		table: quoted,
		insert: `INSERT INTO ` + quoted + ` (
			recorded_at, run_id, action, target, finding_count, severity_histogram,
			risk_score, discrepancy_flagged, under_reported_by, error_count, content_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
	}
}

func (l *PostgresLog) ensureTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + l.table + ` (
		id BIGSERIAL PRIMARY KEY,
		recorded_at TIMESTAMPTZ NOT NULL,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		target TEXT NOT NULL,
		finding_count INTEGER NOT NULL,
		severity_histogram JSONB NOT NULL,
		risk_score INTEGER NOT NULL,
		discrepancy_flagged BOOLEAN NOT NULL,
		under_reported_by INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		content_hash TEXT NOT NULL
	)`
	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create evidence table: %w", err)
	}
	return nil
}

// Log inserts record.
func (l *PostgresLog) Log(ctx context.Context, record report.EvidenceRecord) error {
	histogram, err := json.Marshal(record.SeverityHistogram)
	if err != nil {
		return fmt.Errorf("failed to marshal severity histogram: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return ErrClosed
	}
	_, err = l.db.ExecContext(ctx, l.insert,
		record.Timestamp,
		record.RunID,
		record.Action,
		record.Target,
		record.FindingCount,
		string(histogram),
		record.RiskScore,
		record.DiscrepancyFlagged,
		record.UnderReportedBy,
		record.ErrorCount,
		record.ContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evidence record: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (l *PostgresLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.db = nil
	if l.closer == nil {
		return nil
	}
	closer := l.closer
	l.closer = nil
	return closer()
}

var _ ports.EvidenceLog = (*PostgresLog)(nil)
