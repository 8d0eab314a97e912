package ports

import (
	"context"

	"github.com/felixgeelhaar/triagesec/internal/domain/report"
)

// EvidenceLog is an append-only audit trail. Implementations never rewrite
// or delete earlier records.
type EvidenceLog interface {
	Log(ctx context.Context, record report.EvidenceRecord) error
	Close() error
}
