package evidence

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/triagesec/internal/application/ports"
)

// Drivers understood by Open.
const (
	DriverJSONL    = "jsonl"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Options selects and configures an evidence log.
type Options struct {
	Driver string
	Path   string
	DSN    string
	Table  string
}

// Open returns the evidence log for opts. DriverNone and an empty driver
// return a nil log and no error.
func Open(ctx context.Context, opts Options) (ports.EvidenceLog, error) {
	switch opts.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverJSONL:
		l, err := OpenJSONL(opts.Path)
		if err != nil {
			return nil, err
		}
		return l, nil
	case DriverPostgres:
		l, err := OpenPostgres(ctx, opts.DSN, opts.Table)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown evidence driver: %q", opts.Driver)
	}
}
