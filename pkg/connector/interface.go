package connector

import (
	"context"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// Connector is the capability set every backend adapter implements.
type Connector interface {
	// Type returns the connector type.
	Type() dbcapabilities.DatabaseID

	// ValidateConfig checks the configuration. A successful result is cached.
	ValidateConfig() ValidationResult

	// BuildAddress validates and renders the backend address. Backends without
	// an address form return an UnsupportedOperationError.
	BuildAddress() (Result[*Address], error)

	// OpenSession returns the existing session or opens one.
	OpenSession(ctx context.Context, opts SessionOptions) (Result[Session], error)

	// RunStatement executes text and returns its rows, or nil when it has no result set.
	RunStatement(ctx context.Context, text string) ([]Row, error)

	// RunQueryToTable materializes a query result, reading chunkSize rows at a time when positive.
	RunQueryToTable(ctx context.Context, text string, chunkSize int) (*table.Table, error)

	// BulkLoadTable writes t into the destination table name.
	BulkLoadTable(ctx context.Context, t *table.Table, name string, chunkSize int, action ExistsAction) error

	// Destroy closes the session. It is safe to call at any time and more than once.
	Destroy()
}

// SessionProvider is implemented by connectors that expose their lifecycle state.
type SessionProvider interface {
	State() SessionState
}
