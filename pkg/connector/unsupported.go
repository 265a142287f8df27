package connector

import (
	"context"

	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// UnsupportedTableOps rejects the table operations of the contract.
// Connectors embed it for the operations their backend cannot serve.
type UnsupportedTableOps struct {
	DatabaseType dbcapabilities.DatabaseID
}

func (u UnsupportedTableOps) RunStatement(ctx context.Context, text string) ([]Row, error) {
	return nil, NewUnsupportedOperationError(u.DatabaseType, "run statement", "")
}

func (u UnsupportedTableOps) RunQueryToTable(ctx context.Context, text string, chunkSize int) (*table.Table, error) {
	return nil, NewUnsupportedOperationError(u.DatabaseType, "run query to table", "")
}

func (u UnsupportedTableOps) BulkLoadTable(ctx context.Context, t *table.Table, name string, chunkSize int, action ExistsAction) error {
	return NewUnsupportedOperationError(u.DatabaseType, "bulk load table", "")
}

// UnsupportedAddress rejects BuildAddress for backends without a URI form.
type UnsupportedAddress struct {
	DatabaseType dbcapabilities.DatabaseID
}

func (u UnsupportedAddress) BuildAddress() (Result[*Address], error) {
	return Invalid[*Address]("Unsupported method for " + string(u.DatabaseType)),
		NewUnsupportedOperationError(u.DatabaseType, "build address", "backend has no URI form")
}
