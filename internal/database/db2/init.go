package db2

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Db2 connector with the global registry. The driver itself is
	// only linked into builds with the db2 tag.
	connector.Register(dbcapabilities.DB2, New)
}
