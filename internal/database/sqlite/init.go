package sqlite

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register SQLite connector with the global registry
	connector.Register(dbcapabilities.SQLite, New)
}
