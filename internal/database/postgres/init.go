package postgres

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register PostgreSQL connector with the global registry
	connector.Register(dbcapabilities.PostgreSQL, New)
}
