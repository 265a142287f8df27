package redshift

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Redshift connector with the global registry
	connector.Register(dbcapabilities.Redshift, New)
}
