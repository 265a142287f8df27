package snowflake

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Snowflake connector with the global registry
	connector.Register(dbcapabilities.Snowflake, New)
}
