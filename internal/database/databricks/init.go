package databricks

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Databricks connector with the global registry
	connector.Register(dbcapabilities.Databricks, New)
}
