package salesforce

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Salesforce connector with the global registry
	connector.Register(dbcapabilities.Salesforce, New)
}
