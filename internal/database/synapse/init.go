package synapse

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register Synapse connector with the global registry
	connector.Register(dbcapabilities.Synapse, New)
}
