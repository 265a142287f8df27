package awsraw

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register the raw AWS connector with the global registry
	connector.Register(dbcapabilities.AWS, New)
}
