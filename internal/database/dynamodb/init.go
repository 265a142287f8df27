package dynamodb

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register DynamoDB connector with the global registry
	connector.Register(dbcapabilities.DynamoDB, New)
}
