package s3select

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

func init() {
	// Register S3 Select connector with the global registry
	connector.Register(dbcapabilities.S3Select, New)
}
