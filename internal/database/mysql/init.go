package mysql

import (
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

func init() {
	// MySQL and MariaDB share the wire protocol and driver
	connector.Register(dbcapabilities.MySQL, New)
	connector.Register(dbcapabilities.MariaDB, func(cfg connector.Config, log *logger.Logger) connector.Connector {
		return NewFor(dbcapabilities.MariaDB, cfg, log)
	})
}
