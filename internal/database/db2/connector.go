package db2

import (
	"fmt"
	"strings"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort = 50000

	keySecurity = "security"

	driverName = "go_ibm_db"
)

// Connector opens IBM Db2 databases through the go_ibm_db CLI driver.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a Db2 connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.DB2, cfg, sqlruntime.DB2, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
		}, database.NewDatabaseLogger(log, dbcapabilities.DB2)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.DB2)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, connector.KeyHost)
	v.RequireConfig(cfg, connector.KeyDatabase)

	if !cfg.Has(connector.KeyPort) {
		v.Advise(fmt.Sprintf("Port is not provided. Default port %d will be used.", defaultPort))
	}
	return v
}

func address(cfg connector.Config) (*connector.Address, error) {
	addr := &connector.Address{
		Scheme:   "db2",
		Username: cfg.String(connector.KeyUsername),
		Password: cfg.String(connector.KeyPassword),
		Host:     cfg.String(connector.KeyHost),
		Port:     cfg.Int(connector.KeyPort, defaultPort),
		Database: cfg.String(connector.KeyDatabase),
		Driver:   driverName,
	}

	// Format: HOSTNAME=host;DATABASE=dbname;PORT=port;UID=username;PWD=password;
	var dsn strings.Builder
	fmt.Fprintf(&dsn, "HOSTNAME=%s;DATABASE=%s;PORT=%d;UID=%s;PWD=%s;",
		addr.Host, addr.Database, addr.Port, addr.Username, addr.Password)
	if cfg.Has(keySecurity) {
		fmt.Fprintf(&dsn, "Security=%s;", cfg.String(keySecurity))
	}
	addr.DSN = dsn.String()
	return addr, nil
}
