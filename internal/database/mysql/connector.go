package mysql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort    = 3306
	defaultCharset = "utf8mb4"

	keyTLS     = "tls"
	keyCharset = "charset"
	keyTimeout = "connection_timeout"

	driverName = "mysql"
)

// Connector opens MySQL and MariaDB databases through go-sql-driver/mysql.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a MySQL connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return NewFor(dbcapabilities.MySQL, cfg, log)
}

// NewFor creates a connector for a MySQL compatible type.
func NewFor(dbType dbcapabilities.DatabaseID, cfg connector.Config, log *logger.Logger) *Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbType, cfg, sqlruntime.MySQL, sqlruntime.Hooks{
			Validate: func(cfg connector.Config) *connector.Validation { return validate(dbType, cfg) },
			Address:  func(cfg connector.Config) (*connector.Address, error) { return address(dbType, cfg) },
		}, database.NewDatabaseLogger(log, dbType)),
	}
}

func validate(dbType dbcapabilities.DatabaseID, cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbType)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, connector.KeyHost)

	if !cfg.Has(connector.KeyDatabase) {
		v.Advise("Database is not provided. Consider USE statement to switch database or use fully qualified path.")
	}
	if !cfg.Has(connector.KeyPort) {
		v.Advise(fmt.Sprintf("Port is not provided. Default port %d will be used.", defaultPort))
	}
	if !cfg.Has(keyCharset) {
		v.Advise("Charset is not provided. Default charset " + defaultCharset + " will be used.")
	}
	return v
}

func address(dbType dbcapabilities.DatabaseID, cfg connector.Config) (*connector.Address, error) {
	port := cfg.Int(connector.KeyPort, defaultPort)
	charset := cfg.StringOr(keyCharset, defaultCharset)

	mc := mysql.NewConfig()
	mc.User = cfg.String(connector.KeyUsername)
	mc.Passwd = cfg.String(connector.KeyPassword)
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.String(connector.KeyHost), strconv.Itoa(port))
	mc.DBName = cfg.String(connector.KeyDatabase)
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": charset}
	if cfg.Has(keyTLS) {
		mc.TLSConfig = cfg.String(keyTLS)
	}
	if cfg.Has(keyTimeout) {
		mc.Timeout = time.Duration(cfg.Int(keyTimeout, 30)) * time.Second
	}

	query := url.Values{}
	query.Set("charset", charset)
	if mc.TLSConfig != "" {
		query.Set("tls", mc.TLSConfig)
	}

	return &connector.Address{
		Scheme:   string(dbType),
		Username: mc.User,
		Password: mc.Passwd,
		Host:     cfg.String(connector.KeyHost),
		Port:     port,
		Database: mc.DBName,
		Query:    query,
		Driver:   driverName,
		DSN:      mc.FormatDSN(),
	}, nil
}
