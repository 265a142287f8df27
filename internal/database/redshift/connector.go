package redshift

import (
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver (Redshift compatible)

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort    = 5439
	defaultSSLMode = "require"

	keySSLMode = "sslmode"

	driverName = "postgres"
)

// Connector opens Amazon Redshift clusters through lib/pq.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a Redshift connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.Redshift, cfg, sqlruntime.Redshift, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
		}, database.NewDatabaseLogger(log, dbcapabilities.Redshift)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.Redshift)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, connector.KeyHost)
	v.RequireConfig(cfg, connector.KeyDatabase)

	if !cfg.Has(connector.KeyPort) {
		v.Advise(fmt.Sprintf("Port is not provided. Default port %d will be used.", defaultPort))
	}
	if !cfg.Has(keySSLMode) {
		v.Advise("SSL mode is not provided. Default sslmode " + defaultSSLMode + " will be used.")
	}
	return v
}

func address(cfg connector.Config) (*connector.Address, error) {
	query := url.Values{}
	query.Set("sslmode", cfg.StringOr(keySSLMode, defaultSSLMode))

	addr := &connector.Address{
		Scheme:   "redshift",
		Username: cfg.String(connector.KeyUsername),
		Password: cfg.String(connector.KeyPassword),
		Host:     cfg.String(connector.KeyHost),
		Port:     cfg.Int(connector.KeyPort, defaultPort),
		Database: cfg.String(connector.KeyDatabase),
		Query:    query,
		Driver:   driverName,
	}
	addr.DSN = buildConnectionString(addr)
	return addr, nil
}

// buildConnectionString builds a PostgreSQL-compatible keyword/value connection string for Redshift.
func buildConnectionString(addr *connector.Address) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quote(addr.Host), addr.Port, quote(addr.Username), quote(addr.Password),
		quote(addr.Database), quote(addr.Query.Get("sslmode")))
}

// quote renders a keyword value in single quotes with backslash escapes.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
