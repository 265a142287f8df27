package synapse

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort              = 1433
	defaultDriver            = "ODBC Driver 17 for SQL Server"
	defaultTrustCertificate  = "no"
	defaultConnectionTimeout = 30

	keyDriver             = "driver"
	keyTrustCertificate   = "trust_certificate"
	keyConnectionTimeout  = "connection_timeout"
	keyAuthenticationWith = "authentication_with"

	driverName = "sqlserver"
)

// Connector opens Azure Synapse dedicated SQL pools through go-mssqldb.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a Synapse connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.Synapse, cfg, sqlruntime.SQLServer, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
		}, database.NewDatabaseLogger(log, dbcapabilities.Synapse)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.Synapse)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, connector.KeyHost)
	v.RequireConfig(cfg, connector.KeyDatabase)

	if !cfg.Has(connector.KeyPort) {
		v.Advise(fmt.Sprintf("Port is not provided. Default port %d will be used.", defaultPort))
	}
	if !cfg.Has(keyDriver) {
		v.Advise("Driver is not provided. Default driver " + defaultDriver + " will be used.")
	}
	if !cfg.Has(keyTrustCertificate) {
		v.Advise("Trust certificate is not provided. The server certificate will be validated.")
	}
	if !cfg.Has(keyConnectionTimeout) {
		v.Advise(fmt.Sprintf("Connection timeout is not provided. Default %d seconds will be used.", defaultConnectionTimeout))
	}
	return v
}

// authentication returns the Entra ID authentication method, if any.
func authentication(cfg connector.Config) string {
	if cfg.Has(connector.KeyAuthentication) {
		return cfg.String(connector.KeyAuthentication)
	}
	return cfg.String(keyAuthenticationWith)
}

// trustFlag maps yes/no style values onto the driver's boolean.
func trustFlag(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on":
		return "true"
	default:
		return "false"
	}
}

func address(cfg connector.Config) (*connector.Address, error) {
	trust := cfg.StringOr(keyTrustCertificate, defaultTrustCertificate)
	timeout := cfg.Int(keyConnectionTimeout, defaultConnectionTimeout)
	auth := authentication(cfg)

	query := url.Values{}
	query.Set("database", cfg.String(connector.KeyDatabase))
	query.Set("driver", cfg.StringOr(keyDriver, defaultDriver))
	query.Set("TrustServerCertificate", trust)
	query.Set("Connection Timeout", strconv.Itoa(timeout))
	if auth != "" {
		query.Set("authentication", auth)
	}

	addr := &connector.Address{
		Scheme:   "sqlserver",
		Username: cfg.String(connector.KeyUsername),
		Password: cfg.String(connector.KeyPassword),
		Host:     cfg.String(connector.KeyHost),
		Port:     cfg.Int(connector.KeyPort, defaultPort),
		Query:    query,
		Driver:   driverName,
	}

	// The driver reads its own parameter names
	dsn := *addr
	dsn.Query = url.Values{}
	dsn.Query.Set("database", cfg.String(connector.KeyDatabase))
	dsn.Query.Set("TrustServerCertificate", trustFlag(trust))
	dsn.Query.Set("connection timeout", strconv.Itoa(timeout))
	if auth != "" {
		addr.Driver = azuread.DriverName
		dsn.Query.Set("fedauth", auth)
	}
	addr.DSN = dsn.URI()
	return addr, nil
}
