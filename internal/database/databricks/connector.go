package databricks

import (
	"net/url"

	dbsql "github.com/databricks/databricks-sql-go"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort = 443

	keyHostname = "hostname"
	keyHTTPPath = "http_path"
	keyCatalog  = "catalog"

	driverName = "databricks"
)

// Connector opens Databricks SQL warehouses through databricks-sql-go.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a Databricks connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.Databricks, cfg, sqlruntime.Databricks, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
		}, database.NewDatabaseLogger(log, dbcapabilities.Databricks)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.Databricks)
	v.RequireConfig(cfg, keyHostname)
	v.RequireConfig(cfg, connector.KeyToken)
	v.RequireConfig(cfg, keyHTTPPath)
	v.RequireConfig(cfg, keyCatalog)
	v.RequireConfig(cfg, connector.KeySchema)
	return v
}

func address(cfg connector.Config) (*connector.Address, error) {
	host := cfg.String(keyHostname)
	port := cfg.Int(connector.KeyPort, defaultPort)
	token := cfg.String(connector.KeyToken)
	httpPath := cfg.String(keyHTTPPath)
	catalog := cfg.String(keyCatalog)
	schema := cfg.String(connector.KeySchema)

	query := url.Values{}
	query.Set("http_path", httpPath)
	query.Set("catalog", catalog)
	query.Set("schema", schema)

	addr := &connector.Address{
		Scheme:   "databricks",
		Username: "token",
		Password: token,
		Host:     host,
		Query:    query,
		Driver:   driverName,
	}
	if port != defaultPort {
		addr.Port = port
	}

	conn, err := dbsql.NewConnector(
		dbsql.WithServerHostname(host),
		dbsql.WithPort(port),
		dbsql.WithHTTPPath(httpPath),
		dbsql.WithAccessToken(token),
		dbsql.WithInitialNamespace(catalog, schema),
		dbsql.WithUserAgentEntry("redb-connect"),
	)
	if err != nil {
		return nil, connector.NewConfigurationError(dbcapabilities.Databricks, "", err.Error())
	}
	addr.Connector = conn
	return addr, nil
}
