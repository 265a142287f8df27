package postgres

import (
	"context"
	"fmt"
	"net/url"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cast"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultPort = 5432

	keySSLMode = "sslmode"

	driverName = "pgx"
)

// Connector opens PostgreSQL databases through pgx's database/sql driver.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a PostgreSQL connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.PostgreSQL, cfg, sqlruntime.Postgres, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
			Prepare:  prepare,
		}, database.NewDatabaseLogger(log, dbcapabilities.PostgreSQL)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.PostgreSQL)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, connector.KeyHost)

	if !cfg.Has(connector.KeyDatabase) {
		v.Advise("Database is not provided. Consider a SET search_path or fully qualified names to reach other databases.")
	}
	if !cfg.Has(connector.KeyPort) {
		v.Advise(fmt.Sprintf("Port is not provided. Default port %d will be used.", defaultPort))
	}
	return v
}

func address(cfg connector.Config) (*connector.Address, error) {
	query := url.Values{}
	query.Set("client_encoding", "utf8")
	if cfg.Has(keySSLMode) {
		query.Set("sslmode", cfg.String(keySSLMode))
	}

	addr := &connector.Address{
		Scheme:   "postgresql",
		Username: cfg.String(connector.KeyUsername),
		Password: cfg.String(connector.KeyPassword),
		Host:     cfg.String(connector.KeyHost),
		Port:     cfg.Int(connector.KeyPort, defaultPort),
		Database: cfg.String(connector.KeyDatabase),
		Query:    query,
		Driver:   driverName,
	}
	addr.DSN = addr.URI()
	return addr, nil
}

// prepare folds session parameters into the connection URI as runtime parameters.
func prepare(_ context.Context, addr *connector.Address, opts connector.SessionOptions) (*connector.Address, error) {
	if len(opts.Params) == 0 {
		return addr, nil
	}
	out := *addr
	out.Query = url.Values{}
	for k, v := range addr.Query {
		out.Query[k] = append([]string(nil), v...)
	}
	for k, v := range opts.Params {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, connector.NewConfigurationError(dbcapabilities.PostgreSQL, k, err.Error())
		}
		out.Query.Set(k, s)
	}
	out.DSN = out.URI()
	return &out, nil
}
