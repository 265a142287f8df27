package snowflake

import (
	"context"
	"net/url"
	"os"

	"github.com/snowflakedb/gosnowflake"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	defaultSchema = "public"

	keyAccount    = "account"
	keyRole       = "role"
	keyWarehouse  = "warehouse"
	keyPrivateKey = "key"
	keyKeyAlias   = "private_key"

	// ParamPrivateKey carries the PKCS8 DER key in SessionOptions.Params.
	ParamPrivateKey = "private_key"

	driverName  = "snowflake"
	application = "redb-connect"
)

// Connector opens Snowflake accounts through gosnowflake with password or key pair authentication.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a Snowflake connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.Snowflake, cfg, sqlruntime.Snowflake, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
			Prepare: func(ctx context.Context, addr *connector.Address, opts connector.SessionOptions) (*connector.Address, error) {
				return prepare(cfg, addr, opts)
			},
		}, database.NewDatabaseLogger(log, dbcapabilities.Snowflake)),
	}
}

// keyFile returns the configured private key path, present on disk or not.
func keyFile(cfg connector.Config) string {
	if cfg.Has(keyPrivateKey) {
		return cfg.String(keyPrivateKey)
	}
	return cfg.String(keyKeyAlias)
}

// keyPath returns the configured private key file when it exists on disk.
func keyPath(cfg connector.Config) string {
	path := keyFile(cfg)
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.Snowflake)

	key := keyPath(cfg)
	if keyFile(cfg) != "" && key == "" {
		v.Advise("Private key file is not present. Will use password based authentication if password is supplied.")
	}

	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, keyAccount)
	if !v.Failed() && !cfg.Has(connector.KeyPassword) && key == "" {
		v.Fail(connector.KeyPassword, "Invalid connection details. Either password or key is required.")
	}

	if !cfg.Has(keyRole) {
		v.Advise("Role is not provided. Consider USE statement to switch from default role.")
	}
	if !cfg.Has(keyWarehouse) {
		v.Advise("Warehouse is not provided. Consider USE statement to switch from default warehouse.")
	}
	if !cfg.Has(connector.KeyDatabase) {
		v.Advise("Database is not provided. Consider USE statement to switch database or use fully qualified path.")
	}
	if !cfg.Has(connector.KeySchema) {
		v.Advise("Schema is not provided. Consider USE statement to switch from default public schema or use fully qualified path.")
	}
	if key != "" && cfg.Has(connector.KeyPassword) {
		v.Advise("Private key and password both are present. Password will be used to decrypt the key file.")
	}
	return v
}

// driverConfig maps the configuration onto gosnowflake's Config.
func driverConfig(cfg connector.Config) *gosnowflake.Config {
	sc := &gosnowflake.Config{
		Account:       cfg.String(keyAccount),
		User:          cfg.String(connector.KeyUsername),
		Database:      cfg.String(connector.KeyDatabase),
		Warehouse:     cfg.String(keyWarehouse),
		Role:          cfg.String(keyRole),
		Application:   application,
		Authenticator: gosnowflake.AuthTypeSnowflake,
	}
	if sc.Database != "" {
		sc.Schema = cfg.StringOr(connector.KeySchema, defaultSchema)
	}
	if keyPath(cfg) == "" {
		sc.Password = cfg.String(connector.KeyPassword)
	}
	return sc
}

func address(cfg connector.Config) (*connector.Address, error) {
	sc := driverConfig(cfg)

	query := url.Values{}
	if sc.Warehouse != "" {
		query.Set("warehouse", sc.Warehouse)
	}
	if sc.Role != "" {
		query.Set("role", sc.Role)
	}

	addr := &connector.Address{
		Scheme:   "snowflake",
		Username: sc.User,
		Password: sc.Password,
		Host:     sc.Account,
		Query:    query,
		Driver:   driverName,
	}
	if sc.Database != "" {
		addr.Database = sc.Database + "/" + sc.Schema
	}

	// Key pair sessions get their DSN once the key is loaded
	if keyPath(cfg) == "" {
		dsn, err := gosnowflake.DSN(sc)
		if err != nil {
			return nil, connector.NewConfigurationError(dbcapabilities.Snowflake, "", err.Error())
		}
		addr.DSN = dsn
	}
	return addr, nil
}

// prepare loads the private key, when one is configured, and switches the
// address to JWT key pair authentication.
func prepare(cfg connector.Config, addr *connector.Address, opts connector.SessionOptions) (*connector.Address, error) {
	der, _ := opts.Params[ParamPrivateKey].([]byte)
	if der == nil {
		path := keyPath(cfg)
		if path == "" {
			return addr, nil
		}
		var password []byte
		if cfg.Has(connector.KeyPassword) {
			password = []byte(cfg.String(connector.KeyPassword))
		}
		var err error
		der, err = LoadPrivateKeyDER(path, password)
		if err != nil {
			return nil, connector.NewConfigurationError(dbcapabilities.Snowflake, keyPrivateKey, err.Error())
		}
	}

	rsaKey, err := parseRSAKey(der)
	if err != nil {
		return nil, connector.NewConfigurationError(dbcapabilities.Snowflake, keyPrivateKey, err.Error())
	}

	sc := driverConfig(cfg)
	sc.Password = ""
	sc.Authenticator = gosnowflake.AuthTypeJwt
	sc.PrivateKey = rsaKey

	dsn, err := gosnowflake.DSN(sc)
	if err != nil {
		return nil, connector.NewConfigurationError(dbcapabilities.Snowflake, "", err.Error())
	}

	out := *addr
	out.Password = ""
	out.DSN = dsn
	return &out, nil
}
