package factory

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

// synapseParams maps address query names back to configuration keys.
var synapseParams = map[string]string{
	"TrustServerCertificate": "trust_certificate",
	"Connection Timeout":     "connection_timeout",
}

// ConfigFromURI parses a connector address, such as one printed by
// BuildAddress, into its connector type and the configuration the adapter
// reads. Query parameters become configuration entries.
func ConfigFromURI(uri string) (dbcapabilities.DatabaseID, map[string]any, error) {
	d, err := dbcapabilities.ParseConnectionString(uri)
	if err != nil {
		return "", nil, connector.NewConfigurationError("", "url", err.Error())
	}
	id := dbcapabilities.DatabaseID(d.DatabaseType)

	cfg := make(map[string]any, len(d.Parameters)+6)
	for k, v := range d.Parameters {
		cfg[k] = v
	}

	switch id {
	case dbcapabilities.SQLite:
		cfg["path"] = filepath.FromSlash(path.Dir(d.Path))
		cfg[connector.KeyDatabase] = d.DatabaseName
		return id, cfg, nil
	case dbcapabilities.Databricks:
		cfg["hostname"] = d.Host
		cfg[connector.KeyToken] = d.Password
		cfg[connector.KeyPort] = int(d.Port)
		return id, cfg, nil
	case dbcapabilities.Snowflake:
		cfg["account"] = d.Host
		database, schema, _ := strings.Cut(d.DatabaseName, "/")
		setIf(cfg, connector.KeyDatabase, database)
		setIf(cfg, connector.KeySchema, schema)
	case dbcapabilities.Synapse:
		for param, key := range synapseParams {
			if v, ok := cfg[param]; ok {
				delete(cfg, param)
				cfg[key] = v
			}
		}
		fallthrough
	default:
		cfg[connector.KeyHost] = d.Host
		if d.Port > 0 {
			cfg[connector.KeyPort] = int(d.Port)
		}
		setIf(cfg, connector.KeyDatabase, d.DatabaseName)
	}

	cfg[connector.KeyUsername] = d.Username
	setIf(cfg, connector.KeyPassword, d.Password)
	if id == dbcapabilities.PostgreSQL || id == dbcapabilities.Redshift {
		cfg["sslmode"] = d.SSLMode
	}
	return id, cfg, nil
}

// NewFromURI builds a factory from a connector address. Entries in overrides
// replace the ones parsed from the address.
func NewFromURI(uri string, overrides map[string]any, debug bool, opts ...Option) (*Factory, error) {
	id, cfg, err := ConfigFromURI(uri)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		cfg[k] = v
	}
	return New(string(id), cfg, debug, opts...), nil
}

func setIf(cfg map[string]any, key, value string) {
	if value != "" {
		cfg[key] = value
	}
}
