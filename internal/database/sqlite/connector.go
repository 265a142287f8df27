package sqlite

import (
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/sqlruntime"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

const (
	keyPath = "path"

	driverName = "sqlite"
)

// Connector opens SQLite database files through the modernc driver.
type Connector struct {
	*sqlruntime.Connector
}

// New creates a SQLite connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return &Connector{
		Connector: sqlruntime.NewConnector(dbcapabilities.SQLite, cfg, sqlruntime.SQLite, sqlruntime.Hooks{
			Validate: validate,
			Address:  address,
		}, database.NewDatabaseLogger(log, dbcapabilities.SQLite)),
	}
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.SQLite)
	v.RequireConfig(cfg, connector.KeyDatabase)
	if !cfg.Has(keyPath) {
		v.Advise("Path is not provided. The database file will be placed in the home directory " + homeDir() + ".")
	}
	return v
}

func address(cfg connector.Config) (*connector.Address, error) {
	path := filepath.Join(cfg.StringOr(keyPath, homeDir()), fileName(cfg.String(connector.KeyDatabase)))
	return &connector.Address{
		Scheme:   "sqlite",
		Path:     filepath.ToSlash(path),
		Database: fileName(cfg.String(connector.KeyDatabase)),
		Driver:   driverName,
		DSN:      path,
	}, nil
}

// fileName appends the .db extension unless the name already carries it.
func fileName(database string) string {
	if strings.Contains(database, ".db") {
		return database
	}
	return database + ".db"
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
