package sqlruntime

import (
	"context"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// Hooks are the backend specific steps of a relational connector.
type Hooks struct {
	// Validate checks the configuration and collects advisory notes.
	Validate func(cfg connector.Config) *connector.Validation
	// Address renders a validated configuration.
	Address func(cfg connector.Config) (*connector.Address, error)
	// Prepare, when set, adjusts the address right before it is opened.
	Prepare func(ctx context.Context, addr *connector.Address, opts connector.SessionOptions) (*connector.Address, error)
}

// Connector implements connector.Connector for database/sql backends.
// Backend packages embed it and supply Hooks.
type Connector struct {
	dbType  dbcapabilities.DatabaseID
	cfg     connector.Config
	dialect Dialect
	hooks   Hooks
	lc      *connector.Lifecycle
	log     *database.DatabaseLogger
}

// NewConnector creates an unopened relational connector.
func NewConnector(dbType dbcapabilities.DatabaseID, cfg connector.Config, dialect Dialect, hooks Hooks, log *database.DatabaseLogger) *Connector {
	return &Connector{
		dbType:  dbType,
		cfg:     cfg,
		dialect: dialect,
		hooks:   hooks,
		lc:      connector.NewLifecycle(dbType, log.Logger()),
		log:     log,
	}
}

func (c *Connector) Type() dbcapabilities.DatabaseID { return c.dbType }

// Config returns the configuration the connector was built with.
func (c *Connector) Config() connector.Config { return c.cfg }

// State returns the session lifecycle state.
func (c *Connector) State() connector.SessionState { return c.lc.State() }

// ValidateConfig checks the configuration once; a valid result is cached.
func (c *Connector) ValidateConfig() connector.ValidationResult {
	return c.lc.Validate(func() connector.ValidationResult {
		res := c.hooks.Validate(c.cfg).Result()
		if !res.Valid {
			c.log.LogValidationFailure(c.dbType, res.Message)
		} else {
			c.log.LogAdvisory(c.dbType, res.Message)
		}
		return res
	})
}

// BuildAddress validates the configuration and renders its address.
func (c *Connector) BuildAddress() (connector.Result[*connector.Address], error) {
	v := c.ValidateConfig()
	if !v.Valid {
		return connector.Invalid[*connector.Address](v.Message), nil
	}
	addr, err := c.hooks.Address(c.cfg)
	if err != nil {
		return connector.Invalid[*connector.Address](err.Error()), err
	}
	c.lc.SetAddress(addr)
	return connector.Valid(addr, v.Message), nil
}

// OpenSession returns the open session or opens one from the built address.
func (c *Connector) OpenSession(ctx context.Context, opts connector.SessionOptions) (connector.Result[connector.Session], error) {
	return c.lc.Open(func() (connector.Session, error) {
		addr := opts.Address
		if addr == nil {
			res, err := c.BuildAddress()
			if err != nil {
				return nil, err
			}
			if !res.Valid {
				return nil, connector.NewConfigurationError(c.dbType, "", res.Message)
			}
			addr = res.Value
		}

		if c.hooks.Prepare != nil {
			var err error
			addr, err = c.hooks.Prepare(ctx, addr, opts)
			if err != nil {
				return nil, err
			}
		}

		lctx := database.LogContext{DatabaseType: c.dbType, Host: addr.Host, Port: addr.Port}
		c.log.LogConnectionAttempt(lctx)
		s, err := Open(ctx, c.dbType, addr, c.dialect, c.log.Logger())
		if err != nil {
			c.log.LogConnectionFailure(lctx, err)
			return nil, err
		}
		lctx.SessionID = s.ID()
		c.log.LogConnectionSuccess(lctx)
		return s, nil
	})
}

// Session opens the session if needed and returns it.
func (c *Connector) Session(ctx context.Context) (*Session, error) {
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		return nil, err
	}
	return res.Value.(*Session), nil
}

func (c *Connector) RunStatement(ctx context.Context, text string) ([]connector.Row, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.RunStatement(ctx, text)
	if err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: c.dbType, SessionID: s.ID(), Operation: "run statement"}, err)
	}
	return rows, err
}

func (c *Connector) RunQueryToTable(ctx context.Context, text string, chunkSize int) (*table.Table, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.QueryToTable(ctx, text, chunkSize)
	if err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: c.dbType, SessionID: s.ID(), Operation: "run query to table"}, err)
	}
	return t, err
}

func (c *Connector) BulkLoadTable(ctx context.Context, t *table.Table, name string, chunkSize int, action connector.ExistsAction) error {
	if t.Empty() {
		return connector.NewDatabaseError(c.dbType, "bulk load table", connector.ErrEmptyTable)
	}
	s, err := c.Session(ctx)
	if err != nil {
		return err
	}
	if err := s.BulkLoad(ctx, t, name, chunkSize, action); err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: c.dbType, SessionID: s.ID(), Operation: "bulk load table"}, err)
		return err
	}
	return nil
}

// Destroy closes the session. Close failures are logged, never returned.
func (c *Connector) Destroy() {
	c.lc.Teardown()
}
