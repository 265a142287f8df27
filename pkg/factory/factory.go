package factory

import (
	"context"
	"fmt"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger adapters log through.
func WithLogger(l *logger.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.log = l
		}
	}
}

// WithRegistry builds adapters from r instead of the default registry.
func WithRegistry(r *connector.Registry) Option {
	return func(f *Factory) {
		if r != nil {
			f.registry = r
		}
	}
}

// Factory dispatches operations to the adapter for one connector type.
// It is not safe for concurrent first use.
type Factory struct {
	typeName string
	debug    bool
	config   connector.Config

	log      *logger.Logger
	registry *connector.Registry
	conn     connector.Connector
}

// New resolves connectorType and constructs its adapter from a copy of cfg
// with connection_type and debug set. Construction performs no I/O. An
// unknown type yields a factory without an adapter.
func New(connectorType string, cfg map[string]any, debug bool, opts ...Option) *Factory {
	f := &Factory{
		typeName: connectorType,
		debug:    debug,
		registry: connector.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.New("redb-connect", "")
	}
	if debug {
		// The caller's logger keeps its level
		if l, err := f.log.WithLevel("debug"); err == nil {
			f.log = l
		}
	}

	f.config = connector.Config(cfg).Clone()
	f.config[connector.KeyConnectionType] = connectorType
	f.config[connector.KeyDebug] = debug

	id, ok := dbcapabilities.ParseID(connectorType)
	if !ok {
		f.log.Warn("%s", f.invalidType())
		return f
	}
	f.config[connector.KeyConnectionType] = string(id)

	conn, err := f.registry.New(id, f.config, f.log)
	if err != nil {
		f.log.Warn("no adapter registered for %s: %v", id, err)
		return f
	}
	f.conn = conn
	return f
}

// invalidType is the diagnostic returned by every operation when there is no adapter.
func (f *Factory) invalidType() string {
	return fmt.Sprintf("Invalid connection type : %s. Valid type is anyone from %v", f.typeName, dbcapabilities.Names())
}

// Diagnostic returns the unknown type message, or "" when an adapter exists.
func (f *Factory) Diagnostic() string {
	if f.conn == nil {
		return f.invalidType()
	}
	return ""
}

// Connector returns the adapter, or nil for an unknown type.
func (f *Factory) Connector() connector.Connector {
	return f.conn
}

// Type returns the canonical connector type, or "" for an unknown type.
func (f *Factory) Type() dbcapabilities.DatabaseID {
	if f.conn == nil {
		return ""
	}
	return f.conn.Type()
}

// Config returns the configuration the adapter was built with.
func (f *Factory) Config() connector.Config {
	return f.config.Clone()
}

// CreateSession opens the adapter's session if it is not open yet.
func (f *Factory) CreateSession(ctx context.Context) (string, error) {
	if f.conn == nil {
		return f.invalidType(), nil
	}
	f.log.Debug("creating session scope for %s", f.conn.Type())
	if _, err := f.conn.OpenSession(ctx, connector.SessionOptions{}); err != nil {
		f.log.Error("failed to create session for %s: %v", f.conn.Type(), err)
		return "", err
	}
	return "", nil
}

// GetConnection opens the session if needed and returns it.
func (f *Factory) GetConnection(ctx context.Context) (connector.Session, string, error) {
	if f.conn == nil {
		return nil, f.invalidType(), nil
	}
	res, err := f.conn.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		f.log.Error("failed to get connection for %s: %v", f.conn.Type(), err)
		return nil, "", err
	}
	if !res.Valid {
		return nil, "", connector.NewConfigurationError(f.conn.Type(), "", res.Message)
	}
	return res.Value, "", nil
}

// ExecuteStatement runs a statement and returns its rows, if any.
func (f *Factory) ExecuteStatement(ctx context.Context, sql string) ([]connector.Row, string, error) {
	if f.conn == nil {
		return nil, f.invalidType(), nil
	}
	f.log.Debug("executing statement on %s: %s", f.conn.Type(), sql)
	rows, err := f.conn.RunStatement(ctx, sql)
	return rows, "", err
}

// ExecuteTable writes t into the table name. action is append, replace or
// fail; empty means fail.
func (f *Factory) ExecuteTable(ctx context.Context, t *table.Table, name string, chunkSize int, action string) (string, error) {
	if f.conn == nil {
		return f.invalidType(), nil
	}
	act, err := connector.ParseExistsAction(action)
	if err != nil {
		return "", err
	}
	f.log.Debug("loading %d rows into %s on %s (%s)", t.Len(), name, f.conn.Type(), act)
	return "", f.conn.BulkLoadTable(ctx, t, name, chunkSize, act)
}

// QueryToTable runs a query and materializes its result.
func (f *Factory) QueryToTable(ctx context.Context, sql string, chunkSize int) (*table.Table, string, error) {
	if f.conn == nil {
		return nil, f.invalidType(), nil
	}
	f.log.Debug("querying %s: %s", f.conn.Type(), sql)
	t, err := f.conn.RunQueryToTable(ctx, sql, chunkSize)
	return t, "", err
}

// Close destroys the adapter's session. It is safe to call more than once.
func (f *Factory) Close() {
	if f.conn != nil {
		f.conn.Destroy()
	}
}
