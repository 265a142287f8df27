// Package salesforce runs SOQL queries against Salesforce through its REST API.
package salesforce

import (
	"context"
	"net/http"
	"strings"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

const (
	defaultVersion = "59.0"

	keyDomain  = "domain"
	keyVersion = "version"
)

// Handle is the Raw value of a Salesforce session. Its API is replaced when
// the connector reconnects after a transient failure.
type Handle struct {
	API API
}

// Connector queries Salesforce objects with SOQL.
type Connector struct {
	connector.UnsupportedTableOps
	connector.UnsupportedAddress

	cfg connector.Config
	lc  *connector.Lifecycle
	log *database.DatabaseLogger

	login  func(ctx context.Context) (API, error)
	resume func(instanceURL, sessionID string) API
}

// New creates a Salesforce connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	dl := database.NewDatabaseLogger(log, dbcapabilities.Salesforce)
	c := &Connector{
		UnsupportedTableOps: connector.UnsupportedTableOps{DatabaseType: dbcapabilities.Salesforce},
		UnsupportedAddress:  connector.UnsupportedAddress{DatabaseType: dbcapabilities.Salesforce},
		cfg:                 cfg,
		lc:                  connector.NewLifecycle(dbcapabilities.Salesforce, dl.Logger()),
		log:                 dl,
	}
	version := cfg.StringOr(keyVersion, defaultVersion)
	c.login = func(ctx context.Context) (API, error) {
		return Login(ctx, http.DefaultClient, LoginURL(cfg.String(keyDomain)), version,
			cfg.String(connector.KeyUsername), cfg.String(connector.KeyPassword), cfg.String(connector.KeyToken))
	}
	c.resume = func(instanceURL, sessionID string) API {
		return NewClient(http.DefaultClient, instanceURL, sessionID, version)
	}
	return c
}

// LoginURL returns the login host for a domain such as "login", "test" or
// "mycompany.my". A full URL is used as given.
func LoginURL(domain string) string {
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain + ".salesforce.com"
}

func (c *Connector) Type() dbcapabilities.DatabaseID { return dbcapabilities.Salesforce }

// State returns the session lifecycle state.
func (c *Connector) State() connector.SessionState { return c.lc.State() }

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.Salesforce)
	v.RequireConfig(cfg, connector.KeyUsername)
	v.RequireConfig(cfg, connector.KeyPassword)
	v.RequireConfig(cfg, keyDomain)
	v.RequireConfig(cfg, connector.KeyToken)

	if !cfg.Has(keyVersion) {
		v.Advise("API version is not provided. Default version " + defaultVersion + " will be used.")
	}
	return v
}

func (c *Connector) ValidateConfig() connector.ValidationResult {
	return c.lc.Validate(func() connector.ValidationResult {
		res := validate(c.cfg).Result()
		if !res.Valid {
			c.log.LogValidationFailure(dbcapabilities.Salesforce, res.Message)
		} else {
			c.log.LogAdvisory(dbcapabilities.Salesforce, res.Message)
		}
		return res
	})
}

// OpenSession logs in. The session's Raw value is a *Handle.
func (c *Connector) OpenSession(ctx context.Context, _ connector.SessionOptions) (connector.Result[connector.Session], error) {
	return c.lc.Open(func() (connector.Session, error) {
		if v := c.ValidateConfig(); !v.Valid {
			return nil, connector.NewConfigurationError(dbcapabilities.Salesforce, "", v.Message)
		}

		lctx := database.LogContext{DatabaseType: dbcapabilities.Salesforce, Host: LoginURL(c.cfg.String(keyDomain))}
		c.log.LogConnectionAttempt(lctx)
		api, err := c.login(ctx)
		if err != nil {
			cerr := connector.NewConnectionError(dbcapabilities.Salesforce, lctx.Host, 0, err)
			c.log.LogConnectionFailure(lctx, cerr)
			return nil, cerr
		}

		s := connector.NewSession(dbcapabilities.Salesforce, &Handle{API: api}, nil)
		lctx.SessionID = s.ID()
		lctx.Host = api.InstanceURL()
		c.log.LogConnectionSuccess(lctx)
		return s, nil
	})
}

func (c *Connector) handle(ctx context.Context) (*Handle, error) {
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		return nil, err
	}
	return res.Value.Raw().(*Handle), nil
}

// call runs fn and, on a transient failure, rebuilds the client from the
// current session and runs it once more.
func (c *Connector) call(h *Handle, fn func(API) error) error {
	err := fn(h.API)
	if err == nil || !connector.IsTransient(err) {
		return err
	}
	c.log.Logger().Warn("transient salesforce failure, reconnecting to %s: %v", h.API.InstanceURL(), err)
	h.API = c.resume(h.API.InstanceURL(), h.API.SessionID())
	return fn(h.API)
}

// RunQueryToTable runs a SOQL select. FIELDS(ALL) and FIELDS(CUSTOM) are
// expanded from the object's describe result and the table is projected onto
// those fields; otherwise the columns are the union of the returned fields.
// Results arrive whole; chunkSize does not apply.
func (c *Connector) RunQueryToTable(ctx context.Context, soql string, _ int) (*table.Table, error) {
	if !IsSelect(soql) {
		return nil, connector.NewUnsupportedOperationError(dbcapabilities.Salesforce, "run statement",
			"Invalid sql statement. Only query is supported in Salesforce using select statement.")
	}

	h, err := c.handle(ctx)
	if err != nil {
		return nil, err
	}
	lctx := database.LogContext{DatabaseType: dbcapabilities.Salesforce, Host: h.API.InstanceURL(), Operation: "query"}

	var columns []string
	if UsesFieldsSentinel(soql) {
		object := ObjectName(soql)
		var fields []string
		err := c.call(h, func(api API) error {
			var err error
			fields, err = api.Describe(ctx, object)
			return err
		})
		if err != nil {
			c.log.LogOperationFailure(lctx, err)
			return nil, err
		}
		columns = SelectFields(fields, WantsCustomOnly(soql))
		soql = ExpandFields(soql, columns)
	}

	var records []*table.Record
	err = c.call(h, func(api API) error {
		var err error
		records, err = api.QueryAll(ctx, soql)
		return err
	})
	if err != nil {
		c.log.LogOperationFailure(lctx, err)
		return nil, err
	}

	flat := make([]*table.Record, 0, len(records))
	for _, r := range records {
		flat = append(flat, table.Flatten(dropAttributes(r)))
	}
	return table.FromRecords(flat, columns), nil
}

// RunStatement runs a SOQL select and returns its rows.
func (c *Connector) RunStatement(ctx context.Context, soql string) ([]connector.Row, error) {
	t, err := c.RunQueryToTable(ctx, soql, 0)
	if err != nil {
		return nil, err
	}
	rows := make([]connector.Row, 0, t.Len())
	for _, r := range t.Rows {
		rows = append(rows, connector.Row(r))
	}
	return rows, nil
}

// dropAttributes removes the "attributes" metadata from a record and its
// nested relationship records.
func dropAttributes(r *table.Record) *table.Record {
	out := table.NewRecord()
	for _, k := range r.Keys() {
		if k == "attributes" {
			continue
		}
		v, _ := r.Get(k)
		if nested, ok := v.(*table.Record); ok {
			v = dropAttributes(nested)
		}
		out.Set(k, v)
	}
	return out
}

func (c *Connector) Destroy() {
	c.lc.Teardown()
}
