package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/awsraw"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

// Connector runs PartiQL statements against DynamoDB.
type Connector struct {
	connector.UnsupportedTableOps
	connector.UnsupportedAddress

	cfg   connector.Config
	cloud *awsraw.Connector
	lc    *connector.Lifecycle
	log   *database.DatabaseLogger
	dial  func(aws.Config) StatementAPI
}

// New creates a DynamoDB connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	dl := database.NewDatabaseLogger(log, dbcapabilities.DynamoDB)
	return &Connector{
		UnsupportedTableOps: connector.UnsupportedTableOps{DatabaseType: dbcapabilities.DynamoDB},
		UnsupportedAddress:  connector.UnsupportedAddress{DatabaseType: dbcapabilities.DynamoDB},
		cfg:                 cfg,
		cloud:               awsraw.NewFor(dbcapabilities.DynamoDB, cfg, log),
		lc:                  connector.NewLifecycle(dbcapabilities.DynamoDB, dl.Logger()),
		log:                 dl,
		dial: func(c aws.Config) StatementAPI {
			return dynamodb.NewFromConfig(c)
		},
	}
}

func (c *Connector) Type() dbcapabilities.DatabaseID { return dbcapabilities.DynamoDB }

// State returns the session lifecycle state.
func (c *Connector) State() connector.SessionState { return c.lc.State() }

func (c *Connector) ValidateConfig() connector.ValidationResult {
	return c.lc.Validate(func() connector.ValidationResult {
		res := awsraw.Validate(dbcapabilities.DynamoDB, c.cfg).Result()
		c.log.LogAdvisory(dbcapabilities.DynamoDB, res.Message)
		return res
	})
}

// OpenSession opens a session whose Raw value is a *Cursor.
func (c *Connector) OpenSession(ctx context.Context, _ connector.SessionOptions) (connector.Result[connector.Session], error) {
	c.ValidateConfig()
	return c.lc.Open(func() (connector.Session, error) {
		awsCfg, err := c.cloud.AWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		cur := NewCursor(c.dial(awsCfg))
		s := connector.NewSession(dbcapabilities.DynamoDB, cur, func() error {
			c.cloud.Destroy()
			return nil
		})
		c.log.LogConnectionSuccess(database.LogContext{DatabaseType: dbcapabilities.DynamoDB, SessionID: s.ID(), Host: awsCfg.Region})
		return s, nil
	})
}

func (c *Connector) cursor(ctx context.Context) (*Cursor, error) {
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		return nil, err
	}
	return res.Value.Raw().(*Cursor), nil
}

// RunStatement returns the result rows ordered by the sorted attribute names.
func (c *Connector) RunStatement(ctx context.Context, text string) ([]connector.Row, error) {
	cur, err := c.cursor(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := cur.Execute(ctx, text)
	if err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: dbcapabilities.DynamoDB, Operation: "run statement"}, err)
		return nil, err
	}
	return rs.Rows(), nil
}

// RunQueryToTable returns the result as a table. Items are fetched in full;
// chunkSize does not apply.
func (c *Connector) RunQueryToTable(ctx context.Context, text string, _ int) (*table.Table, error) {
	cur, err := c.cursor(ctx)
	if err != nil {
		return nil, err
	}
	rs, err := cur.Execute(ctx, text)
	if err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: dbcapabilities.DynamoDB, Operation: "run query to table"}, err)
		return nil, err
	}
	return rs.Table(), nil
}

func (c *Connector) Destroy() {
	c.lc.Teardown()
}
