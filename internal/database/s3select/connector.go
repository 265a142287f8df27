// Package s3select queries CSV, JSON and Parquet objects in S3 with S3 Select.
package s3select

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/internal/database/awsraw"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

// Connector reads S3 objects through S3 Select. Its session resolves the
// objects to query once; every query runs over the same object list.
type Connector struct {
	connector.UnsupportedTableOps
	connector.UnsupportedAddress

	cfg   connector.Config
	cloud *awsraw.Connector
	lc    *connector.Lifecycle
	log   *database.DatabaseLogger
	dial  func(aws.Config, connector.Config) Client
}

// New creates an S3 Select connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	dl := database.NewDatabaseLogger(log, dbcapabilities.S3Select)
	return &Connector{
		UnsupportedTableOps: connector.UnsupportedTableOps{DatabaseType: dbcapabilities.S3Select},
		UnsupportedAddress:  connector.UnsupportedAddress{DatabaseType: dbcapabilities.S3Select},
		cfg:                 cfg,
		cloud:               awsraw.NewFor(dbcapabilities.S3Select, cfg, log),
		lc:                  connector.NewLifecycle(dbcapabilities.S3Select, dl.Logger()),
		log:                 dl,
		dial:                newS3Client,
	}
}

func newS3Client(awsCfg aws.Config, cfg connector.Config) Client {
	return s3Client{s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints such as LocalStack or MinIO need path style addressing
		o.UsePathStyle = cfg.Has(connector.KeyEndpoint)
	})}
}

func (c *Connector) Type() dbcapabilities.DatabaseID { return dbcapabilities.S3Select }

// State returns the session lifecycle state.
func (c *Connector) State() connector.SessionState { return c.lc.State() }

func (c *Connector) ValidateConfig() connector.ValidationResult {
	return c.lc.Validate(func() connector.ValidationResult {
		res := validate(c.cfg).Result()
		if !res.Valid {
			c.log.LogValidationFailure(dbcapabilities.S3Select, res.Message)
		} else {
			c.log.LogAdvisory(dbcapabilities.S3Select, res.Message)
		}
		return res
	})
}

// OpenSession builds the S3 client and resolves the objects to query. The
// session's Raw value is a *Reader.
func (c *Connector) OpenSession(ctx context.Context, _ connector.SessionOptions) (connector.Result[connector.Session], error) {
	return c.lc.Open(func() (connector.Session, error) {
		if v := c.ValidateConfig(); !v.Valid {
			return nil, connector.NewConfigurationError(dbcapabilities.S3Select, "", "Failed to validate the connection details. "+v.Message)
		}

		opts := optionsFrom(c.cfg)
		lctx := database.LogContext{DatabaseType: dbcapabilities.S3Select, Host: opts.Bucket}

		awsCfg, err := c.cloud.AWSConfig(ctx)
		if err != nil {
			c.log.LogConnectionFailure(lctx, err)
			return nil, err
		}

		client := c.dial(awsCfg, c.cfg)
		files, err := resolve(ctx, client, opts)
		if err != nil {
			c.log.LogConnectionFailure(lctx, err)
			return nil, err
		}
		for _, f := range files {
			c.log.Logger().Debug("file found for S3 Select: s3://%s/%s", opts.Bucket, f)
		}

		reader := &Reader{client: client, opts: opts, files: files}
		s := connector.NewSession(dbcapabilities.S3Select, reader, func() error {
			c.cloud.Destroy()
			return nil
		})
		lctx.SessionID = s.ID()
		c.log.LogConnectionSuccess(lctx)
		return s, nil
	})
}

func (c *Connector) reader(ctx context.Context) (*Reader, error) {
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		return nil, err
	}
	return res.Value.Raw().(*Reader), nil
}

// RunStatement runs a select and returns its rows in column order.
func (c *Connector) RunStatement(ctx context.Context, text string) ([]connector.Row, error) {
	t, err := c.RunQueryToTable(ctx, text, 0)
	if err != nil {
		return nil, err
	}
	rows := make([]connector.Row, 0, t.Len())
	for _, r := range t.Rows {
		rows = append(rows, connector.Row(r))
	}
	return rows, nil
}

// RunQueryToTable runs text, or SELECT * FROM S3Object when text is empty,
// over every resolved object. Results arrive whole; chunkSize does not apply.
func (c *Connector) RunQueryToTable(ctx context.Context, text string, _ int) (*table.Table, error) {
	r, err := c.reader(ctx)
	if err != nil {
		return nil, err
	}
	t, err := r.Query(ctx, text)
	if err != nil {
		c.log.LogOperationFailure(database.LogContext{DatabaseType: dbcapabilities.S3Select, Host: r.opts.Bucket, Operation: "select"}, err)
		return nil, err
	}
	return t, nil
}

func (c *Connector) Destroy() {
	c.lc.Teardown()
}
