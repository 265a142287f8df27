// Package awsraw hands out configured AWS SDK sessions. The s3select and
// dynamodb connectors build their service clients from it.
package awsraw

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/redbco/redb-connect/internal/database"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
)

// DefaultRegion is used when the configuration names no region.
const DefaultRegion = "us-east-1"

// Connector opens a session whose Raw value is an aws.Config.
type Connector struct {
	connector.UnsupportedTableOps
	connector.UnsupportedAddress

	dbType dbcapabilities.DatabaseID
	cfg    connector.Config
	lc     *connector.Lifecycle
	log    *database.DatabaseLogger
}

// New creates a raw AWS connector.
func New(cfg connector.Config, log *logger.Logger) connector.Connector {
	return NewFor(dbcapabilities.AWS, cfg, log)
}

// NewFor creates a raw AWS connector that reports as dbType. Service
// connectors use it so their logs and errors carry their own type.
func NewFor(dbType dbcapabilities.DatabaseID, cfg connector.Config, log *logger.Logger) *Connector {
	dl := database.NewDatabaseLogger(log, dbType)
	return &Connector{
		UnsupportedTableOps: connector.UnsupportedTableOps{DatabaseType: dbType},
		UnsupportedAddress:  connector.UnsupportedAddress{DatabaseType: dbType},
		dbType:              dbType,
		cfg:                 cfg,
		lc:                  connector.NewLifecycle(dbType, dl.Logger()),
		log:                 dl,
	}
}

func (c *Connector) Type() dbcapabilities.DatabaseID { return c.dbType }

// State returns the session lifecycle state.
func (c *Connector) State() connector.SessionState { return c.lc.State() }

// Region returns the configured region or DefaultRegion.
func Region(cfg connector.Config) string {
	return cfg.StringOr(connector.KeyRegion, DefaultRegion)
}

// Validate checks an AWS style configuration. It never fails; a missing
// region is advisory.
func Validate(dbType dbcapabilities.DatabaseID, cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbType)
	if !cfg.Has(connector.KeyRegion) {
		v.Advise("Region is not provided. Default region " + DefaultRegion + " will be used.")
	}
	if cfg.Has(connector.KeyAccessKey) != cfg.Has(connector.KeySecretKey) {
		v.Advise("Only one of access key and secret key is provided. The default credential chain will be used.")
	}
	return v
}

func (c *Connector) ValidateConfig() connector.ValidationResult {
	return c.lc.Validate(func() connector.ValidationResult {
		res := Validate(c.dbType, c.cfg).Result()
		c.log.LogAdvisory(c.dbType, res.Message)
		return res
	})
}

// LoadConfig builds an aws.Config from static credentials when both keys
// are given, or from the default credential chain otherwise.
func LoadConfig(ctx context.Context, cfg connector.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(Region(cfg)),
	}
	if cfg.Has(connector.KeyAccessKey) && cfg.Has(connector.KeySecretKey) {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.String(connector.KeyAccessKey),
			cfg.String(connector.KeySecretKey),
			cfg.String(connector.KeySessionToken),
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	// Custom endpoint, e.g. LocalStack or DynamoDB Local
	if cfg.Has(connector.KeyEndpoint) {
		awsCfg.BaseEndpoint = aws.String(cfg.String(connector.KeyEndpoint))
	}
	return awsCfg, nil
}

func (c *Connector) OpenSession(ctx context.Context, _ connector.SessionOptions) (connector.Result[connector.Session], error) {
	c.ValidateConfig()
	return c.lc.Open(func() (connector.Session, error) {
		lctx := database.LogContext{DatabaseType: c.dbType, Host: Region(c.cfg)}
		c.log.LogConnectionAttempt(lctx)

		awsCfg, err := LoadConfig(ctx, c.cfg)
		if err != nil {
			cerr := connector.NewConnectionError(c.dbType, Region(c.cfg), 0, err)
			c.log.LogConnectionFailure(lctx, cerr)
			return nil, cerr
		}

		s := connector.NewSession(c.dbType, awsCfg, nil)
		lctx.SessionID = s.ID()
		c.log.LogConnectionSuccess(lctx)
		return s, nil
	})
}

// AWSConfig opens the session if needed and returns its aws.Config.
func (c *Connector) AWSConfig(ctx context.Context) (aws.Config, error) {
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	if err != nil {
		return aws.Config{}, err
	}
	return res.Value.Raw().(aws.Config), nil
}

// Destroy forgets the session.
func (c *Connector) Destroy() {
	c.lc.Teardown()
}
