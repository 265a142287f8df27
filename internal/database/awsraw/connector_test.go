package awsraw

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/logger"
	"github.com/redbco/redb-connect/pkg/table"
)

func TestValidateAlwaysValid(t *testing.T) {
	c := New(connector.Config{}, logger.Nop())
	res := c.ValidateConfig()
	assert.True(t, res.Valid)
	assert.Contains(t, res.Message, "Default region us-east-1")

	res = New(connector.Config{"region": "eu-west-1"}, logger.Nop()).ValidateConfig()
	assert.True(t, res.Valid)
	assert.Empty(t, res.Message)
}

func TestUnsupportedOperations(t *testing.T) {
	c := New(connector.Config{}, logger.Nop())
	ctx := context.Background()

	res, err := c.BuildAddress()
	assert.True(t, connector.IsUnsupported(err))
	assert.False(t, res.Valid)
	assert.Equal(t, "Unsupported method for aws", res.Message)

	_, err = c.RunStatement(ctx, "select 1")
	assert.True(t, connector.IsUnsupported(err))
	_, err = c.RunQueryToTable(ctx, "select 1", 0)
	assert.True(t, connector.IsUnsupported(err))
	err = c.BulkLoadTable(ctx, table.New([]string{"a"}, []any{1}), "t", 0, connector.ExistsAppend)
	assert.True(t, connector.IsUnsupported(err))
}

func TestOpenSessionStaticCredentials(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")
	t.Setenv("AWS_PROFILE", "")

	c := NewFor(dbcapabilities.AWS, connector.Config{
		"access_key":    "AKIDEXAMPLE",
		"secret_key":    "secret",
		"session_token": "token",
		"region":        "eu-central-1",
		"endpoint":      "http://localhost:4566",
	}, logger.Nop())

	ctx := context.Background()
	res, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	require.True(t, res.Valid)

	awsCfg, ok := res.Value.Raw().(aws.Config)
	require.True(t, ok)
	assert.Equal(t, "eu-central-1", awsCfg.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(awsCfg.BaseEndpoint))

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
	assert.Equal(t, "token", creds.SessionToken)

	again, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	assert.Same(t, res.Value, again.Value)

	c.Destroy()
	c.Destroy()
	assert.Equal(t, connector.StateClosed, c.State())
}
