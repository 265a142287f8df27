package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/logger"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         connector.Config
		wantValid   bool
		wantMessage string
		advisory    bool
	}{
		{
			name:        "missing database",
			cfg:         connector.Config{"path": "/tmp"},
			wantValid:   false,
			wantMessage: "Invalid connection details. Database is required.",
		},
		{
			name:      "complete",
			cfg:       connector.Config{"path": "/tmp", "database": "t1"},
			wantValid: true,
		},
		{
			name:      "default path",
			cfg:       connector.Config{"database": "t1"},
			wantValid: true,
			advisory:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.cfg, logger.Nop()).ValidateConfig()
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, res.Message)
			}
			assert.Equal(t, tt.advisory, res.HasAdvisory())
		})
	}
}

func TestBuildAddress(t *testing.T) {
	dir := t.TempDir()

	res, err := New(connector.Config{"path": dir, "database": "t1"}, logger.Nop()).BuildAddress()
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, filepath.Join(dir, "t1.db"), res.Value.DSN)
	assert.Equal(t, "sqlite://"+filepath.ToSlash(filepath.Join(dir, "t1.db")), res.Value.URI())

	res, err = New(connector.Config{"path": dir, "database": "t2.db"}, logger.Nop()).BuildAddress()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "t2.db"), res.Value.DSN)

	res, err = New(connector.Config{"path": dir}, logger.Nop()).BuildAddress()
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Nil(t, res.Value)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := New(connector.Config{"path": t.TempDir(), "database": "life"}, logger.Nop())
	state := c.(connector.SessionProvider)

	assert.Equal(t, connector.StateUnopened, state.State())

	first, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	second, err := c.OpenSession(ctx, connector.SessionOptions{Params: map[string]any{"ignored": true}})
	require.NoError(t, err)
	assert.Same(t, first.Value, second.Value)
	assert.Equal(t, connector.StateOpen, state.State())

	c.Destroy()
	assert.Equal(t, connector.StateClosed, state.State())
	c.Destroy()
	assert.Equal(t, connector.StateClosed, state.State())

	third, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first.Value.ID(), third.Value.ID())
	c.Destroy()
}

func TestOpenSessionInvalidConfig(t *testing.T) {
	c := New(connector.Config{}, logger.Nop())

	_, err := c.OpenSession(context.Background(), connector.SessionOptions{})
	require.Error(t, err)
	assert.True(t, connector.IsConfiguration(err))
	assert.Contains(t, err.Error(), "Database is required")

	c.Destroy()
}

func TestStatementsAndBulkLoad(t *testing.T) {
	ctx := context.Background()
	c := New(connector.Config{"path": t.TempDir(), "database": "t1"}, logger.Nop())
	defer c.Destroy()

	_, err := c.RunStatement(ctx, "CREATE TABLE test (id INT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = c.RunStatement(ctx, "INSERT INTO test VALUES (1)")
	require.NoError(t, err)
	_, err = c.RunStatement(ctx, "INSERT INTO test VALUES (2)")
	require.NoError(t, err)

	rows, err := c.RunStatement(ctx, "SELECT * FROM test")
	require.NoError(t, err)
	assert.Equal(t, []connector.Row{{int64(1)}, {int64(2)}}, rows)

	tbl, err := c.RunQueryToTable(ctx, "SELECT * FROM test", 1)
	require.NoError(t, err)
	require.NoError(t, c.BulkLoadTable(ctx, tbl, "copy_test", 0, connector.ExistsReplace))

	_, err = c.RunStatement(ctx, "INSERT INTO copy_test VALUES (3)")
	require.NoError(t, err)
	rows, err = c.RunStatement(ctx, "SELECT * FROM copy_test")
	require.NoError(t, err)
	assert.Equal(t, []connector.Row{{int64(1)}, {int64(2)}, {int64(3)}}, rows)

	err = c.BulkLoadTable(ctx, nil, "copy_test", 0, connector.ExistsAppend)
	assert.ErrorIs(t, err, connector.ErrEmptyTable)
}
