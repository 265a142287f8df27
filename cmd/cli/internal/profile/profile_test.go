package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `
type: postgre
debug: true
config:
  host: db.internal
  port: 5433
  password: keyring:redb/pg
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgre", p.Type)
	assert.True(t, p.Debug)
	assert.Equal(t, "db.internal", p.Config["host"])
	assert.Equal(t, 5433, p.Config["port"])
	assert.Equal(t, "keyring:redb/pg", p.Config["password"])
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeProfile(t, `
type: postgre
config:
  host: db.internal
  password: placeholder
`)
	t.Setenv("REDB_CONNECT_TYPE", "redshift")
	t.Setenv("REDB_CONNECT_CONFIG_PASSWORD", "from-env")

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redshift", p.Type)
	assert.Equal(t, "from-env", p.Config["password"])
	assert.Equal(t, "db.internal", p.Config["host"])
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("REDB_CONNECT_TYPE", "sqlite")

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", p.Type)
	assert.Empty(t, p.Config)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
