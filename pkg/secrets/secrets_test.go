package secrets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "keyring.json")
	fs := NewFileStore(path, "master")

	_, err := fs.Get("redb", "pg")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, fs.Set("redb", "pg", "s3cr&t"))
	got, err := fs.Get("redb", "pg")
	require.NoError(t, err)
	assert.Equal(t, "s3cr&t", got)

	_, err = NewFileStore(path, "other").Get("redb", "pg")
	assert.Error(t, err)

	require.NoError(t, fs.Delete("redb", "pg"))
	require.NoError(t, fs.Delete("redb", "pg"))
	_, err = fs.Get("redb", "pg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSystemStore(t *testing.T) {
	keyring.MockInit()

	s := SystemStore{}
	_, err := s.Get("redb", "sf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("redb", "sf", "token"))
	got, err := s.Get("redb", "sf")
	require.NoError(t, err)
	assert.Equal(t, "token", got)
	require.NoError(t, s.Delete("redb", "sf"))
	require.NoError(t, s.Delete("redb", "sf"))
}

func TestResolverValue(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "k.json"), "m")
	require.NoError(t, fs.Set("redb", "pg", "pw"))

	r := NewResolver(fs)
	r.lookup = func(name string) (string, bool) {
		if name == "PG_HOST" {
			return "db.internal", true
		}
		return "", false
	}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "localhost", want: "localhost"},
		{name: "keyring", in: "keyring:redb/pg", want: "pw"},
		{name: "env", in: "env:PG_HOST", want: "db.internal"},
		{name: "missing env", in: "env:NOPE", wantErr: true},
		{name: "missing entry", in: "keyring:redb/other", wantErr: true},
		{name: "malformed", in: "keyring:redb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Value(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolverConfig(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("redb", "snow", "hunter2"))

	cfg := map[string]any{
		"username": "loader",
		"password": "keyring:redb/snow",
		"port":     5432,
		"extra":    map[string]any{"token": "keyring:redb/snow"},
		"list":     []any{"keyring:redb/snow", 1},
	}
	out, err := NewResolver(SystemStore{}).Config(cfg)
	require.NoError(t, err)

	assert.Equal(t, "hunter2", out["password"])
	assert.Equal(t, 5432, out["port"])
	assert.Equal(t, map[string]any{"token": "hunter2"}, out["extra"])
	assert.Equal(t, []any{"hunter2", 1}, out["list"])
	assert.Equal(t, "keyring:redb/snow", cfg["password"])

	_, err = NewResolver(SystemStore{}).Config(map[string]any{"password": "keyring:redb/none"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestLazyStoreBuildsOnFirstUse(t *testing.T) {
	built := 0
	s := Lazy(func() Store {
		built++
		return NewFileStore(filepath.Join(t.TempDir(), "k.json"), "m")
	})

	out, err := NewResolver(s).Config(map[string]any{"host": "plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain", out["host"])
	assert.Zero(t, built)

	require.NoError(t, s.Set("svc", "u", "v"))
	got, err := s.Get("svc", "u")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, built)
}
