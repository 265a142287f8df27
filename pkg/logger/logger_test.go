package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := NewWithConfig("svc", "1.0", Config{Level: level, Encoding: "json", OutputPaths: []string{path}})
	require.NoError(t, err)
	return l, path
}

func readLog(t *testing.T, l *Logger, path string) string {
	t.Helper()
	_ = l.Sync()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestWithLevelLeavesParentAlone(t *testing.T) {
	parent, path := fileLogger(t, "info")

	child, err := parent.WithLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", child.Level())
	assert.Equal(t, "info", parent.Level())

	parent.Debug("parent debug")
	child.Debug("child debug")
	child.Named("factory").Debug("named child debug")
	parent.Info("parent info")

	out := readLog(t, parent, path)
	assert.Contains(t, out, "child debug")
	assert.Contains(t, out, "named child debug")
	assert.Contains(t, out, "parent info")
	assert.NotContains(t, out, "parent debug")

	require.NoError(t, child.SetLevel("error"))
	assert.Equal(t, "info", parent.Level())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level   string
		logged  []string
		dropped []string
	}{
		{level: "debug", logged: []string{"d-msg", "i-msg", "w-msg"}},
		{level: "info", logged: []string{"i-msg", "w-msg"}, dropped: []string{"d-msg"}},
		{level: "warn", logged: []string{"w-msg"}, dropped: []string{"d-msg", "i-msg"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, path := fileLogger(t, tt.level)
			l.Debug("d-msg")
			l.Info("i-msg")
			l.Warn("w-msg")

			out := readLog(t, l, path)
			for _, m := range tt.logged {
				assert.Contains(t, out, m)
			}
			for _, m := range tt.dropped {
				assert.NotContains(t, out, m)
			}
		})
	}
}

func TestSetLevelRaisesAndLowers(t *testing.T) {
	l, path := fileLogger(t, "warn")
	l.Info("before")
	require.NoError(t, l.SetLevel("DEBUG"))
	l.Debug("after")

	out := readLog(t, l, path)
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")

	assert.Error(t, l.SetLevel("loud"))
	_, err := l.WithLevel("loud")
	assert.Error(t, err)
}

func TestNopWithLevel(t *testing.T) {
	child, err := Nop().WithLevel("debug")
	require.NoError(t, err)
	child.Debug("discarded %d", 1)
	assert.Equal(t, "debug", child.Level())
}
