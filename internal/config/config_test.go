package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xqbook/navigator/internal/store"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, `
database: /tmp/book.db
log:
  level: debug
  format: json
session:
  horizon: 4
  auto_extend: false
  random_seed: 42
turn:
  marker_field: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/book.db", cfg.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Session.Horizon)
	assert.False(t, cfg.Session.AutoExtend)
	assert.Equal(t, uint64(42), cfg.Session.RandomSeed)
	assert.Equal(t, store.Black, cfg.TurnFunc()("x y b"))
	assert.Equal(t, store.Red, cfg.TurnFunc()("x b w"))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, "log:\n  level: warn\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, -1, cfg.Session.Horizon)
	assert.True(t, cfg.Session.AutoExtend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.yaml")
	writeFile(t, path, "log:\n  level: info\n")
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv("XQBOOK_HORIZON", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Session.Horizon)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "log: [unclosed\n")
	_, err = Load(bad)
	assert.Error(t, err)

	format := filepath.Join(dir, "format.yaml")
	writeFile(t, format, "log:\n  format: xml\n")
	_, err = Load(format)
	assert.Error(t, err)
}

func TestDiscoverDB(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	dbFile := filepath.Join(root, DBFileName)
	writeFile(t, dbFile, "")
	t.Setenv(EnvDB, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Chdir(nested)

	t.Run("walk up", func(t *testing.T) {
		got, err := DiscoverDB("", nil)
		require.NoError(t, err)
		want, _ := filepath.EvalSymlinks(dbFile)
		gotReal, _ := filepath.EvalSymlinks(got)
		assert.Equal(t, want, gotReal)
	})

	t.Run("flag wins over walk up", func(t *testing.T) {
		other := filepath.Join(t.TempDir(), "other.db")
		writeFile(t, other, "")
		got, err := DiscoverDB(other, nil)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("missing flag path", func(t *testing.T) {
		_, err := DiscoverDB(filepath.Join(root, "nope.db"), nil)
		assert.ErrorIs(t, err, ErrNoDatabase)
	})

	t.Run("env wins", func(t *testing.T) {
		env := filepath.Join(t.TempDir(), "env.db")
		writeFile(t, env, "")
		t.Setenv(EnvDB, env)
		got, err := DiscoverDB("", nil)
		require.NoError(t, err)
		assert.Equal(t, env, got)
	})
}

func TestDiscoverDB_NothingFound(t *testing.T) {
	t.Setenv(EnvDB, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, err := DiscoverDB("", Default())
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.Equal(t, DBFileName, CreatePath("", Default()))
	assert.Equal(t, "x.db", CreatePath("x.db", Default()))
}
