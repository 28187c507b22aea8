package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("JASKTODO_CONFIG", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, BackendMemory, cfg.Store.Backend)
	require.Equal(t, "uuid", cfg.Store.IDPolicy)
	require.Equal(t, "Tasks", cfg.UI.Title)
	require.Equal(t, "Enter task", cfg.UI.Placeholder)
	require.True(t, cfg.UI.AltScreen)
	require.Empty(t, cfg.Log.Path)
	require.Equal(t, "127.0.0.1:8080", cfg.Web.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	body := `
[store]
backend = "SQLite"
id_policy = "sequence"

[ui]
title = "Groceries"
alt_screen = false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("JASKTODO_UI_PLACEHOLDER", "What next?")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, BackendSQLite, cfg.Store.Backend)
	require.Equal(t, "sequence", cfg.Store.IDPolicy)
	require.Equal(t, "Groceries", cfg.UI.Title)
	require.False(t, cfg.UI.AltScreen)
	require.Equal(t, "What next?", cfg.UI.Placeholder)
}

func TestLoadDefaultLocation(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, ".config", "jasktodo")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("[web]\naddr = \":9999\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Web.Addr)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	isolate(t)

	t.Setenv("JASKTODO_STORE_BACKEND", "postgres")
	_, err := Load("")
	require.ErrorIs(t, err, ErrUnknownBackend)

	t.Setenv("JASKTODO_STORE_BACKEND", "memory")
	t.Setenv("JASKTODO_STORE_ID_POLICY", "millis")
	_, err = Load("")
	require.ErrorIs(t, err, ErrUnknownIDPolicy)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.toml"))
	require.Error(t, err)
}
