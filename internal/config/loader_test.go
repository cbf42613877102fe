package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"APIRESOLVE_PID", "APIRESOLVE_TYPE", "APIRESOLVE_FORMAT", "APIRESOLVE_DEMANGLE",
		"APIRESOLVE_LIMIT", "APIRESOLVE_LOG_LEVEL", "APIRESOLVE_LOG_PRETTY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewLoaderAt(t.TempDir()).Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`
resolver:
  pid: 42
  type: go
output:
  format: json
  limit: 10
log:
  level: debug
  pretty: false
`), 0600))

	cfg, err := NewLoaderAt(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Resolver.PID)
	assert.Equal(t, "go", cfg.Resolver.Type)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
	assert.Equal(t, 10, cfg.Output.Limit)
	assert.False(t, cfg.Output.Demangle)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	t.Setenv("APIRESOLVE_TYPE", "kernel")
	t.Setenv("APIRESOLVE_DEMANGLE", "true")
	t.Setenv("APIRESOLVE_LIMIT", "3")

	cfg, err = NewLoaderAt(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Resolver.PID, "file value survives")
	assert.Equal(t, "kernel", cfg.Resolver.Type)
	assert.True(t, cfg.Output.Demangle)
	assert.Equal(t, 3, cfg.Output.Limit)
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APIRESOLVE_PID", "self")

	_, err := NewLoaderAt(t.TempDir()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIRESOLVE_PID")
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("resolver: [oops"), 0600))

	_, err := NewLoaderAt(dir).Load()
	assert.Error(t, err)
}

func TestNewLoader_EnvDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	assert.Equal(t, filepath.Join(dir, ConfigFile), NewLoader().Path())
}

func TestLoadFromEnv_NeedsPointer(t *testing.T) {
	assert.Error(t, LoadFromEnv(Config{}))
}
