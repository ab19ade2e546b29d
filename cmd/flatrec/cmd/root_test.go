package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatrec/pkg/config"
)

func TestBuildLogger(t *testing.T) {
	logger, err := buildLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	// Unknown levels fall back to info instead of failing startup.
	logger, err = buildLogger("chatty")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadOrDefaultConfig_FromFlags(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("config", ""))
	require.NoError(t, rootCmd.PersistentFlags().Set("backend", config.BackendPebble))
	require.NoError(t, rootCmd.PersistentFlags().Set("data-dir", t.TempDir()))

	cfg, err := loadOrDefaultConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, config.BackendPebble, cfg.Store.Backend)
}

func TestLoadOrDefaultConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flatrec.yaml")
	cfgYAML := "port: 9090\nbind: 127.0.0.1\napi_key: test\nstore:\n  backend: sqlite\n  sqlite_path: " +
		filepath.Join(dir, "records.db") + "\nlogging:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(cfgYAML), 0600))

	require.NoError(t, rootCmd.PersistentFlags().Set("config", path))
	defer func() { _ = rootCmd.PersistentFlags().Set("config", "") }()

	cfg, err := loadOrDefaultConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadOrDefaultConfig_InvalidFile(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Set("config", "/nonexistent/flatrec.yaml"))
	defer func() { _ = rootCmd.PersistentFlags().Set("config", "") }()

	_, err := loadOrDefaultConfig(rootCmd)
	assert.Error(t, err)
}
