package config

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, "127.0.0.1", config.Bind)
	assert.Equal(t, "auto", config.APIKey)
	assert.Equal(t, BackendPebble, config.Store.Backend)
	assert.Equal(t, "./data", config.Store.DataDir)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		config := DefaultConfig()
		config.Store.Backend = "mongo"
		assert.Error(t, config.Validate())
	})

	t.Run("sqlite requires path", func(t *testing.T) {
		config := DefaultConfig()
		config.Store.Backend = BackendSQLite
		assert.Error(t, config.Validate())

		config.Store.SQLitePath = "./records.db"
		assert.NoError(t, config.Validate())
	})

	t.Run("invalid port", func(t *testing.T) {
		config := DefaultConfig()
		config.Port = 0
		assert.Error(t, config.Validate())
	})
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

		// Verify it's valid hex
		_, err = hex.DecodeString(key)
		assert.NoError(t, err)
	})

	t.Run("generate different keys", func(t *testing.T) {
		key1, err := GenerateSecureKey(16)
		require.NoError(t, err)
		key2, err := GenerateSecureKey(16)
		require.NoError(t, err)

		assert.NotEqual(t, key1, key2)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		original := DefaultConfig()
		original.Port = 9200
		original.Store.Backend = BackendSQLite
		original.Store.SQLitePath = "./records.db"
		original.Store.DisplayFields = map[string]string{"sys_user": "name"}

		data, err := yaml.Marshal(original)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(configPath, data, 0600))

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, original, loaded)
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestSaveAndBootstrapConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	config, err := BootstrapConfig(configPath, "./somewhere")
	require.NoError(t, err)
	assert.True(t, ConfigExists(configPath))
	assert.Len(t, config.APIKey, 64)
	assert.Equal(t, "./somewhere", config.Store.DataDir)

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)
}
