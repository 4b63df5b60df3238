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
	cfg := DefaultConfig()

	assert.Equal(t, 32, cfg.Tree.Order)
	assert.True(t, cfg.Tree.DestroyValues)
	assert.Equal(t, "127.0.0.1", cfg.API.Bind)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "auto", cfg.API.APIKey)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestGenerateSecureKey(t *testing.T) {
	t.Run("generate 32 byte key", func(t *testing.T) {
		key, err := GenerateSecureKey(32)
		require.NoError(t, err)
		assert.Len(t, key, 64) // 32 bytes = 64 hex characters

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

	t.Run("zero length", func(t *testing.T) {
		key, err := GenerateSecureKey(0)
		require.NoError(t, err)
		assert.Empty(t, key)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "bptree_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "config.yaml")
		expected := &Config{
			Tree: Tree{Order: 64, DestroyValues: false},
			API:  API{Bind: "0.0.0.0", Port: 9000, APIKey: "test-api-key"},
			Logging: Logging{
				Level: "debug",
			},
		}

		err = SaveConfig(expected, configPath)
		require.NoError(t, err)

		loaded, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expected, loaded)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		tmpDir, err := os.MkdirTemp("", "bptree_config_test")
		require.NoError(t, err)
		defer os.RemoveAll(tmpDir)

		configPath := filepath.Join(tmpDir, "invalid.yaml")
		err = os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}

func TestSaveConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bptree_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	cfg := DefaultConfig()

	err = SaveConfig(cfg, configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBootstrapConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bptree_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg, err := BootstrapConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Tree.Order)
	assert.Equal(t, "127.0.0.1", cfg.API.Bind)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NotEqual(t, "auto", cfg.API.APIKey)
	_, err = hex.DecodeString(cfg.API.APIKey)
	assert.NoError(t, err)

	assert.True(t, ConfigExists(configPath))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "bptree")
	assert.Contains(t, path, "config.yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "bptree_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	err = os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}

func TestConfigYAMLMarshalling(t *testing.T) {
	cfg := &Config{
		Tree: Tree{Order: 16, DestroyValues: true},
		API:  API{Bind: "localhost", Port: 9999, APIKey: "api-key-123"},
		Logging: Logging{
			Level: "warn",
		},
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var unmarshalled Config
	err = yaml.Unmarshal(data, &unmarshalled)
	require.NoError(t, err)

	assert.Equal(t, cfg, &unmarshalled)
}

func TestSaveConfigErrorHandling(t *testing.T) {
	cfg := DefaultConfig()

	// A regular file cannot act as a directory, so MkdirAll fails beneath
	// it whatever the caller's privileges.
	blocker, err := os.CreateTemp("", "bptree_config_blocker")
	require.NoError(t, err)
	blocker.Close()
	defer os.Remove(blocker.Name())

	invalidPath := filepath.Join(blocker.Name(), "config.yaml")

	err = SaveConfig(cfg, invalidPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
