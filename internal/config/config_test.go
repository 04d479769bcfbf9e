package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "srl_archive.db", cfg.DBPath)
	assert.Equal(t, "localhost:50061", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srl.toml")
	content := "db = \"/data/runs.db\"\naddr = \"0.0.0.0:7000\"\n\n[log]\nlevel = \"debug\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/data/runs.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:7000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srl.toml")
	require.NoError(t, os.WriteFile(path, []byte("db = \"file.db\"\n"), 0o644))
	t.Setenv("SRL_DB", "env.db")
	t.Setenv("SRL_LOG_LEVEL", "warn")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
