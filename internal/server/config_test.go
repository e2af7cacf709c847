package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelltrack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", config.ListenAddr())
	assert.Equal(t, "info", config.Server.LogLevel)
	assert.Empty(t, config.Server.DatabasePath)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  address              = "0.0.0.0"
  port                 = 9090
  log_level            = "debug"
  database_path        = "sessions.db"
  session_idle_minutes = 120
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", config.ListenAddr())
	assert.Equal(t, "debug", config.Server.LogLevel)
	assert.Equal(t, "sessions.db", config.Server.DatabasePath)
	assert.Equal(t, 120, config.Server.SessionIdleMinutes)
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server {
  port = 7000
}
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:7000", config.ListenAddr())
	assert.Equal(t, "info", config.Server.LogLevel)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig("/nonexistent/shelltrack.hcl")
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHELLTRACK_PORT", "6000")
	t.Setenv("SHELLTRACK_LOG_LEVEL", "warn")

	config := DefaultConfig()
	require.NoError(t, config.ApplyEnv())

	assert.Equal(t, "localhost:6000", config.ListenAddr())
	assert.Equal(t, "warn", config.Server.LogLevel)
}
