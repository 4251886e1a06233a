package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v := New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))

	settings, err := Load(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, "root", settings.Remote.User)
	assert.Equal(t, 22, settings.Remote.Port)
	assert.Equal(t, 30*time.Second, settings.Probe.Timeout)
	assert.Equal(t, DefaultAgentListen, settings.Serve.Listen)
	assert.Empty(t, settings.Remote.Endpoint)
	assert.Empty(t, settings.Remote.AgentURL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
remote:
  endpoint: 203.0.113.7
  user: deploy
  identity: ~/.ssh/id_ed25519
probe:
  timeout: 45s
serve:
  listen: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	v := New()
	v.SetConfigFile(configPath)

	settings, err := Load(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.7", settings.Remote.Endpoint)
	assert.Equal(t, "deploy", settings.Remote.User)
	assert.Equal(t, "~/.ssh/id_ed25519", settings.Remote.Identity)
	assert.Equal(t, 45*time.Second, settings.Probe.Timeout)
	assert.Equal(t, "127.0.0.1:9000", settings.Serve.Listen)
	// Unset keys keep defaults
	assert.Equal(t, 22, settings.Remote.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HERMES_REMOTE_ENDPOINT", "198.51.100.4")
	t.Setenv("HERMES_REMOTE_AGENT_URL", "http://127.0.0.1:8000")

	v := New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))

	settings, err := Load(context.Background(), v)
	require.NoError(t, err)

	assert.Equal(t, "198.51.100.4", settings.Remote.Endpoint)
	assert.Equal(t, "http://127.0.0.1:8000", settings.Remote.AgentURL)
}

func TestLoadMalformedConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("remote: [not: a: map"), 0600))

	v := New()
	v.SetConfigFile(configPath)

	_, err := Load(context.Background(), v)
	assert.Error(t, err)
}
