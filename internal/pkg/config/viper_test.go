package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  server:
    cors: "http://localhost:3000, https://numsphere.dev,"
modules:
  authflow:
    cooldown_seconds: 30
    flow_idle_ttl_minutes: 15
    max_flows: 100
  notification:
    consumer_names: ""
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.GetSecond("modules.authflow.cooldown_seconds"))
	assert.Equal(t, 15*time.Minute, cfg.GetMinute("modules.authflow.flow_idle_ttl_minutes"))
	assert.Equal(t, 100, cfg.GetInt("modules.authflow.max_flows"))
	assert.Equal(t, []string{"http://localhost:3000", "https://numsphere.dev"}, cfg.GetArray("app.server.cors"))
	assert.Empty(t, cfg.GetArray("modules.notification.consumer_names"))
	assert.Empty(t, cfg.GetArray("modules.notification.missing"))
	assert.Zero(t, cfg.GetInt("modules.authflow.missing"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))

	assert.Error(t, err)
}

func TestNewViper_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	t.Setenv("MODULES_AUTHFLOW_MAX_FLOWS", "7")

	cfg, err := NewViper(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.Equal(t, 7, cfg.GetInt("modules.authflow.max_flows"))
	assert.Equal(t, 30*time.Second, cfg.GetSecond("modules.authflow.cooldown_seconds"))
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
