package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 18081\n"))
	require.NoError(t, err)

	assert.Equal(t, 18081, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, fortinet.DefaultOptions(), cfg.DriverOptions())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendLocal, cfg.Backup.StorageBackend)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.False(t, cfg.Storage.Minio.Enabled())
	assert.Same(t, cfg, Get())
}

func TestLoadSSHSection(t *testing.T) {
	path := writeConfig(t, `
ssh:
  port: 2222
  timeout: 15s
  keepalive: 0s
  global_delay_factor: 2
  ssh_strict: true
  alt_host_keys: true
  alt_key_file: /etc/fortidriver/known_hosts
  error_markers:
    - "Command fail"
storage:
  minio:
    host: minio.local
    bucket: fortigate
    access_key: ${FORTIDRIVER_TEST_MINIO_KEY}
backup:
  storage_backend: MinIO
`)
	t.Setenv("FORTIDRIVER_TEST_MINIO_KEY", "AKIA-TEST")

	cfg, err := Load(path)
	require.NoError(t, err)

	opts := cfg.DriverOptions()
	assert.Equal(t, 2222, opts.Port)
	assert.Equal(t, 15*time.Second, opts.Timeout)
	assert.Equal(t, 2.0, opts.GlobalDelayFactor)
	assert.True(t, opts.SSHStrict)
	assert.Equal(t, "/etc/fortidriver/known_hosts", opts.AltKeyFile)
	assert.Equal(t, []string{"Command fail"}, opts.ErrorMarkers)

	assert.True(t, cfg.Storage.Minio.Enabled())
	assert.Equal(t, "minio.local:9000", cfg.Storage.Minio.Endpoint())
	assert.Equal(t, "AKIA-TEST", cfg.Storage.Minio.AccessKey)
	assert.Equal(t, BackendMinio, cfg.Backup.StorageBackend)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FORTIDRIVER_SSH_PORT", "8022")
	t.Setenv("FORTIDRIVER_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "ssh:\n  port: 22\n"))
	require.NoError(t, err)
	assert.Equal(t, 8022, cfg.SSH.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"strict without known hosts": "ssh:\n  ssh_strict: true\n",
		"backend":                    "backup:\n  storage_backend: s3\n",
		"concurrency":                "batch:\n  concurrency: 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
