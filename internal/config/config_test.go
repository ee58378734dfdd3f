package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 4, cfg.Notification.Workers)
	assert.Equal(t, time.Second, cfg.Notification.PollTimeout)
	assert.Equal(t, "host=localhost user=postgres password= dbname=haccp port=5432 sslmode=disable", cfg.DSN())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
db:
  host: db.internal
  name: journals
notification:
  workers: 2
  poll_timeout: 3s
log:
  level: debug
`), 0o600))
	t.Setenv("HACCP_DB_PASSWORD", "s3cret")
	t.Setenv("HACCP_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "journals", cfg.DB.Name)
	assert.Equal(t, "s3cret", cfg.DB.Password)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Notification.Workers)
	assert.Equal(t, 3*time.Second, cfg.Notification.PollTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	chdir(t, t.TempDir())
	t.Setenv("HACCP_NOTIFICATION_WORKERS", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "notification.workers")
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
