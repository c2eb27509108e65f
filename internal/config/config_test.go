package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage:
  driver: "sqlite"
  dsn: "storage/test.db"
http_server:
  address: "localhost:9000"
  read_timeout: 3s
process:
  retain: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "storage/test.db", cfg.Storage.DSN)
	assert.Equal(t, "localhost:9000", cfg.HTTPServer.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTPServer.IdleTimeout)
	assert.Equal(t, 5, cfg.Process.Retain)
	assert.Empty(t, cfg.Events.AMQPURL)
	assert.Equal(t, "cadastro.events", cfg.Events.Exchange)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
env: "dev"
storage:
  dsn: "storage/test.db"
http_server:
  address: "localhost:9000"
`)
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("STORAGE_DSN", "postgres://u:p@db:5432/cadastro")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/cadastro", cfg.Storage.DSN)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = Load(writeConfig(t, `
env: "dev"
storage:
  driver: "oracle"
  dsn: "x"
http_server:
  address: "localhost:9000"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")

	_, err = Load(writeConfig(t, `
storage:
  dsn: "x"
http_server:
  address: "localhost:9000"
`))
	require.Error(t, err)
}
