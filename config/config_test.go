package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
env: production

server:
  port: 9090
  host: "0.0.0.0"
  frontend_origin: "https://dash.example.com"

data:
  source: "s3://funnel-data/events.xlsx"
  timezone: "America/Mexico_City"

clickhouse:
  enabled: true
  host: "ch.internal"
  database: "funnel"

redis:
  addr: "localhost:6379"
  ttl_seconds: 120
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "https://dash.example.com", cfg.Server.FrontendOrigin)

	assert.Equal(t, "s3://funnel-data/events.xlsx", cfg.Data.Source)
	loc, err := cfg.Data.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())

	assert.True(t, cfg.ClickHouse.Enabled)
	assert.Equal(t, "ch.internal", cfg.ClickHouse.Host)
	assert.Equal(t, 9000, cfg.ClickHouse.NativePort)
	assert.Equal(t, 5*time.Second, cfg.ClickHouse.DialTimeout())

	assert.Equal(t, 2*time.Minute, cfg.Redis.TTL())
	assert.Equal(t, "us-east-1", cfg.S3.Region)
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("{}\n"), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendOrigin)
	assert.Equal(t, time.Hour, cfg.Redis.TTL())
	assert.NotEmpty(t, cfg.Data.Source)

	loc, err := cfg.Data.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("FUNNEL_SOURCE", "clickhouse://funnel_events")
	t.Setenv("CLICKHOUSE_HOST", "clickhouse")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/funnel?sslmode=disable")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "clickhouse://funnel_events", cfg.Data.Source)
	assert.True(t, cfg.ClickHouse.Enabled)
	assert.Equal(t, "clickhouse", cfg.ClickHouse.Host)
	assert.True(t, cfg.Postgres.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
