package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/internal/errors"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/energy?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("WEATHER_CACHE_TTL", "30m")
	t.Setenv("ALERT_LOOKBACK_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Weather.CacheTTL)
	assert.Equal(t, "10637", cfg.Weather.DefaultStation)
	assert.Equal(t, "@hourly", cfg.Alerts.Schedule)
	assert.Equal(t, 14, cfg.Alerts.LookbackDays)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "energydash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite3
  url: /tmp/energy.db
alerts:
  schedule: "0 6 * * *"
log:
  format: json
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "/tmp/energy.db", cfg.Database.URL)
	assert.Equal(t, "0 6 * * *", cfg.Alerts.Schedule)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "mysql://x")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
