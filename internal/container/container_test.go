package container

import (
	"context"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/energy"
	"energydash/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Database.Driver = "sqlite3"
	cfg.Database.URL = ":memory:"
	cfg.Log.Level = "ERROR"
	return cfg
}

func TestContainer_OpenSQLite(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx))
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Cache)
	assert.False(t, c.WeatherService.HasProvider())

	b, err := c.SettingsService.Get(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)
	assert.Equal(t, "Main Office Building", b.Name)

	require.NoError(t, c.SweepAlerts(ctx))
}

func TestContainer_ProviderEnabledWithKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Weather.APIKey = "secret"
	cfg.Metrics.Enabled = false

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	assert.True(t, c.WeatherService.HasProvider())
	assert.Nil(t, c.Metrics)
}

func TestContainer_Scheduler(t *testing.T) {
	cfg := testConfig(t)
	cfg.Alerts.Schedule = "not a schedule"

	c, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, c.StartScheduler())

	require.NoError(t, c.Open(context.Background()))
	assert.Error(t, c.StartScheduler())

	c.Config.Alerts.Schedule = "@daily"
	require.NoError(t, c.StartScheduler())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Shutdown(ctx))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
