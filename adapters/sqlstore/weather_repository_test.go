package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/adapters/sqlstore"
	"energydash/domain/energy"
	"energydash/internal/testkit"
)

func TestWeatherRepository_UpsertAndRange(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewWeatherRepository(testkit.NewSQLiteDB(t))

	gen := testkit.NewReadingsGenerator(testkit.DefaultReadingsConfig())
	days := gen.Weather(energy.DefaultStation)
	require.NoError(t, repo.Upsert(ctx, days))

	got, err := repo.Range(ctx, energy.DefaultStation,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.InDelta(t, days[9].AvgTemp, got[0].AvgTemp, 1e-9)
	assert.InDelta(t, days[9].HeatingDegreeDays, got[0].HeatingDegreeDays, 1e-9)

	updated := got[0]
	updated.AvgTemp = 25
	updated.HeatingDegreeDays = 0
	updated.CoolingDegreeDays = 7
	require.NoError(t, repo.Upsert(ctx, []energy.WeatherDay{updated}))

	again, err := repo.Range(ctx, energy.DefaultStation, updated.Date, updated.Date)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 25.0, again[0].AvgTemp)
	assert.Equal(t, 7.0, again[0].CoolingDegreeDays)

	other, err := repo.Range(ctx, "99999", updated.Date, updated.Date)
	require.NoError(t, err)
	assert.Empty(t, other)
}
