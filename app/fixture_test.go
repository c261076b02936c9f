package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"energydash/adapters/sqlstore"
	"energydash/domain/energy"
	"energydash/internal/metrics"
	"energydash/internal/testkit"
	"energydash/ports"
)

// fixture wires the services over an in-memory SQLite database whose default
// building uses UTC, so generated days line up with calendar days.
type fixture struct {
	buildings ports.BuildingRepository
	readings  ports.ReadingRepository
	weather   ports.WeatherRepository
	alerts    ports.AlertRepository
	metrics   *metrics.Recorder
	energy    *EnergyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.NewSQLiteDB(t)

	f := &fixture{
		buildings: sqlstore.NewBuildingRepository(db),
		readings:  sqlstore.NewReadingRepository(db),
		weather:   sqlstore.NewWeatherRepository(db),
		alerts:    sqlstore.NewAlertRepository(db),
		metrics:   metrics.New(),
	}
	f.energy = NewEnergyService(f.readings, f.metrics, nil)

	b, err := f.buildings.Get(context.Background(), energy.DefaultBuildingID)
	require.NoError(t, err)
	b.Timezone = "UTC"
	require.NoError(t, f.buildings.Save(context.Background(), b))
	return f
}

// seed stores a month of generated readings and the matching weather.
func (f *fixture) seed(t *testing.T) *testkit.ReadingsGenerator {
	t.Helper()
	gen := testkit.NewReadingsGenerator(testkit.DefaultReadingsConfig())
	_, err := f.energy.Create(context.Background(), energy.DefaultBuildingID, energy.Inputs(gen.Readings()))
	require.NoError(t, err)
	require.NoError(t, f.weather.Upsert(context.Background(), gen.Weather(energy.DefaultStation)))
	return gen
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MockWeatherProvider is a testify mock of ports.WeatherProvider
type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Daily(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, error) {
	args := m.Called(ctx, station, start, end)
	days, _ := args.Get(0).([]energy.WeatherDay)
	return days, args.Error(1)
}

func (m *MockWeatherProvider) NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]energy.Station, error) {
	args := m.Called(ctx, lat, lon, limit)
	stations, _ := args.Get(0).([]energy.Station)
	return stations, args.Error(1)
}
