package ports

import (
	"context"
	"time"

	"energydash/domain/energy"
)

// WeatherRepository stores daily observations per station.
type WeatherRepository interface {
	Range(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, error)
	// Upsert inserts or replaces days keyed by (station, date).
	Upsert(ctx context.Context, days []energy.WeatherDay) error
}

// WeatherProvider fetches observations from an external weather service.
type WeatherProvider interface {
	Daily(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, error)
	NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]energy.Station, error)
}
