package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"energydash/domain/energy"
	"energydash/ports"
)

// weatherRepository implements the WeatherRepository interface
type weatherRepository struct {
	db *sqlx.DB
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *sqlx.DB) ports.WeatherRepository {
	return &weatherRepository{db: db}
}

// Range retrieves a station's days within [start, end], oldest first
func (r *weatherRepository) Range(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, error) {
	days := make([]energy.WeatherDay, 0)
	err := r.db.SelectContext(ctx, &days, r.db.Rebind(`
		SELECT station, day, avg_temp, min_temp, max_temp, precipitation, wind_speed,
			pressure, heating_degree_days, cooling_degree_days
		FROM weather_data
		WHERE station = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`), station, dateArg(start), dateArg(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query weather data: %w", err)
	}
	for i := range days {
		d := days[i].Date
		days[i].Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return days, nil
}

// Upsert stores days, replacing existing observations for the same station and day
func (r *weatherRepository) Upsert(ctx context.Context, days []energy.WeatherDay) error {
	if len(days) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO weather_data (
			station, day, avg_temp, min_temp, max_temp, precipitation, wind_speed,
			pressure, heating_degree_days, cooling_degree_days
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (station, day) DO UPDATE SET
			avg_temp = excluded.avg_temp, min_temp = excluded.min_temp,
			max_temp = excluded.max_temp, precipitation = excluded.precipitation,
			wind_speed = excluded.wind_speed, pressure = excluded.pressure,
			heating_degree_days = excluded.heating_degree_days,
			cooling_degree_days = excluded.cooling_degree_days
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare weather upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range days {
		_, err := stmt.ExecContext(ctx,
			d.Station, dateArg(d.Date), d.AvgTemp, d.MinTemp, d.MaxTemp, d.Precipitation,
			d.WindSpeed, d.Pressure, d.HeatingDegreeDays, d.CoolingDegreeDays,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert weather for %s: %w", dateArg(d.Date), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit weather data: %w", err)
	}
	return nil
}
