package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/ports"
)

// buildingColumns aliases the flat notification and threshold columns onto
// the nested Building fields.
const buildingColumns = `
	id, name, address, latitude, longitude, floor_area, building_type,
	construction_year, heating_system, cooling_system, energy_tariff,
	co2_factor, weather_station, timezone, currency,
	notify_anomaly AS "notifications.notify_anomaly",
	notify_monthly AS "notifications.notify_monthly",
	notify_maintenance AS "notifications.notify_maintenance",
	notify_cost AS "notifications.notify_cost",
	high_usage_alert AS "thresholds.high_usage_alert",
	cost_alert AS "thresholds.cost_alert",
	anomaly_score AS "thresholds.anomaly_score",
	updated_at`

// buildingRepository implements the BuildingRepository interface
type buildingRepository struct {
	db *sqlx.DB
}

// NewBuildingRepository creates a new building repository
func NewBuildingRepository(db *sqlx.DB) ports.BuildingRepository {
	return &buildingRepository{db: db}
}

// Get retrieves a building by ID
func (r *buildingRepository) Get(ctx context.Context, id int64) (*energy.Building, error) {
	var b energy.Building
	err := r.db.GetContext(ctx, &b, r.db.Rebind(`SELECT `+buildingColumns+` FROM buildings WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: id %d", core.ErrBuildingNotFound, id)
		}
		return nil, fmt.Errorf("failed to get building: %w", err)
	}
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

// List retrieves all buildings ordered by ID
func (r *buildingRepository) List(ctx context.Context) ([]*energy.Building, error) {
	buildings := make([]*energy.Building, 0)
	if err := r.db.SelectContext(ctx, &buildings, `SELECT `+buildingColumns+` FROM buildings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	return buildings, nil
}

// Save inserts a new building when b.ID is zero, otherwise replaces it
func (r *buildingRepository) Save(ctx context.Context, b *energy.Building) error {
	b.UpdatedAt = time.Now().UTC()

	columns := `name, address, latitude, longitude, floor_area, building_type,
		construction_year, heating_system, cooling_system, energy_tariff,
		co2_factor, weather_station, timezone, currency,
		notify_anomaly, notify_monthly, notify_maintenance, notify_cost,
		high_usage_alert, cost_alert, anomaly_score, updated_at`
	values := `:name, :address, :latitude, :longitude, :floor_area, :building_type,
		:construction_year, :heating_system, :cooling_system, :energy_tariff,
		:co2_factor, :weather_station, :timezone, :currency,
		:notifications.notify_anomaly, :notifications.notify_monthly,
		:notifications.notify_maintenance, :notifications.notify_cost,
		:thresholds.high_usage_alert, :thresholds.cost_alert, :thresholds.anomaly_score, :updated_at`

	var query string
	if b.ID == 0 {
		query = `INSERT INTO buildings (` + columns + `) VALUES (` + values + `) RETURNING id`
	} else {
		query = `INSERT INTO buildings (id, ` + columns + `) VALUES (:id, ` + values + `)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, address = excluded.address,
			latitude = excluded.latitude, longitude = excluded.longitude,
			floor_area = excluded.floor_area, building_type = excluded.building_type,
			construction_year = excluded.construction_year,
			heating_system = excluded.heating_system, cooling_system = excluded.cooling_system,
			energy_tariff = excluded.energy_tariff, co2_factor = excluded.co2_factor,
			weather_station = excluded.weather_station, timezone = excluded.timezone,
			currency = excluded.currency,
			notify_anomaly = excluded.notify_anomaly, notify_monthly = excluded.notify_monthly,
			notify_maintenance = excluded.notify_maintenance, notify_cost = excluded.notify_cost,
			high_usage_alert = excluded.high_usage_alert, cost_alert = excluded.cost_alert,
			anomaly_score = excluded.anomaly_score, updated_at = excluded.updated_at
		RETURNING id`
	}

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, b)
	if err != nil {
		return fmt.Errorf("failed to save building: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&b.ID); err != nil {
			return fmt.Errorf("failed to read building id: %w", err)
		}
	}
	return rows.Err()
}
