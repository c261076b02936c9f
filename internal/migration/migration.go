package migration

import (
	"context"
	"fmt"

	"github.com/creasty/defaults"
	"github.com/jmoiron/sqlx"

	"energydash/domain/energy"
	"energydash/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// Dialect selects the DDL variant for a database driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DialectOf returns the dialect matching the driver db was opened with.
func DialectOf(db *sqlx.DB) (Dialect, error) {
	switch db.DriverName() {
	case "postgres", "pgx":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return "", errors.ConfigInvalid(fmt.Sprintf("unsupported database driver %q", db.DriverName()))
	}
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	dialect, err := DialectOf(db)
	if err != nil {
		return err
	}
	types := columnTypes[dialect]

	if err := r.createBuildingsTable(ctx, db, types); err != nil {
		return errors.Wrap(err, "failed to create buildings table")
	}

	if err := r.createReadingsTable(ctx, db, types); err != nil {
		return errors.Wrap(err, "failed to create energy_readings table")
	}

	if err := r.createWeatherTable(ctx, db, types); err != nil {
		return errors.Wrap(err, "failed to create weather_data table")
	}

	if err := r.createAlertsTable(ctx, db, types); err != nil {
		return errors.Wrap(err, "failed to create alerts table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.insertDefaultBuilding(ctx, db, dialect); err != nil {
		return errors.Wrap(err, "failed to insert default building")
	}

	return nil
}

// Reset drops every table created by Run.
func (r *MigrationRunner) Reset(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"alerts", "weather_data", "energy_readings", "buildings"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(err, "failed to drop %s", table)
		}
	}
	return nil
}

type ddlTypes struct {
	serial    string
	timestamp string
	date      string
	float     string
	uuid      string
}

var columnTypes = map[Dialect]ddlTypes{
	Postgres: {
		serial:    "BIGSERIAL PRIMARY KEY",
		timestamp: "TIMESTAMP WITH TIME ZONE",
		date:      "DATE",
		float:     "DOUBLE PRECISION",
		uuid:      "UUID",
	},
	SQLite: {
		serial:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		timestamp: "TIMESTAMP",
		date:      "DATE",
		float:     "REAL",
		uuid:      "TEXT",
	},
}

func (r *MigrationRunner) createBuildingsTable(ctx context.Context, db *sqlx.DB, t ddlTypes) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS buildings (
			id %[1]s,
			name VARCHAR(255) NOT NULL,
			address TEXT NOT NULL,
			latitude %[2]s NOT NULL DEFAULT 0,
			longitude %[2]s NOT NULL DEFAULT 0,
			floor_area %[2]s NOT NULL DEFAULT 0,
			building_type VARCHAR(50),
			construction_year INTEGER,
			heating_system VARCHAR(100),
			cooling_system VARCHAR(100),
			energy_tariff %[2]s NOT NULL,
			co2_factor %[2]s NOT NULL,
			weather_station VARCHAR(32),
			timezone VARCHAR(64),
			currency VARCHAR(8),
			notify_anomaly BOOLEAN NOT NULL DEFAULT true,
			notify_monthly BOOLEAN NOT NULL DEFAULT true,
			notify_maintenance BOOLEAN NOT NULL DEFAULT true,
			notify_cost BOOLEAN NOT NULL DEFAULT true,
			high_usage_alert %[2]s NOT NULL DEFAULT 0,
			cost_alert %[2]s NOT NULL DEFAULT 0,
			anomaly_score %[2]s NOT NULL DEFAULT 0,
			updated_at %[3]s NOT NULL
		)
	`, t.serial, t.float, t.timestamp))
	return err
}

func (r *MigrationRunner) createReadingsTable(ctx context.Context, db *sqlx.DB, t ddlTypes) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS energy_readings (
			id %[1]s,
			building_id BIGINT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
			recorded_at %[3]s NOT NULL,
			kwh %[2]s NOT NULL,
			cost %[2]s NOT NULL,
			co2 %[2]s NOT NULL DEFAULT 0,
			source VARCHAR(100) NOT NULL,
			created_at %[3]s NOT NULL,
			UNIQUE (building_id, recorded_at)
		)
	`, t.serial, t.float, t.timestamp))
	return err
}

func (r *MigrationRunner) createWeatherTable(ctx context.Context, db *sqlx.DB, t ddlTypes) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS weather_data (
			station VARCHAR(32) NOT NULL,
			day %[1]s NOT NULL,
			avg_temp %[2]s NOT NULL DEFAULT 0,
			min_temp %[2]s NOT NULL DEFAULT 0,
			max_temp %[2]s NOT NULL DEFAULT 0,
			precipitation %[2]s NOT NULL DEFAULT 0,
			wind_speed %[2]s NOT NULL DEFAULT 0,
			pressure %[2]s NOT NULL DEFAULT 0,
			heating_degree_days %[2]s NOT NULL DEFAULT 0,
			cooling_degree_days %[2]s NOT NULL DEFAULT 0,
			PRIMARY KEY (station, day)
		)
	`, t.date, t.float))
	return err
}

func (r *MigrationRunner) createAlertsTable(ctx context.Context, db *sqlx.DB, t ddlTypes) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS alerts (
			id %[1]s PRIMARY KEY,
			building_id BIGINT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
			kind VARCHAR(32) NOT NULL,
			severity VARCHAR(16) NOT NULL,
			day %[2]s NOT NULL,
			value %[3]s NOT NULL,
			baseline %[3]s NOT NULL,
			message TEXT NOT NULL,
			acknowledged BOOLEAN NOT NULL DEFAULT false,
			created_at %[4]s NOT NULL,
			UNIQUE (building_id, day, kind)
		)
	`, t.uuid, t.date, t.float, t.timestamp))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_readings_building_time ON energy_readings(building_id, recorded_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_readings_source ON energy_readings(source)",
		"CREATE INDEX IF NOT EXISTS idx_alerts_building_created ON alerts(building_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_alerts_open ON alerts(building_id, acknowledged)",
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// insertDefaultBuilding seeds the building every reading defaults to, using
// the settings defaults.
func (r *MigrationRunner) insertDefaultBuilding(ctx context.Context, db *sqlx.DB, dialect Dialect) error {
	var b energy.Building
	if err := defaults.Set(&b); err != nil {
		return err
	}

	_, err := db.ExecContext(ctx, db.Rebind(`
		INSERT INTO buildings (
			id, name, address, latitude, longitude, floor_area, building_type,
			construction_year, heating_system, cooling_system, energy_tariff,
			co2_factor, weather_station, timezone, currency,
			notify_anomaly, notify_monthly, notify_maintenance, notify_cost,
			high_usage_alert, cost_alert, anomaly_score, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO NOTHING
	`),
		energy.DefaultBuildingID, b.Name, b.Address, b.Latitude, b.Longitude, b.FloorArea, b.BuildingType,
		b.ConstructionYear, b.HeatingSystem, b.CoolingSystem, b.EnergyTariff,
		b.CO2Factor, b.WeatherStation, b.Timezone, b.Currency,
		b.Notifications.AnomalyAlerts, b.Notifications.MonthlyReports,
		b.Notifications.MaintenanceReminders, b.Notifications.CostThresholds,
		b.Thresholds.HighUsageAlert, b.Thresholds.CostAlert, b.Thresholds.AnomalyScore,
	)
	if err != nil {
		return err
	}

	if dialect == Postgres {
		_, err = db.ExecContext(ctx, `
			SELECT setval(pg_get_serial_sequence('buildings', 'id'), GREATEST((SELECT MAX(id) FROM buildings), 1))
		`)
	}
	return err
}
