package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/ports"
)

// readingRepository implements the ReadingRepository interface
type readingRepository struct {
	db *sqlx.DB
}

// NewReadingRepository creates a new energy reading repository
func NewReadingRepository(db *sqlx.DB) ports.ReadingRepository {
	return &readingRepository{db: db}
}

// List retrieves readings matching the filter, newest first
func (r *readingRepository) List(ctx context.Context, filter energy.ReadingFilter) ([]energy.Reading, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter.BuildingID != 0 {
		where = append(where, "building_id = ?")
		args = append(args, filter.BuildingID)
	}
	if filter.HasRange() {
		where = append(where, "recorded_at >= ? AND recorded_at <= ?")
		args = append(args, filter.Start.UTC(), filter.End.UTC())
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}

	query := `SELECT id, building_id, recorded_at, kwh, cost, co2, source FROM energy_readings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY recorded_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	readings := make([]energy.Reading, 0)
	if err := r.db.SelectContext(ctx, &readings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query energy readings: %w", err)
	}
	for i := range readings {
		readings[i].Timestamp = readings[i].Timestamp.UTC()
	}
	return readings, nil
}

// InsertBatch inserts readings in one transaction, skipping duplicates
func (r *readingRepository) InsertBatch(ctx context.Context, readings []energy.Reading) (energy.SourceCounts, error) {
	if len(readings) == 0 {
		return energy.SourceCounts{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO energy_readings (building_id, recorded_at, kwh, cost, co2, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (building_id, recorded_at) DO NOTHING
	`))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	created := energy.SourceCounts{}
	for _, reading := range readings {
		result, err := stmt.ExecContext(ctx,
			reading.BuildingID, reading.Timestamp.UTC(), reading.KWh, reading.Cost,
			reading.CO2, reading.Source, now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert reading at %s: %w", reading.Timestamp.Format(time.RFC3339), err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n > 0 {
			created[reading.Source] += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit readings: %w", err)
	}
	return created, nil
}

// Delete removes a single reading
func (r *readingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM energy_readings WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", core.ErrReadingNotFound, id)
	}
	return nil
}

// DeleteRange removes a building's readings within [start, end]
func (r *readingRepository) DeleteRange(ctx context.Context, buildingID int64, start, end time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		DELETE FROM energy_readings WHERE building_id = ? AND recorded_at >= ? AND recorded_at <= ?
	`), buildingID, start.UTC(), end.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete readings: %w", err)
	}
	return result.RowsAffected()
}
