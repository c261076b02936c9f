package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/ports"
)

// alertRepository implements the AlertRepository interface
type alertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sqlx.DB) ports.AlertRepository {
	return &alertRepository{db: db}
}

// Create stores new alerts and returns the ones not already present
func (r *alertRepository) Create(ctx context.Context, alerts []energy.Alert) ([]energy.Alert, error) {
	created := make([]energy.Alert, 0, len(alerts))
	if len(alerts) == 0 {
		return created, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO alerts (id, building_id, kind, severity, day, value, baseline, message, acknowledged, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (building_id, day, kind) DO NOTHING
	`))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare alert insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range alerts {
		if a.ID.String() == "" {
			a.ID = core.NewAlertID()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		result, err := stmt.ExecContext(ctx,
			a.ID.String(), a.BuildingID, string(a.Kind), string(a.Severity), dateArg(a.Day),
			a.Value, a.Baseline, a.Message, a.Acknowledged, a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert alert: %w", err)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			created = append(created, a)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit alerts: %w", err)
	}
	return created, nil
}

// List retrieves a building's alerts, most recent day first
func (r *alertRepository) List(ctx context.Context, buildingID int64, onlyOpen bool, limit int) ([]energy.Alert, error) {
	query := `SELECT id, building_id, kind, severity, day, value, baseline, message, acknowledged, created_at
		FROM alerts WHERE building_id = ?`
	if onlyOpen {
		query += ` AND acknowledged = ?`
	}
	query += ` ORDER BY day DESC, kind ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	args := []interface{}{buildingID}
	if onlyOpen {
		args = append(args, false)
	}

	alerts := make([]energy.Alert, 0)
	if err := r.db.SelectContext(ctx, &alerts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	for i := range alerts {
		d := alerts[i].Day
		alerts[i].Day = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		alerts[i].CreatedAt = alerts[i].CreatedAt.UTC()
	}
	return alerts, nil
}

// Acknowledge marks an alert as handled
func (r *alertRepository) Acknowledge(ctx context.Context, id core.AlertID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE alerts SET acknowledged = ? WHERE id = ?`), true, id.String())
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %s", core.ErrAlertNotFound, id)
	}
	return nil
}
