package ports

import (
	"context"

	"energydash/domain/core"
	"energydash/domain/energy"
)

// AlertRepository defines the interface for alert storage operations
type AlertRepository interface {
	// Create stores alerts, ignoring any that repeat an existing
	// (building, day, kind). It returns the alerts actually stored.
	Create(ctx context.Context, alerts []energy.Alert) ([]energy.Alert, error)
	List(ctx context.Context, buildingID int64, onlyOpen bool, limit int) ([]energy.Alert, error)
	Acknowledge(ctx context.Context, id core.AlertID) error
}
