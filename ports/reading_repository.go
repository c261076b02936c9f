package ports

import (
	"context"
	"time"

	"energydash/domain/energy"
)

// ReadingRepository defines the interface for energy reading storage operations
type ReadingRepository interface {
	// List returns readings matching the filter, newest first.
	List(ctx context.Context, filter energy.ReadingFilter) ([]energy.Reading, error)

	// InsertBatch stores readings in one transaction, skipping rows whose
	// (building, timestamp) already exists. It returns the rows created per source.
	InsertBatch(ctx context.Context, readings []energy.Reading) (energy.SourceCounts, error)

	Delete(ctx context.Context, id int64) error
	DeleteRange(ctx context.Context, buildingID int64, start, end time.Time) (int64, error)
}
