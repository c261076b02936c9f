package ports

import (
	"context"

	"energydash/domain/energy"
)

// BuildingRepository defines the interface for building settings storage
type BuildingRepository interface {
	Get(ctx context.Context, id int64) (*energy.Building, error)
	List(ctx context.Context) ([]*energy.Building, error)
	// Save inserts or replaces the building with b.ID.
	Save(ctx context.Context, b *energy.Building) error
}
