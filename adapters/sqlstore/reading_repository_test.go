package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/adapters/sqlstore"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/testkit"
)

func reading(ts string, kwh float64, source string) energy.Reading {
	t, _ := time.Parse(time.RFC3339, ts)
	return energy.Reading{
		BuildingID: energy.DefaultBuildingID,
		Timestamp:  t,
		KWh:        kwh,
		Cost:       kwh * 0.12,
		CO2:        kwh * 0.4,
		Source:     source,
	}
}

func TestReadingRepository_InsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewReadingRepository(testkit.NewSQLiteDB(t))

	created, err := repo.InsertBatch(ctx, []energy.Reading{
		reading("2024-01-01T00:00:00Z", 100, "Meter"),
		reading("2024-01-02T00:00:00Z", 110, "Meter"),
		reading("2024-01-03T00:00:00Z", 120, "Manual Upload"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.Total())
	assert.Equal(t, energy.SourceCounts{"Meter": 2, "Manual Upload": 1}, created)

	all, err := repo.List(ctx, energy.ReadingFilter{BuildingID: energy.DefaultBuildingID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 120.0, all[0].KWh, "newest first")
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), all[0].Timestamp)
	assert.NotZero(t, all[0].ID)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)
	ranged, err := repo.List(ctx, energy.ReadingFilter{Start: &start, End: &end})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	bySource, err := repo.List(ctx, energy.ReadingFilter{Source: "Meter", Limit: 1})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, 110.0, bySource[0].KWh)
}

func TestReadingRepository_RangeNeedsBothBounds(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewReadingRepository(testkit.NewSQLiteDB(t))

	_, err := repo.InsertBatch(ctx, []energy.Reading{
		reading("2024-01-01T00:00:00Z", 100, "Meter"),
		reading("2024-02-01T00:00:00Z", 100, "Meter"),
	})
	require.NoError(t, err)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	got, err := repo.List(ctx, energy.ReadingFilter{Start: &start})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadingRepository_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewReadingRepository(testkit.NewSQLiteDB(t))

	first := []energy.Reading{reading("2024-01-01T00:00:00Z", 100, "Meter")}
	created, err := repo.InsertBatch(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, created.Total())

	created, err = repo.InsertBatch(ctx, []energy.Reading{
		reading("2024-01-01T00:00:00Z", 999, "Meter"),
		reading("2024-01-01T01:00:00Z", 50, "Manual Upload"),
	})
	require.NoError(t, err)
	assert.Equal(t, energy.SourceCounts{"Manual Upload": 1}, created)

	all, err := repo.List(ctx, energy.ReadingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 100.0, all[1].KWh, "existing row kept")
}

func TestReadingRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := sqlstore.NewReadingRepository(testkit.NewSQLiteDB(t))

	_, err := repo.InsertBatch(ctx, []energy.Reading{
		reading("2024-01-01T00:00:00Z", 1, "Meter"),
		reading("2024-01-02T00:00:00Z", 2, "Meter"),
		reading("2024-01-03T00:00:00Z", 3, "Meter"),
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, energy.ReadingFilter{})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, all[0].ID))

	err = repo.Delete(ctx, all[0].ID)
	assert.ErrorIs(t, err, core.ErrReadingNotFound)
	assert.True(t, core.IsNotFoundError(err))

	n, err := repo.DeleteRange(ctx, energy.DefaultBuildingID,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.List(ctx, energy.ReadingFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)
}
