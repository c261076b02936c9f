package app

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/core"
	"energydash/domain/energy"
)

func TestSettingsService_Validate(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.buildings, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	b, err := svc.Get(context.Background(), energy.DefaultBuildingID)
	require.NoError(t, err)
	assert.Empty(t, svc.Validate(b))

	tests := []struct {
		name   string
		mutate func(*energy.Building)
		field  string
		msg    string
	}{
		{"blank name", func(b *energy.Building) { b.Name = "   " }, "buildingName", "Building name is required"},
		{"no address", func(b *energy.Building) { b.Address = "" }, "address", "Address is required"},
		{"latitude", func(b *energy.Building) { b.Latitude = 91 }, "latitude", "Latitude must be between -90 and 90"},
		{"longitude", func(b *energy.Building) { b.Longitude = -181 }, "longitude", "Longitude must be between -180 and 180"},
		{"floor area", func(b *energy.Building) { b.FloorArea = 0 }, "floorArea", "Floor area must be greater than 0"},
		{"too old", func(b *energy.Building) { b.ConstructionYear = 1799 }, "constructionYear", "Invalid construction year"},
		{"future", func(b *energy.Building) { b.ConstructionYear = 2027 }, "constructionYear", "Invalid construction year"},
		{"tariff", func(b *energy.Building) { b.EnergyTariff = 0 }, "energyTariff", "Energy tariff must be greater than 0"},
		{"co2", func(b *energy.Building) { b.CO2Factor = -0.1 }, "co2Factor", "CO2 factor cannot be negative"},
		{"currency", func(b *energy.Building) { b.Currency = "JPY" }, "currency", "must be one of: EUR USD GBP CHF"},
		{"anomaly score", func(b *energy.Building) { b.Thresholds.AnomalyScore = 2 }, "thresholds.anomalyScore", "must satisfy lte 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *b
			tt.mutate(&c)
			errs := svc.Validate(&c)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.msg, errs[tt.field])
		})
	}
}

func TestSettingsService_Save(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.buildings, nil)
	ctx := context.Background()

	b, err := svc.Get(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)

	b.Name = "Warehouse North"
	b.FloorArea = -1
	err = svc.Save(ctx, b)
	require.Error(t, err)
	var fe FieldErrors
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, "Floor area must be greater than 0", fe["floorArea"])
	assert.True(t, core.IsValidationError(err))

	b.FloorArea = 4000
	b.WeatherStation = ""
	b.Notifications.CostThresholds = false
	require.NoError(t, svc.Save(ctx, b))

	saved, err := svc.Get(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)
	assert.Equal(t, "Warehouse North", saved.Name)
	assert.Equal(t, 4000.0, saved.FloorArea)
	assert.Equal(t, energy.DefaultStation, saved.WeatherStation)
	assert.False(t, saved.Notifications.CostThresholds)

	missing := *saved
	missing.ID = 42
	assert.True(t, core.IsNotFoundError(svc.Save(ctx, &missing)))
}

func TestSettingsService_Reset(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.buildings, nil)
	ctx := context.Background()

	b, err := svc.Get(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)
	b.Name = "Renamed"
	b.Notifications.AnomalyAlerts = false
	require.NoError(t, svc.Save(ctx, b))

	reset, err := svc.Reset(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)
	assert.Equal(t, energy.DefaultBuildingID, reset.ID)
	assert.Equal(t, "Main Office Building", reset.Name)
	assert.True(t, reset.Notifications.AnomalyAlerts)
	assert.Equal(t, "Europe/Berlin", reset.Timezone)

	_, err = svc.Reset(ctx, 7)
	assert.True(t, core.IsNotFoundError(err))
}
