package app

import (
	"context"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/testkit"
)

func defaultBuilding(t *testing.T) *energy.Building {
	t.Helper()
	b := &energy.Building{ID: 3}
	require.NoError(t, defaults.Set(b))
	return b
}

func alertsByKind(alerts []energy.Alert) map[energy.AlertKind]energy.Alert {
	out := make(map[energy.AlertKind]energy.Alert, len(alerts))
	for _, a := range alerts {
		out[a.Kind] = a
	}
	return out
}

func TestEvaluate(t *testing.T) {
	b := defaultBuilding(t)
	daily := series(100, 100, 100, 100, 100, 100, 100, 100, 100, 150)
	daily[9].Cost = 60

	alerts := Evaluate(b, daily, 0)
	require.Len(t, alerts, 2)
	kinds := alertsByKind(alerts)

	anomaly := kinds[energy.AlertAnomaly]
	assert.Equal(t, energy.SeverityCritical, anomaly.Severity)
	assert.Equal(t, day(2024, 3, 10), anomaly.Day)
	assert.Equal(t, 150.0, anomaly.Value)
	assert.InDelta(t, 105.0, anomaly.Baseline, 1e-9)
	assert.Equal(t, int64(3), anomaly.BuildingID)
	assert.False(t, anomaly.ID.IsEmpty())

	cost := kinds[energy.AlertCost]
	assert.Equal(t, energy.SeverityWarning, cost.Severity)
	assert.Equal(t, 50.0, cost.Baseline)
	assert.Contains(t, cost.Message, "€60.00")
}

func TestEvaluate_NotificationToggles(t *testing.T) {
	b := defaultBuilding(t)
	b.Notifications.AnomalyAlerts = false
	b.Notifications.CostThresholds = false
	b.Thresholds.HighUsageAlert = 120

	daily := series(100, 100, 100, 100, 100, 100, 100, 100, 100, 300)
	daily[9].Cost = 500

	alerts := Evaluate(b, daily, 0)
	require.Len(t, alerts, 1)
	assert.Equal(t, energy.AlertHighUsage, alerts[0].Kind)
	assert.Equal(t, energy.SeverityCritical, alerts[0].Severity)

	assert.Empty(t, Evaluate(b, nil, 0))
}

func TestAlertService_Sweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.buildings.Get(ctx, energy.DefaultBuildingID)
	require.NoError(t, err)
	b.Thresholds.HighUsageAlert = 700
	require.NoError(t, f.buildings.Save(ctx, b))

	cfg := testkit.DefaultReadingsConfig()
	cfg.KWhPerDegree = 0
	cfg.Noise = 0
	gen := testkit.NewReadingsGenerator(cfg)
	_, err = f.energy.Create(ctx, b.ID, energy.Inputs(gen.Readings()))
	require.NoError(t, err)
	_, err = f.energy.Create(ctx, b.ID, []energy.ReadingInput{
		{Timestamp: "2024-01-20T12:30:00Z", KWh: ptr(400), Cost: ptr(48)},
	})
	require.NoError(t, err)

	svc := NewAlertService(f.buildings, f.readings, f.alerts, f.metrics, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC) }

	result, err := svc.Sweep(ctx, b.ID, 31)
	require.NoError(t, err)
	assert.Equal(t, 31, result.Days)
	assert.Equal(t, day(2024, 1, 1), result.Range.Start)
	require.Len(t, result.Created, 3)

	kinds := alertsByKind(result.Created)
	assert.Equal(t, energy.SeverityCritical, kinds[energy.AlertAnomaly].Severity)
	assert.Equal(t, energy.SeverityWarning, kinds[energy.AlertHighUsage].Severity)
	assert.Equal(t, energy.SeverityWarning, kinds[energy.AlertCost].Severity)
	for _, a := range result.Created {
		assert.Equal(t, day(2024, 1, 20), a.Day)
	}

	again, err := svc.Sweep(ctx, b.ID, 31)
	require.NoError(t, err)
	assert.Empty(t, again.Created)

	all, err := svc.SweepAll(ctx, 31)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Created)

	open, err := svc.List(ctx, b.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, open, 3)

	require.NoError(t, svc.Acknowledge(ctx, open[0].ID.String()))
	open, err = svc.List(ctx, b.ID, true, 0)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	assert.True(t, core.IsValidationError(svc.Acknowledge(ctx, "not-a-uuid")))
	assert.True(t, core.IsNotFoundError(svc.Acknowledge(ctx, core.NewAlertID().String())))
}

func TestAlertService_SweepUnknownBuilding(t *testing.T) {
	f := newFixture(t)
	svc := NewAlertService(f.buildings, f.readings, f.alerts, nil, nil)

	_, err := svc.Sweep(context.Background(), 404, 0)
	assert.True(t, core.IsNotFoundError(err))
}
