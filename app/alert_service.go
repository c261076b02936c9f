package app

import (
	"context"
	"fmt"
	"time"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/internal/metrics"
	"energydash/ports"
)

// DefaultLookbackDays is the sweep window used when none is given.
const DefaultLookbackDays = 30

// SweepResult summarises one alert sweep.
type SweepResult struct {
	BuildingID int64            `json:"buildingId"`
	Range      energy.DateRange `json:"range"`
	Days       int              `json:"days"`
	Created    []energy.Alert   `json:"created"`
}

// AlertService raises alerts for unusual daily consumption.
type AlertService struct {
	buildings ports.BuildingRepository
	readings  ports.ReadingRepository
	alerts    ports.AlertRepository
	metrics   *metrics.Recorder
	logger    *internal.Logger
	now       func() time.Time
}

// NewAlertService creates an alert service
func NewAlertService(buildings ports.BuildingRepository, readings ports.ReadingRepository, alerts ports.AlertRepository, recorder *metrics.Recorder, logger *internal.Logger) *AlertService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &AlertService{
		buildings: buildings,
		readings:  readings,
		alerts:    alerts,
		metrics:   recorder,
		logger:    logger.With("alerts"),
		now:       time.Now,
	}
}

// Sweep evaluates the last lookbackDays calendar days of a building and stores
// any new alerts. Alerts already raised for the same day and kind are skipped.
func (s *AlertService) Sweep(ctx context.Context, buildingID int64, lookbackDays int) (*SweepResult, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	building, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	loc := building.Location()
	end := core.EndOfDay(s.now(), loc)
	start := core.StartOfDay(end.AddDate(0, 0, -(lookbackDays-1)), loc)

	readings, err := s.readings.List(ctx, energy.ReadingFilter{BuildingID: buildingID, Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	daily := analytics.DailySeries(readings, loc)
	candidates := Evaluate(building, daily, analytics.DefaultAnomalyThreshold)

	result := &SweepResult{
		BuildingID: buildingID,
		Range:      energy.DateRange{Start: start, End: end},
		Days:       len(daily),
		Created:    []energy.Alert{},
	}
	if len(candidates) == 0 {
		return result, nil
	}

	created, err := s.alerts.Create(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to store alerts: %w", err)
	}
	for _, a := range created {
		s.metrics.RecordAlert(string(a.Kind))
	}
	if len(created) > 0 {
		s.logger.Info("building %d: %d new alerts over %d days", buildingID, len(created), len(daily))
	}
	result.Created = created
	return result, nil
}

// SweepAll sweeps every building. A failing building is logged and skipped.
func (s *AlertService) SweepAll(ctx context.Context, lookbackDays int) ([]*SweepResult, error) {
	buildings, err := s.buildings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}

	results := make([]*SweepResult, 0, len(buildings))
	for _, b := range buildings {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Sweep(ctx, b.ID, lookbackDays)
		if err != nil {
			s.logger.Error("sweep failed for building %d: %v", b.ID, err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Evaluate returns the alerts a building's daily series warrants, without
// storing them. threshold is the anomaly deviation in percent.
func Evaluate(b *energy.Building, daily []energy.DailyUsage, threshold float64) []energy.Alert {
	if len(daily) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = analytics.DefaultAnomalyThreshold
	}

	kwh := analytics.DailyKWh(daily)
	baseline := analytics.Baseline(kwh)
	flags := analytics.DetectAnomaliesThreshold(kwh, threshold)
	deviation := analytics.DeviationPercent(kwh)

	var out []energy.Alert
	add := func(d energy.DailyUsage, kind energy.AlertKind, severity energy.AlertSeverity, value, reference float64, msg string) {
		out = append(out, energy.Alert{
			ID:         core.NewAlertID(),
			BuildingID: b.ID,
			Kind:       kind,
			Severity:   severity,
			Day:        d.Date,
			Value:      value,
			Baseline:   reference,
			Message:    msg,
		})
	}

	for i, d := range daily {
		day := d.Date.Format(core.DateLayout)

		if b.Notifications.AnomalyAlerts && flags[i] {
			add(d, energy.AlertAnomaly, severity(deviation[i], threshold), d.KWh, baseline,
				fmt.Sprintf("%s: usage of %.1f kWh deviates %.0f%% from the %.1f kWh average", day, d.KWh, finite(deviation[i]), baseline))
		}

		if limit := b.Thresholds.HighUsageAlert; limit > 0 && d.KWh > limit {
			add(d, energy.AlertHighUsage, severity(d.KWh, limit), d.KWh, limit,
				fmt.Sprintf("%s: usage of %.1f kWh exceeds the %.1f kWh limit", day, d.KWh, limit))
		}

		if limit := b.Thresholds.CostAlert; b.Notifications.CostThresholds && limit > 0 && d.Cost > limit {
			add(d, energy.AlertCost, severity(d.Cost, limit), d.Cost, limit,
				fmt.Sprintf("%s: cost of %s exceeds the %s limit", day,
					analytics.FormatCurrency(d.Cost, b.Currency), analytics.FormatCurrency(limit, b.Currency)))
		}
	}
	return out
}

// severity is critical when value is more than twice limit.
func severity(value, limit float64) energy.AlertSeverity {
	if value > 2*limit {
		return energy.SeverityCritical
	}
	return energy.SeverityWarning
}

// List returns a building's alerts, newest day first
func (s *AlertService) List(ctx context.Context, buildingID int64, onlyOpen bool, limit int) ([]energy.Alert, error) {
	if limit < 0 {
		return nil, core.NewValidationError("limit", "must not be negative")
	}
	alerts, err := s.alerts.List(ctx, buildingID, onlyOpen, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	if alerts == nil {
		alerts = []energy.Alert{}
	}
	return alerts, nil
}

// Acknowledge marks an alert as seen
func (s *AlertService) Acknowledge(ctx context.Context, id string) error {
	alertID, err := core.ParseAlertID(id)
	if err != nil {
		return core.NewValidationError("id", err.Error())
	}
	return s.alerts.Acknowledge(ctx, alertID)
}
