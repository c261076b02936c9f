package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/internal/metrics"
	"energydash/ports"
)

// AnalyticsService joins consumption with weather and runs the statistics
// helpers over the daily series.
type AnalyticsService struct {
	buildings ports.BuildingRepository
	readings  ports.ReadingRepository
	weather   *WeatherService
	metrics   *metrics.Recorder
	logger    *internal.Logger
}

// NewAnalyticsService creates an analytics service. weather may be nil.
func NewAnalyticsService(buildings ports.BuildingRepository, readings ports.ReadingRepository, weather *WeatherService, recorder *metrics.Recorder, logger *internal.Logger) *AnalyticsService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &AnalyticsService{
		buildings: buildings,
		readings:  readings,
		weather:   weather,
		metrics:   recorder,
		logger:    logger.With("analytics"),
	}
}

// Analyze computes the analytics of a building over the calendar days
// spanned by [start, end] in the building's time zone. A threshold of zero
// uses analytics.DefaultAnomalyThreshold.
func (s *AnalyticsService) Analyze(ctx context.Context, buildingID int64, start, end time.Time, threshold float64) (*energy.Analytics, error) {
	if threshold < 0 {
		return nil, core.NewValidationError("threshold", "must not be negative")
	}
	if threshold == 0 {
		threshold = analytics.DefaultAnomalyThreshold
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, core.NewValidationError("dateRange", "a start date not after the end date is required")
	}

	building, err := s.buildings.Get(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	result, _, err := s.analyze(ctx, building, start, end, threshold)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAnomalies(buildingID, result.Anomalies)
	return result, nil
}

// analyze also returns the raw daily usage, which the report builds its
// monthly breakdown from.
func (s *AnalyticsService) analyze(ctx context.Context, building *energy.Building, start, end time.Time, threshold float64) (*energy.Analytics, []energy.DailyUsage, error) {
	loc := building.Location()
	start, end = core.StartOfDay(start, loc), core.EndOfDay(end, loc)

	var (
		readings []energy.Reading
		weather  []energy.WeatherDay
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		readings, err = s.readings.List(gctx, energy.ReadingFilter{BuildingID: building.ID, Start: &start, End: &end})
		if err != nil {
			return fmt.Errorf("failed to load readings: %w", err)
		}
		return nil
	})
	if s.weather != nil {
		g.Go(func() error {
			report, err := s.weather.Daily(gctx, building.WeatherStation, start.In(loc), end.In(loc))
			if err != nil {
				// Analysis proceeds without weather; correlations report insufficient data.
				s.logger.Warn("weather unavailable for building %d: %v", building.ID, err)
				return nil
			}
			weather = report.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	daily := analytics.DailySeries(readings, loc)
	result := Compute(daily, weather, threshold)
	result.BuildingID = building.ID
	result.Range = energy.DateRange{Start: start, End: end}
	return result, daily, nil
}

// Compute runs anomaly detection, weather correlation, regression and
// normalisation over a daily series. Weather days are joined by calendar date.
func Compute(daily []energy.DailyUsage, weather []energy.WeatherDay, threshold float64) *energy.Analytics {
	if threshold <= 0 {
		threshold = analytics.DefaultAnomalyThreshold
	}

	byDate := make(map[string]energy.WeatherDay, len(weather))
	for _, w := range weather {
		byDate[w.Date.Format(core.DateLayout)] = w
	}

	kwh := analytics.DailyKWh(daily)
	flags := analytics.DetectAnomaliesThreshold(kwh, threshold)
	deviation := analytics.DeviationPercent(kwh)

	result := &energy.Analytics{
		Threshold: threshold,
		Days:      make([]energy.AnalyticsDay, len(daily)),
	}

	var temps, degreeDays, joinedKWh []float64
	for i, d := range daily {
		day := energy.AnalyticsDay{
			Date:            d.Date,
			KWh:             d.KWh,
			Cost:            d.Cost,
			CO2:             d.CO2,
			NormalizedUsage: d.KWh,
			IsAnomaly:       flags[i],
			DeviationPct:    finite(deviation[i]),
			AnomalyScore:    analytics.AnomalyScore(deviation[i], threshold),
		}
		if w, ok := byDate[d.Date.Format(core.DateLayout)]; ok {
			day.HasWeather = true
			day.AvgTemp = w.AvgTemp
			day.HeatingDegreeDays = w.HeatingDegreeDays
			day.CoolingDegreeDays = w.CoolingDegreeDays
			temps = append(temps, w.AvgTemp)
			degreeDays = append(degreeDays, w.HeatingDegreeDays+w.CoolingDegreeDays)
			joinedKWh = append(joinedKWh, d.KWh)
		}
		if day.IsAnomaly {
			result.Anomalies++
		}
		result.Days[i] = day
	}
	result.WeatherAvailable = len(joinedKWh) > 0

	result.TemperatureCorrelation = correlate(temps, joinedKWh)
	result.DegreeDayCorrelation = correlate(degreeDays, joinedKWh)

	points, _ := analytics.Zip(degreeDays, joinedKWh)
	model, modelErr := analytics.LinearRegression(points)
	result.WeatherModel = regressionResult(model, modelErr, len(points))

	trendPoints := make([]analytics.Point, len(daily))
	for i, d := range daily {
		trendPoints[i] = analytics.Point{X: d.Date.Sub(daily[0].Date).Hours() / 24, Y: d.KWh}
	}
	trend, trendErr := analytics.LinearRegression(trendPoints)
	result.Trend = regressionResult(trend, trendErr, len(trendPoints))

	if modelErr == nil {
		for i, v := range analytics.NormalizeForWeather(result.Days, model) {
			result.Days[i].NormalizedUsage = v
		}
	}

	if len(result.Days) > 0 {
		total := 0.0
		for _, d := range result.Days {
			total += d.NormalizedUsage
		}
		result.AvgNormalizedUsage = total / float64(len(result.Days))
	}
	return result
}

// finite maps the infinite deviation around a zero baseline to 0 so the day
// stays JSON-encodable; its AnomalyScore is already 1.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

func measure(v float64, err error) energy.Measure {
	if err != nil {
		return energy.Measure{Reason: core.Reason(err)}
	}
	return energy.Measure{Value: &v}
}

func correlate(x, y []float64) energy.CorrelationResult {
	result := energy.CorrelationResult{Samples: len(x)}
	r, err := analytics.PearsonCorrelation(x, y)
	result.Coefficient = measure(r, err)
	if err != nil {
		result.PValue = energy.Measure{Reason: core.Reason(err)}
		return result
	}
	result.PValue = measure(analytics.CorrelationSignificance(r, len(x)))
	return result
}

func regressionResult(line analytics.Line, err error, samples int) energy.RegressionResult {
	return energy.RegressionResult{
		Slope:     measure(line.Slope, err),
		Intercept: measure(line.Intercept, err),
		Samples:   samples,
	}
}
