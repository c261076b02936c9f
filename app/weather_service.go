package app

import (
	"context"
	"fmt"
	"time"

	"energydash/adapters/cache"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/internal/errors"
	"energydash/internal/metrics"
	"energydash/ports"
)

// WeatherReport is the weather for one station and date range
type WeatherReport struct {
	Station   string                `json:"station"`
	DateRange energy.DateRange      `json:"dateRange"`
	Data      []energy.WeatherDay   `json:"data"`
	Summary   energy.WeatherSummary `json:"summary"`
	Source    string                `json:"source"` // cache, provider or store
}

// WeatherService resolves daily weather from the cache, the external
// provider, or the local store, in that order.
type WeatherService struct {
	provider       ports.WeatherProvider // nil when no API key is configured
	store          ports.WeatherRepository
	cache          ports.Cache
	cacheTTL       time.Duration
	defaultStation string
	metrics        *metrics.Recorder
	logger         *internal.Logger
}

// WeatherServiceConfig holds the dependencies of a WeatherService
type WeatherServiceConfig struct {
	Provider       ports.WeatherProvider
	Store          ports.WeatherRepository
	Cache          ports.Cache
	CacheTTL       time.Duration
	DefaultStation string
	Metrics        *metrics.Recorder
	Logger         *internal.Logger
}

// NewWeatherService creates a weather service
func NewWeatherService(cfg WeatherServiceConfig) *WeatherService {
	if cfg.Logger == nil {
		cfg.Logger = internal.NopLogger()
	}
	if cfg.DefaultStation == "" {
		cfg.DefaultStation = energy.DefaultStation
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 6 * time.Hour
	}
	return &WeatherService{
		provider:       cfg.Provider,
		store:          cfg.Store,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		defaultStation: cfg.DefaultStation,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With("weather"),
	}
}

// HasProvider reports whether an external provider is configured.
func (s *WeatherService) HasProvider() bool {
	return s.provider != nil
}

// Daily returns the station's days within [start, end] with degree days and
// a summary. An empty station uses the default one.
func (s *WeatherService) Daily(ctx context.Context, station string, start, end time.Time) (*WeatherReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, core.NewValidationError("dateRange", "Start date and end date are required")
	}
	if end.Before(start) {
		return nil, core.NewValidationError("dateRange", "end date must not be before start date")
	}
	if station == "" {
		station = s.defaultStation
	}
	start, end = dayOf(start), dayOf(end)

	key := "weather:daily:" + core.ComputeQueryHash(map[string]string{
		"station": station,
		"start":   start.Format(core.DateLayout),
		"end":     end.Format(core.DateLayout),
	}).Short()
	if s.cache != nil {
		var days []energy.WeatherDay
		found, err := cache.GetJSON(ctx, s.cache, key, &days)
		if err != nil {
			s.logger.Warn("weather cache read failed: %v", err)
		} else if found {
			return s.report(station, start, end, days, "cache"), nil
		}
	}

	days, source, err := s.fetch(ctx, station, start, end)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && source == "provider" {
		if err := cache.SetJSON(ctx, s.cache, key, days, s.cacheTTL); err != nil {
			s.logger.Warn("weather cache write failed: %v", err)
		}
	}
	return s.report(station, start, end, days, source), nil
}

func (s *WeatherService) fetch(ctx context.Context, station string, start, end time.Time) ([]energy.WeatherDay, string, error) {
	if s.provider == nil {
		if s.store == nil {
			return nil, "", errors.ConfigInvalid("Meteostat API key not configured")
		}
		days, err := s.store.Range(ctx, station, start, end)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load stored weather: %w", err)
		}
		return withDegreeDays(days), "store", nil
	}

	days, err := s.provider.Daily(ctx, station, start, end)
	if err != nil {
		s.metrics.RecordWeatherError("daily")
		return nil, "", errors.ExternalServiceError("weather", err)
	}

	if s.store != nil {
		if err := s.store.Upsert(ctx, days); err != nil {
			s.logger.Warn("failed to persist weather for station %s: %v", station, err)
		}
	}
	return days, "provider", nil
}

func (s *WeatherService) report(station string, start, end time.Time, days []energy.WeatherDay, source string) *WeatherReport {
	if days == nil {
		days = []energy.WeatherDay{}
	}
	return &WeatherReport{
		Station:   station,
		DateRange: energy.DateRange{Start: start, End: end},
		Data:      days,
		Summary:   analytics.SummarizeWeather(days),
		Source:    source,
	}
}

// NearbyStations lists weather stations around a location
func (s *WeatherService) NearbyStations(ctx context.Context, lat, lon *float64, limit int) ([]energy.Station, error) {
	if lat == nil || lon == nil {
		return nil, core.NewValidationError("location", "Latitude and longitude are required")
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return nil, core.NewValidationError("location", "latitude or longitude out of range")
	}
	if s.provider == nil {
		return nil, errors.ConfigInvalid("Meteostat API key not configured")
	}
	if limit <= 0 {
		limit = 10
	}

	stations, err := s.provider.NearbyStations(ctx, *lat, *lon, limit)
	if err != nil {
		s.metrics.RecordWeatherError("nearby")
		return nil, errors.ExternalServiceError("weather", err)
	}
	return stations, nil
}

// withDegreeDays recomputes degree days, covering rows stored without them.
func withDegreeDays(days []energy.WeatherDay) []energy.WeatherDay {
	out := make([]energy.WeatherDay, len(days))
	for i, d := range days {
		out[i] = analytics.WithDegreeDays(d)
	}
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
