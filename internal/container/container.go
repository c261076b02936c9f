package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	"energydash/adapters/cache"
	"energydash/adapters/meteostat"
	"energydash/adapters/sqlstore"
	"energydash/app"
	"energydash/internal"
	"energydash/internal/config"
	"energydash/internal/metrics"
	"energydash/internal/migration"
	"energydash/internal/scheduler"
	"energydash/ports"
)

// AlertSweepJob is the scheduler name of the periodic alert sweep.
const AlertSweepJob = "alert-sweep"

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB      *sqlx.DB
	Cache   ports.Cache
	Metrics *metrics.Recorder

	// Repositories (data access layer)
	Buildings ports.BuildingRepository
	Readings  ports.ReadingRepository
	Weather   ports.WeatherRepository
	Alerts    ports.AlertRepository

	// Services
	EnergyService    *app.EnergyService
	WeatherService   *app.WeatherService
	AnalyticsService *app.AnalyticsService
	ReportService    *app.ReportService
	UploadService    *app.UploadService
	SettingsService  *app.SettingsService
	AlertService     *app.AlertService

	Scheduler *scheduler.Scheduler

	closers []func() error
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Format, os.Stderr),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	return c, nil
}

// Open connects to the configured database and initializes the container with it.
func (c *Container) Open(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, db.Close)
	return c.InitWithDatabase(ctx, db)
}

// InitWithDatabase migrates db and initializes every component that requires it
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := c.migrate(ctx); err != nil {
		return err
	}

	c.initRepositories()

	if err := c.initCache(ctx); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	c.initServices()

	c.Logger.Info("container initialized (driver %s)", c.Config.Database.Driver)
	return nil
}

func (c *Container) migrate(ctx context.Context) error {
	runner := migration.NewRunner()
	if c.Config.Database.ResetOnBoot {
		c.Logger.Warn("resetting database schema")
		if err := runner.Reset(ctx, c.DB); err != nil {
			return fmt.Errorf("database reset failed: %w", err)
		}
	}
	if err := runner.Run(ctx, c.DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.Buildings = sqlstore.NewBuildingRepository(c.DB)
	c.Readings = sqlstore.NewReadingRepository(c.DB)
	c.Weather = sqlstore.NewWeatherRepository(c.DB)
	c.Alerts = sqlstore.NewAlertRepository(c.DB)
}

// initCache selects Redis when an address is configured, the in-process cache otherwise.
func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config.Cache
	if cfg.RedisAddr == "" {
		c.Cache = cache.NewMemoryCache(1024)
		return nil
	}

	rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.Prefix,
	})
	if err != nil {
		return err
	}
	c.closers = append(c.closers, rc.Close)
	c.Cache = rc
	c.Logger.Info("using redis cache at %s", cfg.RedisAddr)
	return nil
}

// initServices wires the application services
func (c *Container) initServices() {
	weatherCfg := app.WeatherServiceConfig{
		Store:          c.Weather,
		Cache:          c.Cache,
		CacheTTL:       c.Config.Weather.CacheTTL,
		DefaultStation: c.Config.Weather.DefaultStation,
		Metrics:        c.Metrics,
		Logger:         c.Logger,
	}
	client, err := meteostat.NewClient(meteostat.Config{
		APIKey:  c.Config.Weather.APIKey,
		BaseURL: c.Config.Weather.BaseURL,
		Host:    c.Config.Weather.Host,
		Timeout: c.Config.Weather.Timeout,
	})
	if err != nil {
		c.Logger.Warn("weather provider disabled: %v", err)
	} else {
		weatherCfg.Provider = client
	}

	c.EnergyService = app.NewEnergyService(c.Readings, c.Metrics, c.Logger)
	c.WeatherService = app.NewWeatherService(weatherCfg)
	c.AnalyticsService = app.NewAnalyticsService(c.Buildings, c.Readings, c.WeatherService, c.Metrics, c.Logger)
	c.ReportService = app.NewReportService(c.Buildings, c.AnalyticsService, c.Logger)
	c.UploadService = app.NewUploadService(c.EnergyService, c.Logger)
	c.SettingsService = app.NewSettingsService(c.Buildings, c.Logger)
	c.AlertService = app.NewAlertService(c.Buildings, c.Readings, c.Alerts, c.Metrics, c.Logger)
}

// SweepAlerts runs one alert sweep over every building.
func (c *Container) SweepAlerts(ctx context.Context) error {
	results, err := c.AlertService.SweepAll(ctx, c.Config.Alerts.LookbackDays)
	if err != nil {
		return err
	}
	created := 0
	for _, r := range results {
		created += len(r.Created)
	}
	c.Logger.Info("alert sweep: %d buildings, %d new alerts", len(results), created)
	return nil
}

// StartScheduler schedules the alert sweep when enabled.
func (c *Container) StartScheduler() error {
	if !c.Config.Alerts.Enabled {
		c.Logger.Info("alert sweep disabled")
		return nil
	}
	if c.AlertService == nil {
		return fmt.Errorf("container not initialized")
	}

	c.Scheduler = scheduler.New(c.Logger)
	if err := c.Scheduler.Add(AlertSweepJob, c.Config.Alerts.Schedule, 5*time.Minute, c.SweepAlerts); err != nil {
		return err
	}
	c.Scheduler.Start()
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.Scheduler != nil {
		if err := c.Scheduler.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
