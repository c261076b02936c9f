package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"energydash/app"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/internal/container"
	"energydash/internal/metrics"
	"energydash/ports"
	uimw "energydash/ui/middleware"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// App represents the dashboard web application: HTML pages plus the JSON API
type App struct {
	router    *chi.Mux
	templates *template.Template
	logger    *internal.Logger
	metrics   *metrics.Recorder
	config    Config

	health    func(ctx context.Context) error
	buildings ports.BuildingRepository

	energy    *app.EnergyService
	weather   *app.WeatherService
	analytics *app.AnalyticsService
	reports   *app.ReportService
	uploads   *app.UploadService
	settings  *app.SettingsService
	alerts    *app.AlertService

	now func() time.Time
}

// Config holds UI application configuration
type Config struct {
	Port           string
	MetricsPath    string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// NewApp creates the web application over an initialized container
func NewApp(c *container.Container, config Config) (*App, error) {
	if c == nil || c.EnergyService == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 10 << 20
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := c.Logger
	if logger == nil {
		logger = internal.NopLogger()
	}

	a := &App{
		router:    chi.NewRouter(),
		templates: templates,
		logger:    logger.With("http"),
		metrics:   c.Metrics,
		config:    config,
		health:    func(ctx context.Context) error { return c.DB.PingContext(ctx) },
		buildings: c.Buildings,
		energy:    c.EnergyService,
		weather:   c.WeatherService,
		analytics: c.AnalyticsService,
		reports:   c.ReportService,
		uploads:   c.UploadService,
		settings:  c.SettingsService,
		alerts:    c.AlertService,
		now:       time.Now,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: accessLog{a.logger}, NoColor: true}))
	a.router.Use(middleware.Recoverer)
	if a.metrics != nil {
		a.router.Use(a.metrics.Middleware)
	}
	a.router.Use(middleware.Compress(5))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		a.logger.Error("static files unavailable: %v", err)
		return
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	withBuilding := uimw.Building(a.buildings, a.writeError)

	// Main pages
	a.router.Group(func(r chi.Router) {
		r.Use(withBuilding)
		r.Get("/", a.handleDashboard)
		r.Get("/analytics", a.handleAnalyticsPage)
		r.Get("/upload", a.handleUploadPage)
		r.Post("/upload", a.handleUploadForm)
		r.Get("/reports", a.handleReportsPage)
		r.Get("/settings", a.handleSettingsPage)
		r.Post("/settings", a.handleSettingsForm)
	})

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/energy-data", a.handleListReadings)
		r.Post("/energy-data", a.handleCreateReadings)
		r.Delete("/energy-data", a.handleDeleteReadings)

		r.Get("/weather", a.handleWeather)
		r.Post("/weather/stations", a.handleStations)

		r.Post("/upload", a.handleUpload)
		r.Get("/upload/template", a.handleUploadTemplate)

		r.Get("/settings/{id}", a.handleGetSettings)
		r.Put("/settings/{id}", a.handleSaveSettings)
		r.Post("/settings/{id}/reset", a.handleResetSettings)

		r.Get("/alerts", a.handleListAlerts)
		r.Post("/alerts/{id}/ack", a.handleAckAlert)

		r.Group(func(r chi.Router) {
			r.Use(withBuilding)
			r.Get("/analytics", a.handleAnalytics)
			r.Get("/analytics/export.csv", a.handleAnalyticsExport)
			r.Get("/reports", a.handleReport)
			r.Get("/reports/export.{format}", a.handleReportExport)
			r.Post("/alerts/sweep", a.handleSweepAlerts)
		})
	})

	a.router.Get("/healthz", a.handleHealth)
	if a.metrics != nil {
		a.router.Handle(a.config.MetricsPath, a.metrics.Handler())
	}
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.router
}

// Server returns an HTTP server for the configured port
func (a *App) Server() *http.Server {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	return &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.config.ReadTimeout,
		WriteTimeout:      a.config.WriteTimeout,
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var funcMap = template.FuncMap{
	"energy":   analytics.FormatEnergy,
	"co2":      analytics.FormatCO2,
	"currency": analytics.FormatCurrency,
	"change":   analytics.FormatChange,
	"date":     func(t time.Time) string { return t.Format(core.DateLayout) },
	"fixed":    func(prec int, v float64) string { return fmt.Sprintf("%.*f", prec, v) },
	"measure": func(m energy.Measure, prec int) string {
		if !m.Defined() {
			return "n/a"
		}
		return fmt.Sprintf("%.*f", prec, *m.Value)
	},
}

// renderTemplate executes a template into a buffer first so a failing
// template never produces a half-written page.
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("template %s: %v", templateName, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Debug("writing %s: %v", templateName, err)
	}
}

// accessLog routes chi request logs to the application logger.
type accessLog struct {
	logger *internal.Logger
}

func (l accessLog) Print(v ...interface{}) {
	l.logger.Info("%s", fmt.Sprint(v...))
}
