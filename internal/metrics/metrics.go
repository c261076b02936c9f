package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records application metrics on its own registry. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	readingsIngested *prometheus.CounterVec
	anomalies        *prometheus.CounterVec
	weatherErrors    *prometheus.CounterVec
	alertsCreated    *prometheus.CounterVec
}

// New creates a recorder with process and Go runtime collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energydash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "energydash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
		readingsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energydash_readings_ingested_total",
				Help: "Energy readings stored, by source",
			},
			[]string{"source"},
		),
		anomalies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energydash_anomalies_detected_total",
				Help: "Anomalous days found by analytics runs",
			},
			[]string{"building"},
		),
		weatherErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energydash_weather_fetch_errors_total",
				Help: "Failed weather provider calls",
			},
			[]string{"operation"},
		),
		alertsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energydash_alerts_created_total",
				Help: "Alerts created by sweeps, by kind",
			},
			[]string{"kind"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests, r.httpDuration, r.readingsIngested,
		r.anomalies, r.weatherErrors, r.alertsCreated,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RecordReadings records n stored readings from source.
func (r *Recorder) RecordReadings(source string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.readingsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordAnomalies records anomalous days found for a building.
func (r *Recorder) RecordAnomalies(buildingID int64, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.anomalies.WithLabelValues(strconv.FormatInt(buildingID, 10)).Add(float64(n))
}

// RecordWeatherError records a failed provider call.
func (r *Recorder) RecordWeatherError(operation string) {
	if r == nil {
		return
	}
	r.weatherErrors.WithLabelValues(operation).Inc()
}

// RecordAlert records a created alert.
func (r *Recorder) RecordAlert(kind string) {
	if r == nil {
		return
	}
	r.alertsCreated.WithLabelValues(kind).Inc()
}

// Middleware records request counts and latency labelled by the chi route
// pattern, keeping label cardinality bounded.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r == nil {
			next.ServeHTTP(w, req)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
