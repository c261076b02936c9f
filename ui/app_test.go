package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/domain/energy"
	"energydash/internal/config"
	"energydash/internal/container"
	"energydash/internal/testkit"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Database.Driver = "sqlite3"
	cfg.Database.URL = ":memory:"
	cfg.Log.Level = "ERROR"
	cfg.Metrics.Enabled = true

	c, err := container.New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Open(context.Background()))
	t.Cleanup(func() { c.Shutdown(context.Background()) })

	gen := testkit.NewReadingsGenerator(testkit.DefaultReadingsConfig())
	_, err = c.EnergyService.Create(context.Background(), energy.DefaultBuildingID, energy.Inputs(gen.Readings()))
	require.NoError(t, err)
	require.NoError(t, c.Weather.Upsert(context.Background(), gen.Weather(energy.DefaultStation)))

	a, err := NewApp(c, Config{MetricsPath: cfg.Metrics.Path, MaxUploadBytes: cfg.Server.MaxUploadBytes})
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *App, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const january = "start=2024-01-01&end=2024-01-31"

func TestHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = do(t, a, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "energydash_http_requests_total")
	assert.Contains(t, rec.Body.String(), "energydash_readings_ingested_total")
}

func TestEnergyDataAPI(t *testing.T) {
	a := newTestApp(t)

	body := `{"buildingId":1,"data":[{"timestamp":"2024-02-01T10:00:00Z","kWh":12.5,"cost":1.5}]}`
	rec := do(t, a, http.MethodPost, "/api/energy-data", []byte(body), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "Energy data uploaded successfully", out["message"])
	assert.EqualValues(t, 1, out["recordsCreated"])

	rec = do(t, a, http.MethodGet, "/api/energy-data?building=1&startDate=2024-02-01&endDate=2024-02-02", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode(t, rec)
	assert.Len(t, out["data"], 1)

	rec = do(t, a, http.MethodDelete, "/api/energy-data?building=1&startDate=2024-02-01&endDate=2024-02-02", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["deletedCount"])

	rec = do(t, a, http.MethodPost, "/api/energy-data", []byte(`{"buildingId":1,"data":[{"timestamp":"bad","kWh":1,"cost":1}]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out = decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
	assert.Contains(t, out["error"], "Invalid record at index 0")

	rec = do(t, a, http.MethodGet, "/api/energy-data?startDate=yesterday", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeatherAPI(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/weather?start=2024-01-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/api/weather?start=2024-01-01&end=2024-01-07", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "store", out["source"])
	assert.Len(t, out["data"], 7)
}

func TestAnalyticsAPI(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/analytics?"+january, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["weatherAvailable"])
	assert.NotEmpty(t, out["days"])

	rec = do(t, a, http.MethodGet, "/api/analytics/export.csv?"+january, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	rec = do(t, a, http.MethodGet, "/api/analytics?building=99", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, a, http.MethodGet, "/api/analytics?building=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportExports(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/reports?start=2024-01-16&end=2024-01-31", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode(t, rec)["narrative"])

	for format, contentType := range map[string]string{
		"csv":  "text/csv",
		"xlsx": "spreadsheetml",
		"pdf":  "application/pdf",
		"html": "text/html",
	} {
		t.Run(format, func(t *testing.T) {
			rec := do(t, a, http.MethodGet, "/api/reports/export."+format+"?"+january, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), contentType)
			assert.NotZero(t, rec.Body.Len())
		})
	}

	rec = do(t, a, http.MethodGet, "/api/reports/export.doc?"+january, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartBody(t *testing.T, name, content string, fields map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestUploadAPI(t *testing.T) {
	a := newTestApp(t)
	csv := "timestamp,kWh,cost\n2024-03-01T08:00:00Z,10,1.2\n2024-03-01T09:00:00Z,oops,1\n"

	body, ct := multipartBody(t, "meter.csv", csv, map[string]string{"commit": "true"})
	rec := do(t, a, http.MethodPost, "/api/upload", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	parse := out["parse"].(map[string]interface{})
	assert.Len(t, parse["data"], 1)
	assert.Len(t, parse["errors"], 1)
	insert := out["insert"].(map[string]interface{})
	assert.EqualValues(t, 1, insert["recordsCreated"])

	body, ct = multipartBody(t, "meter.txt", csv, nil)
	rec = do(t, a, http.MethodPost, "/api/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/api/upload/template", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, strings.ToLower(rec.Body.String()), "timestamp")
}

func TestSettingsAPI(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodGet, "/api/settings/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode(t, rec)
	assert.Equal(t, "Main Office Building", settings["buildingName"])

	settings["floorArea"] = -1
	body, err := json.Marshal(settings)
	require.NoError(t, err)
	rec = do(t, a, http.MethodPut, "/api/settings/1", body, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := decode(t, rec)["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Floor area must be greater than 0", errs["floorArea"])

	settings["floorArea"] = 3000
	body, err = json.Marshal(settings)
	require.NoError(t, err)
	rec = do(t, a, http.MethodPut, "/api/settings/1", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Settings saved successfully", decode(t, rec)["message"])

	rec = do(t, a, http.MethodPost, "/api/settings/1/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decode(t, rec)["settings"].(map[string]interface{})
	assert.EqualValues(t, 2500, reset["floorArea"])

	rec = do(t, a, http.MethodGet, "/api/settings/0", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertsAPI(t *testing.T) {
	a := newTestApp(t)

	rec := do(t, a, http.MethodPost, "/api/alerts/sweep?days=7", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, a, http.MethodGet, "/api/alerts?open=true", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["alerts"])

	rec = do(t, a, http.MethodPost, "/api/alerts/not-an-id/ack", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/api/alerts?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPagesRender(t *testing.T) {
	a := newTestApp(t)

	for path, marker := range map[string]string{
		"/?" + january:          "Total Energy",
		"/analytics?" + january: "Temperature correlation",
		"/upload":               "Download template",
		"/reports?" + january:   "Monthly breakdown",
		"/settings":             "Main Office Building",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, a, http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), marker)
		})
	}

	rec := do(t, a, http.MethodGet, "/static/style.css", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsForm(t *testing.T) {
	a := newTestApp(t)
	form := url.Values{
		"buildingName":     {"Annex"},
		"address":          {"Somewhere 1"},
		"floorArea":        {"abc"},
		"constructionYear": {"1990"},
	}

	rec := do(t, a, http.MethodPost, "/settings", []byte(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a number")

	form.Set("floorArea", "1200")
	rec = do(t, a, http.MethodPost, "/settings", []byte(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Settings saved successfully")
	assert.Contains(t, rec.Body.String(), "Annex")

	rec = do(t, a, http.MethodPost, "/settings", []byte("action=reset"), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Main Office Building")
}

func TestUploadForm(t *testing.T) {
	a := newTestApp(t)
	body, ct := multipartBody(t, "meter.csv", "timestamp,kWh,cost\n2024-03-01T08:00:00Z,10,1.2\n", nil)

	rec := do(t, a, http.MethodPost, "/upload", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "1 valid rows")
}
