package ui

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"energydash/app"
	"energydash/domain/energy"
	"energydash/internal/errors"
	"energydash/ui/middleware"
)

// currencies lists the selectable settings currencies.
var currencies = []string{"EUR", "USD", "GBP", "CHF"}

func (a *App) page(r *http.Request, title, active string) map[string]interface{} {
	return map[string]interface{}{
		"Title":    title,
		"Active":   active,
		"Building": middleware.BuildingFrom(r.Context()),
		"Query":    template.URL(r.URL.RawQuery),
	}
}

func (a *App) renderError(w http.ResponseWriter, r *http.Request, data map[string]interface{}, name string, err error) {
	data["Error"] = errors.Message(err)
	a.logger.Warn("%s page: %v", name, err)
	a.renderTemplate(w, errors.HTTPStatus(err), name, data)
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := a.page(r, "Dashboard", "dashboard")
	b := middleware.BuildingFrom(r.Context())

	start, end, err := a.queryRange(r, "start", "end", defaultRangeDays)
	if err != nil {
		a.renderError(w, r, data, "dashboard.html", err)
		return
	}
	report, err := a.reports.Build(r.Context(), b.ID, start, end)
	if err != nil {
		a.renderError(w, r, data, "dashboard.html", err)
		return
	}
	data["Report"] = report

	if alerts, err := a.alerts.List(r.Context(), b.ID, true, 5); err == nil {
		data["Alerts"] = alerts
	}
	if recent, err := a.energy.List(r.Context(), energy.ReadingFilter{BuildingID: b.ID, Limit: 10}); err == nil {
		data["Recent"] = recent.Data
	}
	a.renderTemplate(w, http.StatusOK, "dashboard.html", data)
}

func (a *App) handleAnalyticsPage(w http.ResponseWriter, r *http.Request) {
	data := a.page(r, "Analytics", "analytics")
	result, err := a.analyze(r)
	if err != nil {
		a.renderError(w, r, data, "analytics.html", err)
		return
	}
	data["Analytics"] = result
	a.renderTemplate(w, http.StatusOK, "analytics.html", data)
}

func (a *App) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "upload.html", a.page(r, "Upload", "upload"))
}

func (a *App) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	data := a.page(r, "Upload", "upload")
	b := middleware.BuildingFrom(r.Context())

	result, err := a.parseUpload(w, r, b.ID)
	data["Result"] = result
	if err != nil {
		a.renderError(w, r, data, "upload.html", err)
		return
	}
	a.renderTemplate(w, http.StatusOK, "upload.html", data)
}

func (a *App) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	data := a.page(r, "Reports", "reports")
	report, err := a.buildReport(r)
	if err != nil {
		a.renderError(w, r, data, "reports.html", err)
		return
	}
	data["Report"] = report
	data["Narrative"] = app.NarrativeHTML(report.Narrative)

	q := url.Values{}
	q.Set("building", strconv.FormatInt(report.Building.ID, 10))
	q.Set("start", report.Current.Range.Start.Format("2006-01-02"))
	q.Set("end", report.Current.Range.End.Format("2006-01-02"))
	data["ExportQuery"] = template.URL(q.Encode())
	a.renderTemplate(w, http.StatusOK, "reports.html", data)
}

func (a *App) settingsPage(r *http.Request, b *energy.Building) map[string]interface{} {
	data := a.page(r, "Settings", "settings")
	data["Building"] = b
	data["BuildingTypes"] = energy.BuildingTypes
	data["HeatingSystems"] = energy.HeatingSystems
	data["CoolingSystems"] = energy.CoolingSystems
	data["Currencies"] = currencies
	data["Errors"] = app.FieldErrors{}
	return data
}

func (a *App) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "settings.html", a.settingsPage(r, middleware.BuildingFrom(r.Context())))
}

func (a *App) handleSettingsForm(w http.ResponseWriter, r *http.Request) {
	current := middleware.BuildingFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		a.renderError(w, r, a.settingsPage(r, current), "settings.html", err)
		return
	}

	if r.PostForm.Get("action") == "reset" {
		b, err := a.settings.Reset(r.Context(), current.ID)
		if err != nil {
			a.renderError(w, r, a.settingsPage(r, current), "settings.html", err)
			return
		}
		data := a.settingsPage(r, b)
		data["Saved"] = "Settings reset to defaults"
		a.renderTemplate(w, http.StatusOK, "settings.html", data)
		return
	}

	b, fieldErrs := buildingFromForm(r.PostForm, current)
	if len(fieldErrs) == 0 {
		err := a.settings.Save(r.Context(), b)
		if fe, ok := err.(app.FieldErrors); ok {
			fieldErrs = fe
		} else if err != nil {
			a.renderError(w, r, a.settingsPage(r, b), "settings.html", err)
			return
		}
	}

	data := a.settingsPage(r, b)
	if len(fieldErrs) > 0 {
		data["Errors"] = fieldErrs
		a.renderTemplate(w, http.StatusBadRequest, "settings.html", data)
		return
	}
	data["Saved"] = "Settings saved successfully"
	a.renderTemplate(w, http.StatusOK, "settings.html", data)
}

// buildingFromForm applies submitted settings onto a copy of base. Checkbox
// fields are false when absent.
func buildingFromForm(form url.Values, base *energy.Building) (*energy.Building, app.FieldErrors) {
	b := *base
	errs := app.FieldErrors{}

	str := func(key string, dst *string) {
		if _, ok := form[key]; ok {
			*dst = strings.TrimSpace(form.Get(key))
		}
	}
	num := func(key string, dst *float64) {
		if _, ok := form[key]; !ok {
			return
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(form.Get(key)), 64)
		if err != nil {
			errs[key] = "must be a number"
			return
		}
		*dst = v
	}
	flag := func(key string) bool {
		on, _ := strconv.ParseBool(form.Get(key))
		return on || form.Get(key) == "on"
	}

	str("buildingName", &b.Name)
	str("address", &b.Address)
	str("buildingType", &b.BuildingType)
	str("heatingSystem", &b.HeatingSystem)
	str("coolingSystem", &b.CoolingSystem)
	str("weatherStation", &b.WeatherStation)
	str("timezone", &b.Timezone)
	str("currency", &b.Currency)
	num("latitude", &b.Latitude)
	num("longitude", &b.Longitude)
	num("floorArea", &b.FloorArea)
	num("energyTariff", &b.EnergyTariff)
	num("co2Factor", &b.CO2Factor)
	num("thresholds.highUsageAlert", &b.Thresholds.HighUsageAlert)
	num("thresholds.costAlert", &b.Thresholds.CostAlert)
	num("thresholds.anomalyScore", &b.Thresholds.AnomalyScore)

	if raw, ok := form["constructionYear"]; ok {
		year, err := strconv.Atoi(strings.TrimSpace(raw[0]))
		if err != nil {
			errs["constructionYear"] = "Invalid construction year"
		} else {
			b.ConstructionYear = year
		}
	}

	b.Notifications = energy.Notifications{
		AnomalyAlerts:        flag("notifications.anomalyAlerts"),
		MonthlyReports:       flag("notifications.monthlyReports"),
		MaintenanceReminders: flag("notifications.maintenanceReminders"),
		CostThresholds:       flag("notifications.costThresholds"),
	}
	return &b, errs
}
