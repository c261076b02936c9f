package ui

import (
	"bytes"
	"net/http"

	"energydash/adapters/export"
	"energydash/domain/energy"
	"energydash/ui/middleware"
)

// defaultRangeDays is the analysis window when no dates are given.
const defaultRangeDays = 30

func (a *App) analyze(r *http.Request) (*energy.Analytics, error) {
	start, end, err := a.queryRange(r, "start", "end", defaultRangeDays)
	if err != nil {
		return nil, err
	}
	threshold, err := queryFloat(r, "threshold", 0)
	if err != nil {
		return nil, err
	}
	b := middleware.BuildingFrom(r.Context())
	return a.analytics.Analyze(r.Context(), b.ID, start, end, threshold)
}

func (a *App) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := a.analyze(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleAnalyticsExport(w http.ResponseWriter, r *http.Request) {
	result, err := a.analyze(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteAnalyticsCSV(&buf, result); err != nil {
		a.writeError(w, r, err)
		return
	}
	attachment(w, "text/csv; charset=utf-8", export.FileName("energy-analytics", result.Range, "csv"))
	buf.WriteTo(w)
}
