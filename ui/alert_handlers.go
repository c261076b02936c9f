package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"energydash/domain/energy"
	"energydash/ui/middleware"
)

func (a *App) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	buildingID, err := queryInt64(r, "building")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if buildingID == 0 {
		buildingID = energy.DefaultBuildingID
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	open, _ := strconv.ParseBool(r.URL.Query().Get("open"))

	alerts, err := a.alerts.List(r.Context(), buildingID, open, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func (a *App) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	if err := a.alerts.Acknowledge(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert acknowledged"})
}

func (a *App) handleSweepAlerts(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 0)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b := middleware.BuildingFrom(r.Context())

	result, err := a.alerts.Sweep(r.Context(), b.ID, days)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
