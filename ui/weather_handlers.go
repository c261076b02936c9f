package ui

import (
	"net/http"

	"energydash/domain/core"
)

type stationsRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Limit int      `json:"limit"`
}

func (a *App) handleWeather(w http.ResponseWriter, r *http.Request) {
	start, err := queryTime(r, "start")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if start == nil || end == nil {
		a.writeError(w, r, core.NewValidationError("dateRange", "Start date and end date are required"))
		return
	}

	report, err := a.weather.Daily(r.Context(), r.URL.Query().Get("station"), *start, *end)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleStations(w http.ResponseWriter, r *http.Request) {
	var req stationsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	stations, err := a.weather.NearbyStations(r.Context(), req.Lat, req.Lon, req.Limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stations": stations,
		"location": map[string]float64{"lat": *req.Lat, "lon": *req.Lon},
	})
}
