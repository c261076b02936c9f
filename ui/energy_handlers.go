package ui

import (
	"net/http"
	"strconv"

	"energydash/app"
	"energydash/domain/core"
	"energydash/domain/energy"
)

type createReadingsRequest struct {
	BuildingID int64                 `json:"buildingId"`
	Data       []energy.ReadingInput `json:"data"`
}

func (a *App) handleListReadings(w http.ResponseWriter, r *http.Request) {
	filter := energy.ReadingFilter{Source: r.URL.Query().Get("source")}

	var err error
	if filter.Start, err = queryTime(r, "startDate"); err != nil {
		a.writeError(w, r, err)
		return
	}
	if filter.End, err = queryTime(r, "endDate"); err != nil {
		a.writeError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		a.writeError(w, r, err)
		return
	}
	if filter.BuildingID, err = queryInt64(r, "building"); err != nil {
		a.writeError(w, r, err)
		return
	}

	list, err := a.energy.List(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *App) handleCreateReadings(w http.ResponseWriter, r *http.Request) {
	var req createReadingsRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	result, err := a.energy.Create(r.Context(), req.BuildingID, req.Data)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Energy data uploaded successfully",
		"recordsCreated": result.RecordsCreated,
		"totalSubmitted": result.TotalSubmitted,
	})
}

func (a *App) handleDeleteReadings(w http.ResponseWriter, r *http.Request) {
	var req app.DeleteRequest

	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			a.writeError(w, r, core.NewValidationError("id", "must be an integer"))
			return
		}
		req.ID = &id
	}

	var err error
	if req.Start, err = queryTime(r, "startDate"); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.End, err = queryTime(r, "endDate"); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.BuildingID, err = queryInt64(r, "building"); err != nil {
		a.writeError(w, r, err)
		return
	}

	n, err := a.energy.Delete(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.ID != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Record deleted successfully"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Records deleted successfully",
		"deletedCount": n,
	})
}
