package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"energydash/domain/core"
	"energydash/domain/energy"
)

func settingsID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func (a *App) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	id, err := settingsID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.settings.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *App) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	id, err := settingsID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var b energy.Building
	if err := decodeJSON(r, &b); err != nil {
		a.writeError(w, r, err)
		return
	}
	b.ID = id

	if err := a.settings.Save(r.Context(), &b); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Settings saved successfully",
		"settings": b,
	})
}

func (a *App) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	id, err := settingsID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	b, err := a.settings.Reset(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Settings reset to defaults",
		"settings": b,
	})
}
