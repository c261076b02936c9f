package ui

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"energydash/app"
	"energydash/domain/core"
	"energydash/domain/energy"
)

// parseUpload reads the multipart "file" field and parses it, committing
// the rows when the "commit" field is true.
func (a *App) parseUpload(w http.ResponseWriter, r *http.Request, buildingID int64) (*app.UploadResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, core.NewValidationError("file", "upload exceeds "+strconv.FormatInt(a.config.MaxUploadBytes, 10)+" bytes")
		}
		return nil, core.NewValidationError("file", "expected a multipart form with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, core.NewValidationError("file", "No file uploaded")
	}
	defer file.Close()

	result, err := a.uploads.Parse(header.Filename, file)
	if err != nil {
		return nil, err
	}

	if commit, _ := strconv.ParseBool(r.FormValue("commit")); commit {
		if err := a.uploads.Commit(r.Context(), buildingID, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	buildingID, err := queryInt64(r, "building")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if buildingID == 0 {
		buildingID = energy.DefaultBuildingID
	}

	result, err := a.parseUpload(w, r, buildingID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleUploadTemplate(w http.ResponseWriter, r *http.Request) {
	attachment(w, "text/csv; charset=utf-8", "energy-data-template.csv")
	w.Write(a.uploads.Template())
}
