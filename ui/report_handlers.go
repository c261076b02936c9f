package ui

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"energydash/adapters/export"
	"energydash/app"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/ui/middleware"
)

type reportFormat struct {
	contentType string
	write       func(io.Writer, *energy.Report) error
}

var reportFormats = map[string]reportFormat{
	"csv":  {"text/csv; charset=utf-8", export.WriteReportCSV},
	"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteReportXLSX},
	"pdf":  {"application/pdf", export.WriteReportPDF},
	"html": {"text/html; charset=utf-8", writeReportHTML},
}

func writeReportHTML(w io.Writer, report *energy.Report) error {
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Energy report</title></head><body>\n%s</body></html>\n",
		app.NarrativeHTML(report.Narrative))
	return err
}

func (a *App) buildReport(r *http.Request) (*energy.Report, error) {
	start, end, err := a.queryRange(r, "start", "end", defaultRangeDays)
	if err != nil {
		return nil, err
	}
	b := middleware.BuildingFrom(r.Context())
	return a.reports.Build(r.Context(), b.ID, start, end)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := a.buildReport(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleReportExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "format")
	format, ok := reportFormats[name]
	if !ok {
		a.writeError(w, r, core.NewValidationError("format", "expected csv, xlsx, pdf or html"))
		return
	}

	report, err := a.buildReport(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := format.write(&buf, report); err != nil {
		a.writeError(w, r, err)
		return
	}
	attachment(w, format.contentType, export.FileName("energy-report", report.Current.Range, name))
	buf.WriteTo(w)
}
