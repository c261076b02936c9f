package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/analytics"
)

// WriteReportPDF renders the report as an A4 document with a summary table
// and the monthly breakdown.
func WriteReportPDF(w io.Writer, report *energy.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Energy Report: "+report.Building.Name), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Energy Report: "+report.Building.Name), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("%s to %s (previous: %s to %s)",
		report.Current.Range.Start.Format(core.DateLayout), report.Current.Range.End.Format(core.DateLayout),
		report.Previous.Range.Start.Format(core.DateLayout), report.Previous.Range.End.Format(core.DateLayout))
	pdf.CellFormat(0, 6, period, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Generated "+report.Generated.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{70, 40, 30, 50}
	tableHeader(pdf, tr, widths, []string{"Metric", "Value", "Unit", "Change"})
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range summaryRows(report) {
		value := strconv.FormatFloat(row.Value, 'f', 2, 64)
		if row.Unit == "count" {
			value = strconv.Itoa(int(row.Value))
		}
		cells := []string{row.Metric, value, row.Unit, row.Change}
		for i, c := range cells {
			align := "L"
			if i == 1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(report.Monthly) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Monthly Breakdown", "", 1, "L", false, 0, "")

		widths = []float64{40, 40, 40, 40, 30}
		header := append([]string(nil), monthlyHeader...)
		header[2] = "Cost (" + currencyCode(report.Building) + ")"
		tableHeader(pdf, tr, widths, header)
		pdf.SetFont("Helvetica", "", 10)
		for _, m := range report.Monthly {
			cells := []string{
				m.Month,
				strconv.FormatFloat(m.Energy, 'f', 1, 64),
				analytics.FormatCurrency(m.Cost, report.Building.Currency),
				strconv.FormatFloat(m.CO2, 'f', 1, 64),
				strconv.Itoa(m.Days),
			}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "R", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func tableHeader(pdf *fpdf.Fpdf, tr func(string) string, widths []float64, cells []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range cells {
		pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}
