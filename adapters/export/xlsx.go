package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"energydash/domain/core"
	"energydash/domain/energy"
)

const (
	summarySheet = "Summary"
	monthlySheet = "Monthly"
)

// WriteReportXLSX writes a workbook with a Summary and a Monthly sheet.
func WriteReportXLSX(w io.Writer, report *energy.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	summary := [][]interface{}{
		{"Building", report.Building.Name},
		{"Period", fmt.Sprintf("%s to %s", report.Current.Range.Start.Format(core.DateLayout), report.Current.Range.End.Format(core.DateLayout))},
		{},
		{"Metric", "Value", "Unit", "Change from Previous Period"},
	}
	for _, row := range summaryRows(report) {
		summary = append(summary, []interface{}{row.Metric, row.Value, row.Unit, row.Change})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A4", "D4", bold); err != nil {
		return err
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
	f.SetColWidth(summarySheet, "D", "D", 28)

	header := make([]interface{}, len(monthlyHeader))
	for i, h := range monthlyHeader {
		header[i] = h
	}
	header[2] = fmt.Sprintf("Cost (%s)", currencyCode(report.Building))
	monthly := [][]interface{}{header}
	for _, m := range report.Monthly {
		monthly = append(monthly, []interface{}{m.Month, m.Energy, m.Cost, m.CO2, m.Days})
	}
	if err := writeRows(f, monthlySheet, monthly); err != nil {
		return err
	}
	if err := f.SetCellStyle(monthlySheet, "A1", "E1", bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
