package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal/analytics"
)

// FileName builds a download name such as energy-report-2024-01-01-to-2024-01-31.csv.
func FileName(prefix string, r energy.DateRange, ext string) string {
	return fmt.Sprintf("%s-%s-to-%s.%s", prefix, r.Start.Format(core.DateLayout), r.End.Format(core.DateLayout), ext)
}

func num(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func currencyCode(b energy.Building) string {
	if b.Currency == "" {
		return "EUR"
	}
	return b.Currency
}

// reportRow is one line of the report summary shared by every export format.
type reportRow struct {
	Metric string
	Value  float64
	Unit   string
	Change string
}

func summaryRows(report *energy.Report) []reportRow {
	cur, ch := report.Current, report.Change
	return []reportRow{
		{"Total Energy", cur.TotalEnergy, "kWh", analytics.FormatChange(ch.Energy)},
		{"Total Cost", cur.TotalCost, currencyCode(report.Building), analytics.FormatChange(ch.Cost)},
		{"Total CO2", cur.TotalCO2, "kg", analytics.FormatChange(ch.CO2)},
		{"Energy Use Intensity", cur.EnergyUseIntensity, "kWh/m2", analytics.FormatChange(ch.Intensity)},
		{"Average Daily Usage", cur.AvgDailyUsage, "kWh", ""},
		{"Peak Usage", cur.PeakUsage, "kWh", ""},
		{"Anomalies Detected", float64(cur.Anomalies), "count", ""},
		{"Weather Normalized Usage", cur.WeatherNormalizedUsage, "kWh", ""},
	}
}

var monthlyHeader = []string{"Month", "Energy (kWh)", "Cost", "CO2 (kg)", "Days"}

// WriteReportCSV writes the metric summary followed by the monthly breakdown.
func WriteReportCSV(w io.Writer, report *energy.Report) error {
	cw := csv.NewWriter(w)

	cw.Write([]string{"Metric", "Value", "Unit", "Change from Previous Period"})
	for _, row := range summaryRows(report) {
		prec := 2
		if row.Unit == "count" {
			prec = 0
		}
		cw.Write([]string{row.Metric, num(row.Value, prec), row.Unit, row.Change})
	}

	cw.Write([]string{})
	cw.Write([]string{"Monthly Breakdown"})
	header := append([]string(nil), monthlyHeader...)
	header[2] = fmt.Sprintf("Cost (%s)", currencyCode(report.Building))
	cw.Write(header)
	for _, m := range report.Monthly {
		cw.Write([]string{m.Month, num(m.Energy, 2), num(m.Cost, 2), num(m.CO2, 2), strconv.Itoa(m.Days)})
	}

	cw.Flush()
	return cw.Error()
}

// WriteAnalyticsCSV writes one row per analysed day.
func WriteAnalyticsCSV(w io.Writer, a *energy.Analytics) error {
	cw := csv.NewWriter(w)

	cw.Write([]string{"Date", "Energy (kWh)", "Cost", "Temperature (°C)", "Normalized Usage", "Anomaly", "Anomaly Score"})
	for _, d := range a.Days {
		temp := ""
		if d.HasWeather {
			temp = num(d.AvgTemp, 1)
		}
		anomaly := "No"
		if d.IsAnomaly {
			anomaly = "Yes"
		}
		cw.Write([]string{
			d.Date.Format(core.DateLayout),
			num(d.KWh, 2),
			num(d.Cost, 2),
			temp,
			num(d.NormalizedUsage, 2),
			anomaly,
			num(d.AnomalyScore, 3),
		})
	}

	cw.Flush()
	return cw.Error()
}
