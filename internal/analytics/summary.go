package analytics

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"energydash/domain/core"
	"energydash/domain/energy"
)

// PercentageChange returns the change from previous to current in percent.
// A zero previous value yields 0.
func PercentageChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// SummarizeReadings totals a set of readings. The date range is nil when
// there are no readings.
func SummarizeReadings(readings []energy.Reading) energy.ReadingSummary {
	summary := energy.ReadingSummary{TotalRecords: len(readings)}
	if len(readings) == 0 {
		return summary
	}

	start, end := readings[0].Timestamp, readings[0].Timestamp
	for _, r := range readings {
		summary.TotalKWh += r.KWh
		summary.TotalCost += r.Cost
		summary.TotalCO2 += r.CO2
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
	}
	summary.AvgKWh = summary.TotalKWh / float64(len(readings))
	summary.DateRange = &energy.DateRange{Start: start, End: end}
	return summary
}

// DailySeries totals readings per calendar day in loc, ascending by day.
// The input order is irrelevant.
func DailySeries(readings []energy.Reading, loc *time.Location) []energy.DailyUsage {
	byDay := make(map[time.Time]*energy.DailyUsage)
	for _, r := range readings {
		day := core.StartOfDay(r.Timestamp, loc)
		d, ok := byDay[day]
		if !ok {
			d = &energy.DailyUsage{Date: day}
			byDay[day] = d
		}
		d.KWh += r.KWh
		d.Cost += r.Cost
		d.CO2 += r.CO2
		d.Readings++
	}

	days := make([]energy.DailyUsage, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// DailyKWh extracts the kWh column of a daily series.
func DailyKWh(days []energy.DailyUsage) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.KWh
	}
	return out
}

// PeakUsage returns the largest daily consumption, 0 when empty.
func PeakUsage(days []energy.DailyUsage) float64 {
	peak, err := stats.Max(DailyKWh(days))
	if err != nil {
		return 0
	}
	return peak
}

// MonthlyBreakdown groups a daily series into calendar months, ascending.
func MonthlyBreakdown(days []energy.DailyUsage) []energy.MonthlyUsage {
	var months []energy.MonthlyUsage
	index := make(map[string]int)
	for _, d := range days {
		key := d.Date.Format("2006-01")
		i, ok := index[key]
		if !ok {
			months = append(months, energy.MonthlyUsage{Month: key, Label: d.Date.Format("Jan")})
			i = len(months) - 1
			index[key] = i
		}
		months[i].Energy += d.KWh
		months[i].Cost += d.Cost
		months[i].CO2 += d.CO2
		months[i].Days++
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}
