package analytics

import (
	"math"

	"github.com/montanaflynn/stats"

	"energydash/domain/energy"
)

// DegreeDayBase is the balance-point temperature in °C.
const DegreeDayBase = 18.0

// DegreeDays returns the heating and cooling degree days for a daily mean temperature.
func DegreeDays(avgTemp float64) (heating, cooling float64) {
	return math.Max(0, DegreeDayBase-avgTemp), math.Max(0, avgTemp-DegreeDayBase)
}

// WithDegreeDays fills in the degree-day fields of day from its average temperature.
func WithDegreeDays(day energy.WeatherDay) energy.WeatherDay {
	day.HeatingDegreeDays, day.CoolingDegreeDays = DegreeDays(day.AvgTemp)
	return day
}

// SummarizeWeather aggregates weather days. An empty input yields a zero summary.
func SummarizeWeather(days []energy.WeatherDay) energy.WeatherSummary {
	summary := energy.WeatherSummary{TotalDays: len(days)}
	if len(days) == 0 {
		return summary
	}

	avg := make([]float64, len(days))
	mins := make([]float64, len(days))
	maxs := make([]float64, len(days))
	for i, d := range days {
		avg[i], mins[i], maxs[i] = d.AvgTemp, d.MinTemp, d.MaxTemp
		summary.TotalPrecipitation += d.Precipitation
		summary.TotalHeatingDegreeDays += d.HeatingDegreeDays
		summary.TotalCoolingDegreeDays += d.CoolingDegreeDays
	}
	summary.AvgTemperature, _ = stats.Mean(avg)
	summary.MinTemperature, _ = stats.Min(mins)
	summary.MaxTemperature, _ = stats.Max(maxs)
	return summary
}

// NormalizeForWeather rescales each day's consumption to what it would have
// been with no heating or cooling demand, using a line fitted as
// kWh = Intercept + Slope*(HDD+CDD). Days without weather, or whose expected
// usage is not positive, keep their raw consumption.
func NormalizeForWeather(days []energy.AnalyticsDay, line Line) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.KWh
		if !d.HasWeather || line.Intercept <= 0 {
			continue
		}
		expected := line.Predict(d.HeatingDegreeDays + d.CoolingDegreeDays)
		if expected > 0 {
			out[i] = d.KWh / expected * line.Intercept
		}
	}
	return out
}
