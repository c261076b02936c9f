package energy

import "time"

// Measure is an optional numeric result. Value is nil when the statistic is
// undefined for the input, and Reason then says why.
type Measure struct {
	Value  *float64 `json:"value"`
	Reason string   `json:"reason,omitempty"`
}

// Defined reports whether the measure carries a value.
func (m Measure) Defined() bool { return m.Value != nil }

// Float returns the value or fallback when undefined.
func (m Measure) Float(fallback float64) float64 {
	if m.Value == nil {
		return fallback
	}
	return *m.Value
}

// CorrelationResult is a Pearson coefficient with its two-tailed p-value.
type CorrelationResult struct {
	Coefficient Measure `json:"coefficient"`
	PValue      Measure `json:"pValue"`
	Samples     int     `json:"samples"`
}

// RegressionResult is a least-squares line or the reason it could not be fit.
type RegressionResult struct {
	Slope     Measure `json:"slope"`
	Intercept Measure `json:"intercept"`
	Samples   int     `json:"samples"`
}

// AnalyticsDay is one row of the analytics table.
type AnalyticsDay struct {
	Date              time.Time `json:"date"`
	KWh               float64   `json:"kWh"`
	Cost              float64   `json:"cost"`
	CO2               float64   `json:"co2"`
	HasWeather        bool      `json:"hasWeather"`
	AvgTemp           float64   `json:"avgTemp"`
	HeatingDegreeDays float64   `json:"heatingDegreeDays"`
	CoolingDegreeDays float64   `json:"coolingDegreeDays"`
	NormalizedUsage   float64   `json:"normalizedUsage"`
	IsAnomaly         bool      `json:"isAnomaly"`
	DeviationPct      float64   `json:"deviationPct"`
	AnomalyScore      float64   `json:"anomalyScore"`
}

// Analytics is the result of analysing a building over a date range.
type Analytics struct {
	BuildingID             int64             `json:"buildingId"`
	Range                  DateRange         `json:"range"`
	Threshold              float64           `json:"threshold"`
	Days                   []AnalyticsDay    `json:"days"`
	Anomalies              int               `json:"anomalies"`
	TemperatureCorrelation CorrelationResult `json:"temperatureCorrelation"`
	DegreeDayCorrelation   CorrelationResult `json:"degreeDayCorrelation"`
	WeatherModel           RegressionResult  `json:"weatherModel"`
	Trend                  RegressionResult  `json:"trend"`
	AvgNormalizedUsage     float64           `json:"avgNormalizedUsage"`
	WeatherAvailable       bool              `json:"weatherAvailable"`
}

// PeriodTotals summarises one reporting period.
type PeriodTotals struct {
	Range                  DateRange `json:"range"`
	TotalEnergy            float64   `json:"totalEnergy"`
	TotalCost              float64   `json:"totalCost"`
	TotalCO2               float64   `json:"totalCO2"`
	AvgDailyUsage          float64   `json:"avgDailyUsage"`
	PeakUsage              float64   `json:"peakUsage"`
	Anomalies              int       `json:"anomalies"`
	WeatherNormalizedUsage float64   `json:"weatherNormalizedUsage"`
	EnergyUseIntensity     float64   `json:"energyUseIntensity"` // kWh per m²
	Days                   int       `json:"days"`
}

// PeriodChange holds percentage changes against the previous period.
type PeriodChange struct {
	Energy    float64 `json:"energy"`
	Cost      float64 `json:"cost"`
	CO2       float64 `json:"co2"`
	Intensity float64 `json:"intensity"`
}

// Report is the periodic energy report.
type Report struct {
	Building  Building       `json:"building"`
	Current   PeriodTotals   `json:"current"`
	Previous  PeriodTotals   `json:"previous"`
	Change    PeriodChange   `json:"change"`
	Monthly   []MonthlyUsage `json:"monthly"`
	Narrative string         `json:"narrative"`
	Generated time.Time      `json:"generated"`
}
