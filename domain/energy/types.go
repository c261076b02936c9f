package energy

import (
	"time"
)

// DefaultBuildingID is the building created by the initial migration.
const DefaultBuildingID int64 = 1

// Reading is a single metered energy sample.
type Reading struct {
	ID         int64     `json:"id" db:"id"`
	BuildingID int64     `json:"buildingId" db:"building_id"`
	Timestamp  time.Time `json:"timestamp" db:"recorded_at"`
	KWh        float64   `json:"kWh" db:"kwh"`
	Cost       float64   `json:"cost" db:"cost"`
	CO2        float64   `json:"co2" db:"co2"`
	Source     string    `json:"source" db:"source"`
}

// ReadingInput is an unvalidated reading as submitted by API clients. Pointer
// fields distinguish "missing" from zero.
type ReadingInput struct {
	Timestamp string   `json:"timestamp"`
	KWh       *float64 `json:"kWh"`
	Cost      *float64 `json:"cost"`
	CO2       *float64 `json:"co2"`
	Source    string   `json:"source"`
}

// ReadingFilter narrows a readings query. The time range applies only when
// both Start and End are set.
type ReadingFilter struct {
	BuildingID int64
	Start      *time.Time
	End        *time.Time
	Source     string
	Limit      int
}

// HasRange reports whether the filter carries a complete time range.
func (f ReadingFilter) HasRange() bool {
	return f.Start != nil && f.End != nil
}

// DateRange is an inclusive time span.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ReadingSummary aggregates a set of readings.
type ReadingSummary struct {
	TotalRecords int        `json:"totalRecords"`
	TotalKWh     float64    `json:"totalKWh"`
	TotalCost    float64    `json:"totalCost"`
	TotalCO2     float64    `json:"totalCO2"`
	AvgKWh       float64    `json:"avgKWh"`
	DateRange    *DateRange `json:"dateRange"`
}

// SourceCounts maps a reading source to the number of rows stored for it.
type SourceCounts map[string]int

// Total is the sum over all sources.
func (c SourceCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// InsertResult reports the outcome of a bulk insert.
type InsertResult struct {
	RecordsCreated int `json:"recordsCreated"`
	TotalSubmitted int `json:"totalSubmitted"`
}

// DailyUsage is the per-calendar-day total of a building's readings.
type DailyUsage struct {
	Date     time.Time `json:"date"`
	KWh      float64   `json:"kWh"`
	Cost     float64   `json:"cost"`
	CO2      float64   `json:"co2"`
	Readings int       `json:"readings"`
}

// MonthlyUsage is the per-calendar-month total of a building's readings.
type MonthlyUsage struct {
	Month  string  `json:"month"` // YYYY-MM
	Label  string  `json:"label"` // Jan, Feb, ...
	Energy float64 `json:"energy"`
	Cost   float64 `json:"cost"`
	CO2    float64 `json:"co2"`
	Days   int     `json:"days"`
}

// Input converts a reading back into an API submission.
func (r Reading) Input() ReadingInput {
	kwh, cost, co2 := r.KWh, r.Cost, r.CO2
	return ReadingInput{
		Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
		KWh:       &kwh,
		Cost:      &cost,
		CO2:       &co2,
		Source:    r.Source,
	}
}

// Inputs converts readings into API submissions.
func Inputs(readings []Reading) []ReadingInput {
	inputs := make([]ReadingInput, len(readings))
	for i, r := range readings {
		inputs[i] = r.Input()
	}
	return inputs
}
