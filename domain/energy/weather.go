package energy

import "time"

// DefaultStation is the Meteostat station used when none is configured (Berlin-Tempelhof).
const DefaultStation = "10637"

// WeatherDay is one day of station observations plus derived degree days.
type WeatherDay struct {
	Station           string    `json:"station" db:"station"`
	Date              time.Time `json:"date" db:"day"`
	AvgTemp           float64   `json:"avgTemp" db:"avg_temp"`
	MinTemp           float64   `json:"minTemp" db:"min_temp"`
	MaxTemp           float64   `json:"maxTemp" db:"max_temp"`
	Precipitation     float64   `json:"precipitation" db:"precipitation"`
	WindSpeed         float64   `json:"windSpeed" db:"wind_speed"`
	Pressure          float64   `json:"pressure" db:"pressure"`
	HeatingDegreeDays float64   `json:"heatingDegreeDays" db:"heating_degree_days"`
	CoolingDegreeDays float64   `json:"coolingDegreeDays" db:"cooling_degree_days"`
}

// WeatherSummary aggregates a run of weather days.
type WeatherSummary struct {
	TotalDays              int     `json:"totalDays"`
	AvgTemperature         float64 `json:"avgTemperature"`
	TotalPrecipitation     float64 `json:"totalPrecipitation"`
	TotalHeatingDegreeDays float64 `json:"totalHeatingDegreeDays"`
	TotalCoolingDegreeDays float64 `json:"totalCoolingDegreeDays"`
	MinTemperature         float64 `json:"minTemperature"`
	MaxTemperature         float64 `json:"maxTemperature"`
}

// Station is a weather station near a location.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Distance  float64 `json:"distance"`
}
