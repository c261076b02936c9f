package energy

import "time"

// Notifications toggles the alert kinds a building receives.
type Notifications struct {
	AnomalyAlerts        bool `json:"anomalyAlerts" db:"notify_anomaly" default:"true"`
	MonthlyReports       bool `json:"monthlyReports" db:"notify_monthly" default:"true"`
	MaintenanceReminders bool `json:"maintenanceReminders" db:"notify_maintenance" default:"true"`
	CostThresholds       bool `json:"costThresholds" db:"notify_cost" default:"true"`
}

// Thresholds configures the alert limits of a building.
type Thresholds struct {
	HighUsageAlert float64 `json:"highUsageAlert" db:"high_usage_alert" default:"300" validate:"gte=0"`
	CostAlert      float64 `json:"costAlert" db:"cost_alert" default:"50" validate:"gte=0"`
	AnomalyScore   float64 `json:"anomalyScore" db:"anomaly_score" default:"0.7" validate:"gte=0,lte=1"`
}

// Building holds the settings of a monitored building.
type Building struct {
	ID               int64         `json:"id" db:"id"`
	Name             string        `json:"buildingName" db:"name" default:"Main Office Building" validate:"required"`
	Address          string        `json:"address" db:"address" default:"Potsdamer Platz 1, 10785 Berlin, Germany" validate:"required"`
	Latitude         float64       `json:"latitude" db:"latitude" default:"52.5096" validate:"gte=-90,lte=90"`
	Longitude        float64       `json:"longitude" db:"longitude" default:"13.3765" validate:"gte=-180,lte=180"`
	FloorArea        float64       `json:"floorArea" db:"floor_area" default:"2500" validate:"gt=0"`
	BuildingType     string        `json:"buildingType" db:"building_type" default:"Office" validate:"omitempty,oneof=Office Retail Warehouse Manufacturing Healthcare Education Hospitality Residential 'Mixed Use'"`
	ConstructionYear int           `json:"constructionYear" db:"construction_year" default:"2010" validate:"construction_year"`
	HeatingSystem    string        `json:"heatingSystem" db:"heating_system" default:"Gas Boiler"`
	CoolingSystem    string        `json:"coolingSystem" db:"cooling_system" default:"Electric AC"`
	EnergyTariff     float64       `json:"energyTariff" db:"energy_tariff" default:"0.12" validate:"gt=0"`
	CO2Factor        float64       `json:"co2Factor" db:"co2_factor" default:"0.4" validate:"gte=0"`
	WeatherStation   string        `json:"weatherStation" db:"weather_station" default:"10637"`
	Timezone         string        `json:"timezone" db:"timezone" default:"Europe/Berlin" validate:"omitempty,timezone"`
	Currency         string        `json:"currency" db:"currency" default:"EUR" validate:"omitempty,oneof=EUR USD GBP CHF"`
	Notifications    Notifications `json:"notifications"`
	Thresholds       Thresholds    `json:"thresholds"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// BuildingTypes lists the selectable building types.
var BuildingTypes = []string{
	"Office", "Retail", "Warehouse", "Manufacturing", "Healthcare", "Education", "Hospitality", "Residential", "Mixed Use",
}

// HeatingSystems lists the selectable heating systems.
var HeatingSystems = []string{
	"Gas Boiler", "Electric Heating", "Heat Pump", "District Heating", "Oil Boiler", "Biomass", "Solar Thermal",
}

// CoolingSystems lists the selectable cooling systems.
var CoolingSystems = []string{
	"Electric AC", "Chiller", "Evaporative Cooling", "Natural Ventilation", "Heat Pump", "District Cooling",
}

// Location resolves the building's time zone, falling back to UTC.
func (b *Building) Location() *time.Location {
	if b == nil || b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
