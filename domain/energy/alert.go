package energy

import (
	"time"

	"energydash/domain/core"
)

// AlertKind classifies what triggered an alert.
type AlertKind string

const (
	AlertAnomaly   AlertKind = "anomaly"
	AlertHighUsage AlertKind = "high_usage"
	AlertCost      AlertKind = "cost"
)

// AlertSeverity ranks alerts for display.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert is a persisted notification about unusual consumption on one day.
type Alert struct {
	ID           core.AlertID  `json:"id" db:"id"`
	BuildingID   int64         `json:"buildingId" db:"building_id"`
	Kind         AlertKind     `json:"kind" db:"kind"`
	Severity     AlertSeverity `json:"severity" db:"severity"`
	Day          time.Time     `json:"day" db:"day"`
	Value        float64       `json:"value" db:"value"`
	Baseline     float64       `json:"baseline" db:"baseline"`
	Message      string        `json:"message" db:"message"`
	Acknowledged bool          `json:"acknowledged" db:"acknowledged"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
}
