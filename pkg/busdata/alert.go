package busdata

import "time"

type Alert struct {
	PrimaryIdentifier string `groups:"basic"`

	AlertType AlertType     `groups:"basic"`
	Severity  AlertSeverity `groups:"basic"`

	VehicleRef string `groups:"basic"`

	Title   string `groups:"basic"`
	Message string `groups:"basic"`

	Location Location `groups:"basic"`

	Resolved bool `groups:"basic"`

	CreationDateTime time.Time `groups:"basic"`
}

type AlertType string

const (
	AlertTypeMaintenance AlertType = "maintenance"
	AlertTypeBreakdown   AlertType = "breakdown"
	AlertTypeTraffic     AlertType = "traffic"
)

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)
