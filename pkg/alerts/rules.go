package alerts

import (
	"fmt"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/google/uuid"
)

// Rule inspects one accepted report and emits at most one alert. Rules are
// independent and not mutually exclusive.
type Rule struct {
	Name     string
	Evaluate func(report *busdata.TelemetryReport) *busdata.Alert
}

var DefaultRules = []Rule{
	{
		Name: "fuel-level",
		Evaluate: func(report *busdata.TelemetryReport) *busdata.Alert {
			if report.FuelLevel == nil || *report.FuelLevel >= 20 {
				return nil
			}

			severity := busdata.AlertSeverityMedium
			if *report.FuelLevel < 10 {
				severity = busdata.AlertSeverityHigh
			}

			return &busdata.Alert{
				AlertType: busdata.AlertTypeMaintenance,
				Severity:  severity,
				Title:     "Low Fuel Level",
				Message:   fmt.Sprintf("Bus fuel level is at %.1f%%", *report.FuelLevel),
			}
		},
	},
	{
		Name: "engine-temperature",
		Evaluate: func(report *busdata.TelemetryReport) *busdata.Alert {
			if report.EngineTemperature == nil || *report.EngineTemperature <= 90 {
				return nil
			}

			severity := busdata.AlertSeverityHigh
			if *report.EngineTemperature > 100 {
				severity = busdata.AlertSeverityCritical
			}

			return &busdata.Alert{
				AlertType: busdata.AlertTypeBreakdown,
				Severity:  severity,
				Title:     "Engine Overheating",
				Message:   fmt.Sprintf("Engine temperature reached %.1f°C", *report.EngineTemperature),
			}
		},
	},
	{
		Name: "speed",
		Evaluate: func(report *busdata.TelemetryReport) *busdata.Alert {
			if report.Speed <= 80 {
				return nil
			}

			return &busdata.Alert{
				AlertType: busdata.AlertTypeTraffic,
				Severity:  busdata.AlertSeverityMedium,
				Title:     "Speeding",
				Message:   fmt.Sprintf("Bus is travelling at %.1f km/h", report.Speed),
			}
		},
	},
}

// EvaluateReport runs every rule against the report. Each emitted alert
// carries the report's location snapshot. No de-duplication is applied - a
// condition that persists across reports re-emits on every one.
func EvaluateReport(report *busdata.TelemetryReport, rules []Rule) []busdata.Alert {
	var emitted []busdata.Alert

	for _, rule := range rules {
		alert := rule.Evaluate(report)
		if alert == nil {
			continue
		}

		alert.PrimaryIdentifier = uuid.NewString()
		alert.VehicleRef = report.VehicleRef
		alert.Location = report.Location
		alert.CreationDateTime = time.Now()

		emitted = append(emitted, *alert)
	}

	return emitted
}
