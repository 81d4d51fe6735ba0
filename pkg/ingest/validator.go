package ingest

import (
	"fmt"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
)

// ReportPayload is the raw JSON body a device posts to the telemetry
// endpoint. Pointer fields distinguish absent from zero.
type ReportPayload struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     *float64 `json:"speed"`
	Heading   *float64 `json:"heading"`

	Altitude *float64 `json:"altitude"`
	Accuracy *float64 `json:"accuracy"`

	FuelLevel         *float64 `json:"fuel_level"`
	EngineTemperature *float64 `json:"engine_temperature"`
	PassengerCount    *int     `json:"passenger_count"`

	DoorStatus *busdata.DoorStatus `json:"door_status"`

	Timestamp string `json:"timestamp"`
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidateReport checks a raw payload and either returns a normalized report
// with documented defaults applied, or the full list of violated fields.
// Validation is total - nothing is partially applied.
func ValidateReport(payload ReportPayload, now time.Time) (*busdata.TelemetryReport, []FieldViolation) {
	var violations []FieldViolation

	if payload.Latitude == nil {
		violations = append(violations, FieldViolation{Field: "latitude", Message: "is required"})
	} else if *payload.Latitude < -90 || *payload.Latitude > 90 {
		violations = append(violations, FieldViolation{Field: "latitude", Message: "must be between -90 and 90"})
	}

	if payload.Longitude == nil {
		violations = append(violations, FieldViolation{Field: "longitude", Message: "is required"})
	} else if *payload.Longitude < -180 || *payload.Longitude > 180 {
		violations = append(violations, FieldViolation{Field: "longitude", Message: "must be between -180 and 180"})
	}

	speed := 0.0
	if payload.Speed != nil {
		speed = *payload.Speed
		if speed < 0 || speed > 200 {
			violations = append(violations, FieldViolation{Field: "speed", Message: "must be between 0 and 200"})
		}
	}

	heading := 0.0
	if payload.Heading != nil {
		heading = *payload.Heading
		if heading < 0 || heading > 360 {
			violations = append(violations, FieldViolation{Field: "heading", Message: "must be between 0 and 360"})
		}
	}

	if payload.FuelLevel != nil && (*payload.FuelLevel < 0 || *payload.FuelLevel > 100) {
		violations = append(violations, FieldViolation{Field: "fuel_level", Message: "must be between 0 and 100"})
	}

	if payload.PassengerCount != nil && *payload.PassengerCount < 0 {
		violations = append(violations, FieldViolation{Field: "passenger_count", Message: "must not be negative"})
	}

	timestamp := now
	if payload.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, payload.Timestamp)
		if err != nil {
			violations = append(violations, FieldViolation{Field: "timestamp", Message: "must be a valid RFC3339 datetime"})
		} else {
			timestamp = parsed
		}
	}

	if len(violations) > 0 {
		return nil, violations
	}

	// Heading is stored in [0, 360)
	if heading == 360 {
		heading = 0
	}

	doorStatus := busdata.DoorStatus{}
	if payload.DoorStatus != nil {
		doorStatus = *payload.DoorStatus
	}

	report := &busdata.TelemetryReport{
		Location: busdata.Location{
			Latitude:  *payload.Latitude,
			Longitude: *payload.Longitude,
		},
		Speed:   speed,
		Heading: heading,

		Altitude: payload.Altitude,
		Accuracy: payload.Accuracy,

		FuelLevel:         payload.FuelLevel,
		EngineTemperature: payload.EngineTemperature,
		PassengerCount:    payload.PassengerCount,

		DoorStatus: doorStatus,

		Timestamp:  timestamp,
		RecordedAt: now,
	}

	return report, nil
}
