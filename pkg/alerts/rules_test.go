package alerts

import (
	"testing"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(value float64) *float64 {
	return &value
}

func TestFuelLevelRule(t *testing.T) {
	testCases := []struct {
		name     string
		fuel     *float64
		severity busdata.AlertSeverity
		emits    bool
	}{
		{"no reading", nil, "", false},
		{"healthy", floatPtr(55), "", false},
		{"at threshold", floatPtr(20), "", false},
		{"low", floatPtr(15), busdata.AlertSeverityMedium, true},
		{"very low", floatPtr(5), busdata.AlertSeverityHigh, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			report := &busdata.TelemetryReport{FuelLevel: testCase.fuel}

			alert := DefaultRules[0].Evaluate(report)
			if !testCase.emits {
				assert.Nil(t, alert)
				return
			}

			require.NotNil(t, alert)
			assert.Equal(t, busdata.AlertTypeMaintenance, alert.AlertType)
			assert.Equal(t, testCase.severity, alert.Severity)
			assert.Equal(t, "Low Fuel Level", alert.Title)
		})
	}
}

func TestEngineTemperatureRule(t *testing.T) {
	testCases := []struct {
		name        string
		temperature *float64
		severity    busdata.AlertSeverity
		emits       bool
	}{
		{"no reading", nil, "", false},
		{"normal", floatPtr(85), "", false},
		{"at threshold", floatPtr(90), "", false},
		{"hot", floatPtr(95), busdata.AlertSeverityHigh, true},
		{"critical", floatPtr(105), busdata.AlertSeverityCritical, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			report := &busdata.TelemetryReport{EngineTemperature: testCase.temperature}

			alert := DefaultRules[1].Evaluate(report)
			if !testCase.emits {
				assert.Nil(t, alert)
				return
			}

			require.NotNil(t, alert)
			assert.Equal(t, busdata.AlertTypeBreakdown, alert.AlertType)
			assert.Equal(t, testCase.severity, alert.Severity)
			assert.Equal(t, "Engine Overheating", alert.Title)
		})
	}
}

func TestSpeedRule(t *testing.T) {
	testCases := []struct {
		name  string
		speed float64
		emits bool
	}{
		{"stationary", 0, false},
		{"normal", 45, false},
		{"at threshold", 80, false},
		{"speeding", 95, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			report := &busdata.TelemetryReport{Speed: testCase.speed}

			alert := DefaultRules[2].Evaluate(report)
			if !testCase.emits {
				assert.Nil(t, alert)
				return
			}

			require.NotNil(t, alert)
			assert.Equal(t, busdata.AlertTypeTraffic, alert.AlertType)
			assert.Equal(t, busdata.AlertSeverityMedium, alert.Severity)
		})
	}
}

func TestEvaluateReportMultipleRules(t *testing.T) {
	report := &busdata.TelemetryReport{
		VehicleRef: "bus-42",
		Location: busdata.Location{
			Latitude:  11.3410,
			Longitude: 77.7172,
		},
		Speed:             95,
		FuelLevel:         floatPtr(8),
		EngineTemperature: floatPtr(102),
	}

	emitted := EvaluateReport(report, DefaultRules)
	require.Len(t, emitted, 3)

	for _, alert := range emitted {
		assert.NotEmpty(t, alert.PrimaryIdentifier)
		assert.Equal(t, "bus-42", alert.VehicleRef)
		assert.Equal(t, report.Location, alert.Location)
		assert.False(t, alert.CreationDateTime.IsZero())
	}
}

func TestEvaluateReportQuietReport(t *testing.T) {
	report := &busdata.TelemetryReport{
		VehicleRef: "bus-42",
		Speed:      40,
		FuelLevel:  floatPtr(70),
	}

	assert.Empty(t, EvaluateReport(report, DefaultRules))
}
