package eta

import (
	"context"
	"testing"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	telemetry.Repository

	latest  *busdata.TelemetryReport
	history []busdata.TelemetryReport
	stop    *busdata.Stop
}

func (r *stubRepository) LatestReport(ctx context.Context, vehicleRef string) (*busdata.TelemetryReport, error) {
	if r.latest == nil {
		return nil, telemetry.ErrNotFound
	}
	return r.latest, nil
}

func (r *stubRepository) RecentReports(ctx context.Context, vehicleRef string, since time.Time, limit int64) ([]busdata.TelemetryReport, error) {
	return r.history, nil
}

func (r *stubRepository) Stop(ctx context.Context, stopRef string) (*busdata.Stop, error) {
	if r.stop == nil {
		return nil, telemetry.ErrNotFound
	}
	return r.stop, nil
}

func newTestCalculator(repository telemetry.Repository, now time.Time) *Calculator {
	calculator := NewCalculator(repository)
	calculator.now = func() time.Time { return now }
	return calculator
}

func TestEstimateAtStop(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

	repository := &stubRepository{
		latest: &busdata.TelemetryReport{
			Location: busdata.Location{Latitude: 11.3410, Longitude: 77.7172},
			Speed:    40,
		},
		stop: &busdata.Stop{
			PrimaryIdentifier: "stop-1",
			Location:          busdata.Location{Latitude: 11.3410, Longitude: 77.7172},
		},
	}

	estimate, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
	require.NoError(t, err)

	assert.Equal(t, 0, estimate.Minutes)
	assert.InDelta(t, 0, estimate.DistanceKm, 0.001)
	assert.Equal(t, 40.0, estimate.AverageSpeedKmh)
}

func TestEstimateUsesHistoricalAverage(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

	repository := &stubRepository{
		latest: &busdata.TelemetryReport{
			Location: busdata.Location{Latitude: 11.3410, Longitude: 77.7172},
			Speed:    10,
		},
		history: []busdata.TelemetryReport{
			{Speed: 30},
			{Speed: 50},
			{Speed: 0},
		},
		stop: &busdata.Stop{
			PrimaryIdentifier: "stop-1",
			// Roughly 20km north
			Location: busdata.Location{Latitude: 11.5208, Longitude: 77.7172},
		},
	}

	estimate, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
	require.NoError(t, err)

	// Zero-speed samples are excluded from the mean
	assert.Equal(t, 40.0, estimate.AverageSpeedKmh)

	expectedMinutes := estimate.DistanceKm / 40 * 60 * 1.2
	assert.InDelta(t, expectedMinutes, float64(estimate.Minutes), 0.51)
	assert.WithinDuration(t, now.Add(time.Duration(expectedMinutes*float64(time.Minute))), estimate.EstimatedArrival, time.Second)
}

func TestEstimateFallsBackToCurrentSpeed(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

	repository := &stubRepository{
		latest: &busdata.TelemetryReport{
			Location: busdata.Location{Latitude: 11.3410, Longitude: 77.7172},
			Speed:    35,
		},
		stop: &busdata.Stop{
			PrimaryIdentifier: "stop-1",
			Location:          busdata.Location{Latitude: 11.4, Longitude: 77.8},
		},
	}

	estimate, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
	require.NoError(t, err)

	assert.Equal(t, 35.0, estimate.AverageSpeedKmh)
}

func TestEstimateSpeedFloor(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

	repository := &stubRepository{
		latest: &busdata.TelemetryReport{
			Location: busdata.Location{Latitude: 11.3410, Longitude: 77.7172},
			Speed:    0,
		},
		history: []busdata.TelemetryReport{
			{Speed: 0},
			{Speed: 0},
		},
		stop: &busdata.Stop{
			PrimaryIdentifier: "stop-1",
			Location:          busdata.Location{Latitude: 11.4, Longitude: 77.8},
		},
	}

	estimate, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
	require.NoError(t, err)

	assert.Equal(t, speedFloorKmh, estimate.AverageSpeedKmh)
}

func TestEstimateErrors(t *testing.T) {
	now := time.Date(2024, time.March, 10, 8, 30, 0, 0, time.UTC)

	t.Run("no telemetry", func(t *testing.T) {
		repository := &stubRepository{
			stop: &busdata.Stop{PrimaryIdentifier: "stop-1"},
		}

		_, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
		assert.ErrorIs(t, err, ErrNoTelemetry)
	})

	t.Run("unknown stop", func(t *testing.T) {
		repository := &stubRepository{
			latest: &busdata.TelemetryReport{},
		}

		_, err := newTestCalculator(repository, now).Estimate(context.Background(), "bus-42", "stop-1")
		assert.ErrorIs(t, err, ErrUnknownStop)
	})
}
