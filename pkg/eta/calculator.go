package eta

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
)

var ErrNoTelemetry = errors.New("no telemetry recorded for vehicle")
var ErrUnknownStop = errors.New("unknown stop")

// Fixed 20% inflation to account for stops and traffic.
const bufferFactor = 1.2

// Fallback speed when neither current nor historical speed is usable.
const speedFloorKmh = 25.0

const averageSpeedWindow = 24 * time.Hour
const averageSpeedMaxSamples = 100

// Estimate is a point arrival estimate, not a trajectory model - no
// route-following or map-matching is performed.
type Estimate struct {
	VehicleRef string `json:"vehicle_ref"`
	StopRef    string `json:"stop_ref"`

	DistanceKm      float64 `json:"distance_km"`
	AverageSpeedKmh float64 `json:"average_speed_kmh"`

	Minutes          int       `json:"eta_minutes"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
}

type Calculator struct {
	repository telemetry.Repository

	now func() time.Time
}

func NewCalculator(repository telemetry.Repository) *Calculator {
	return &Calculator{
		repository: repository,
		now:        time.Now,
	}
}

func (c *Calculator) Estimate(ctx context.Context, vehicleRef string, stopRef string) (*Estimate, error) {
	report, err := c.repository.LatestReport(ctx, vehicleRef)
	if errors.Is(err, telemetry.ErrNotFound) {
		return nil, ErrNoTelemetry
	} else if err != nil {
		return nil, err
	}

	stop, err := c.repository.Stop(ctx, stopRef)
	if errors.Is(err, telemetry.ErrNotFound) {
		return nil, ErrUnknownStop
	} else if err != nil {
		return nil, err
	}

	distanceKm := report.Location.Distance(&stop.Location)

	averageSpeed, err := c.averageSpeed(ctx, vehicleRef)
	if err != nil {
		return nil, err
	}
	if averageSpeed <= 0 {
		averageSpeed = report.Speed
	}
	if averageSpeed <= 0 {
		averageSpeed = speedFloorKmh
	}

	bufferedMinutes := distanceKm / averageSpeed * 60 * bufferFactor

	now := c.now()

	return &Estimate{
		VehicleRef: vehicleRef,
		StopRef:    stopRef,

		DistanceKm:      distanceKm,
		AverageSpeedKmh: averageSpeed,

		Minutes:          int(math.Round(bufferedMinutes)),
		EstimatedArrival: now.Add(time.Duration(bufferedMinutes * float64(time.Minute))),
	}, nil
}

// averageSpeed is the mean of the positive speeds the vehicle itself recorded
// in the trailing window. Zero when no positive samples exist.
func (c *Calculator) averageSpeed(ctx context.Context, vehicleRef string) (float64, error) {
	since := c.now().Add(-averageSpeedWindow)

	reports, err := c.repository.RecentReports(ctx, vehicleRef, since, averageSpeedMaxSamples)
	if err != nil {
		return 0, err
	}

	var total float64
	var count int
	for _, report := range reports {
		if report.Speed > 0 {
			total += report.Speed
			count++
		}
	}

	if count == 0 {
		return 0, nil
	}

	return total / float64(count), nil
}
