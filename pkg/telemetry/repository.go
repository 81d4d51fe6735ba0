package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// Repository is the narrow persistence interface the core works against. The
// backing store provides per-document atomicity for the vehicle state update;
// the core itself takes no locks.
type Repository interface {
	InsertReport(ctx context.Context, report *busdata.TelemetryReport) error
	LatestReport(ctx context.Context, vehicleRef string) (*busdata.TelemetryReport, error)
	RecentReports(ctx context.Context, vehicleRef string, since time.Time, limit int64) ([]busdata.TelemetryReport, error)
	DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	Vehicle(ctx context.Context, vehicleRef string) (*busdata.Vehicle, error)
	Vehicles(ctx context.Context) ([]busdata.Vehicle, error)
	UpdateVehicleFromReport(ctx context.Context, report *busdata.TelemetryReport) error
	UpdateVehicleLastSeen(ctx context.Context, vehicleRef string, at time.Time) error

	Stop(ctx context.Context, stopRef string) (*busdata.Stop, error)

	InsertAlert(ctx context.Context, alert *busdata.Alert) error

	DeviceKey(ctx context.Context, key string) (*busdata.DeviceKey, error)
	InsertDeviceKey(ctx context.Context, deviceKey *busdata.DeviceKey) error
	RecordDeviceKeyUsage(ctx context.Context, key string, at time.Time) error
}
