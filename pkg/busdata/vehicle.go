package busdata

import "time"

type Vehicle struct {
	PrimaryIdentifier string `groups:"basic"`
	Number            string `groups:"basic"`

	RouteRef string `groups:"basic"`

	Capacity  int `groups:"basic"`
	Occupancy int `groups:"basic"`

	FuelLevel float64 `groups:"internal"`

	Status VehicleStatus `groups:"basic"`

	Location Location `groups:"basic"`
	Speed    float64  `groups:"basic"`
	Heading  float64  `groups:"basic"`

	DeviceRef string `groups:"internal"`

	LastUpdated time.Time `groups:"basic"`
	LastSeen    time.Time `groups:"internal"`
}

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusBreakdown   VehicleStatus = "breakdown"
)
