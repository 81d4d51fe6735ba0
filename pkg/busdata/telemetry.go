package busdata

import "time"

// TelemetryReport is one timestamped GPS+sensor reading from a vehicle. It is
// immutable once created, so a report is never updated after insert.
type TelemetryReport struct {
	PrimaryIdentifier string `groups:"basic"`

	VehicleRef string `groups:"basic"`
	DeviceRef  string `groups:"internal"`

	Location Location `groups:"basic"`
	Speed    float64  `groups:"basic"`
	Heading  float64  `groups:"basic"`

	Altitude *float64 `groups:"detailed"`
	Accuracy *float64 `groups:"detailed"`

	FuelLevel         *float64 `groups:"detailed"`
	EngineTemperature *float64 `groups:"detailed"`
	PassengerCount    *int     `groups:"detailed"`

	DoorStatus DoorStatus `groups:"detailed"`

	Timestamp  time.Time `groups:"basic"`
	RecordedAt time.Time `groups:"internal"`
}

type DoorStatus struct {
	Front bool `groups:"detailed" json:"front"`
	Rear  bool `groups:"detailed" json:"rear"`
}
