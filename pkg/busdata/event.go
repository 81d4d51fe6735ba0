package busdata

import (
	"fmt"
	"time"
)

// Event is the envelope pushed onto the events queue and fanned out to live
// subscribers.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Channels  []string
	Body      interface{}
}

type EventType string

const (
	EventTypeTelemetryUpdate EventType = "telemetry_update"
	EventTypeAlert           EventType = "alert"
	EventTypeBusUpdate       EventType = "bus_update"
)

// Subscription channel names live clients can filter on.
const (
	ChannelTelemetry = "telemetry"
	ChannelAlerts    = "alerts"
)

func VehicleChannel(vehicleRef string) string {
	return fmt.Sprintf("vehicle_%s", vehicleRef)
}
