package realtimehub

import (
	"fmt"
	"testing"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, subscriber *Subscriber, expected int) []OutboundMessage {
	t.Helper()

	var messages []OutboundMessage
	timeout := time.After(2 * time.Second)

	for len(messages) < expected {
		select {
		case message, open := <-subscriber.Receive():
			if !open {
				t.Fatalf("subscriber closed after %d of %d messages", len(messages), expected)
			}
			messages = append(messages, message)
		case <-timeout:
			t.Fatalf("timed out after %d of %d messages", len(messages), expected)
		}
	}

	return messages
}

func TestBroadcastUnfiltered(t *testing.T) {
	hub := NewHub()

	subscriber := hub.Register()
	defer subscriber.Close()

	hub.Broadcast(string(busdata.EventTypeTelemetryUpdate), []string{busdata.ChannelTelemetry}, map[string]string{"vehicle": "bus-1"})

	messages := drain(t, subscriber, 1)
	assert.Equal(t, string(busdata.EventTypeTelemetryUpdate), messages[0].Type)
	assert.False(t, messages[0].Timestamp.IsZero())
}

func TestBroadcastVehicleFilter(t *testing.T) {
	hub := NewHub()

	subscriber := hub.Register()
	defer subscriber.Close()
	subscriber.SetFilter([]string{busdata.VehicleChannel("bus-42")})

	for i := 0; i < 100; i++ {
		vehicleRef := fmt.Sprintf("bus-%d", 40+i%5)
		hub.Broadcast(
			string(busdata.EventTypeTelemetryUpdate),
			[]string{busdata.ChannelTelemetry, busdata.VehicleChannel(vehicleRef)},
			map[string]string{"vehicle": vehicleRef},
		)
	}

	messages := drain(t, subscriber, 20)
	for _, message := range messages {
		body := message.Data.(map[string]string)
		assert.Equal(t, "bus-42", body["vehicle"])
	}

	select {
	case message := <-subscriber.Receive():
		t.Fatalf("unexpected extra message: %+v", message)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastAlertsChannel(t *testing.T) {
	hub := NewHub()

	subscriber := hub.Register()
	defer subscriber.Close()
	subscriber.SetFilter([]string{busdata.ChannelAlerts})

	hub.Broadcast(string(busdata.EventTypeTelemetryUpdate), []string{busdata.ChannelTelemetry}, nil)
	hub.Broadcast(string(busdata.EventTypeAlert), []string{busdata.ChannelAlerts}, map[string]string{"title": "Low Fuel Level"})

	messages := drain(t, subscriber, 1)
	assert.Equal(t, string(busdata.EventTypeAlert), messages[0].Type)
}

func TestSetFilterReplaces(t *testing.T) {
	hub := NewHub()

	subscriber := hub.Register()
	defer subscriber.Close()

	subscriber.SetFilter([]string{busdata.VehicleChannel("bus-1")})
	subscriber.SetFilter([]string{busdata.VehicleChannel("bus-2")})

	hub.Broadcast("bus_update", []string{busdata.VehicleChannel("bus-1")}, map[string]string{"vehicle": "bus-1"})
	hub.Broadcast("bus_update", []string{busdata.VehicleChannel("bus-2")}, map[string]string{"vehicle": "bus-2"})

	messages := drain(t, subscriber, 1)
	body := messages[0].Data.(map[string]string)
	assert.Equal(t, "bus-2", body["vehicle"])
}

func TestSlowSubscriberDisconnected(t *testing.T) {
	hub := NewHub()

	slow := hub.Register()
	healthy := hub.Register()
	defer healthy.Close()
	healthy.SetFilter([]string{busdata.VehicleChannel("bus-9")})

	// Overflow the slow subscriber's queue without reading from it
	for i := 0; i < defaultQueueSize+10; i++ {
		hub.Broadcast("bus_update", []string{busdata.ChannelTelemetry}, i)
	}

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The slow subscriber's queue ends closed
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-slow.Receive():
			if !open {
				goto closed
			}
		case <-deadline:
			t.Fatal("slow subscriber queue never closed")
		}
	}
closed:

	// The healthy subscriber keeps receiving
	hub.Broadcast("bus_update", []string{busdata.VehicleChannel("bus-9")}, "after")
	messages := drain(t, healthy, 1)
	assert.Equal(t, "after", messages[0].Data)
}

func TestCloseIdempotent(t *testing.T) {
	hub := NewHub()

	subscriber := hub.Register()
	subscriber.Close()
	subscriber.Close()

	assert.Equal(t, 0, hub.SubscriberCount())

	// Broadcast after close must not panic
	hub.Broadcast("bus_update", []string{busdata.ChannelTelemetry}, nil)
}
