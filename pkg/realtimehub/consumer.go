package realtimehub

import (
	"encoding/json"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

// EventsBatchConsumer drains the events queue into the hub.
type EventsBatchConsumer struct {
	hub *Hub
}

func NewEventsBatchConsumer(hub *Hub) *EventsBatchConsumer {
	return &EventsBatchConsumer{hub: hub}
}

func (consumer *EventsBatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var event busdata.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			log.Error().Err(err).Msg("Failed to decode event")
			continue
		}

		consumer.hub.Broadcast(string(event.Type), event.Channels, event.Body)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}
