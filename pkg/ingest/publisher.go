package ingest

import (
	"encoding/json"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

const AlertsQueueName = "alerts-queue"
const EventsQueueName = "events-queue"

// Publisher dispatches the side effects of an accepted telemetry write - rule
// evaluation and live broadcast - as queue messages. Publish failures are
// logged and swallowed: the report is already durably accepted by the time
// these fire.
type Publisher struct {
	AlertsQueue rmq.Queue
	EventsQueue rmq.Queue
}

func NewPublisher(queueConnection rmq.Connection) (*Publisher, error) {
	alertsQueue, err := queueConnection.OpenQueue(AlertsQueueName)
	if err != nil {
		return nil, err
	}

	eventsQueue, err := queueConnection.OpenQueue(EventsQueueName)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		AlertsQueue: alertsQueue,
		EventsQueue: eventsQueue,
	}, nil
}

// ReportAccepted is called after the telemetry write has been acknowledged.
func (p *Publisher) ReportAccepted(report *busdata.TelemetryReport, vehicle *busdata.Vehicle) {
	reportBytes, _ := json.Marshal(report)
	if err := p.AlertsQueue.PublishBytes(reportBytes); err != nil {
		log.Error().Err(err).Str("vehicle", report.VehicleRef).Msg("Failed to publish report for alert evaluation")
	}

	p.PublishEvent(busdata.Event{
		Type:      busdata.EventTypeTelemetryUpdate,
		Timestamp: time.Now(),
		Channels:  []string{busdata.ChannelTelemetry, busdata.VehicleChannel(report.VehicleRef)},
		Body:      report,
	})

	p.PublishEvent(busdata.Event{
		Type:      busdata.EventTypeBusUpdate,
		Timestamp: time.Now(),
		Channels:  []string{busdata.ChannelTelemetry, busdata.VehicleChannel(report.VehicleRef)},
		Body:      vehicle,
	})
}

func (p *Publisher) PublishEvent(event busdata.Event) {
	eventBytes, _ := json.Marshal(event)
	if err := p.EventsQueue.PublishBytes(eventBytes); err != nil {
		log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to publish event")
	}
}
