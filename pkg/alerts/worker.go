package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/busdata"
	"github.com/Dhinesh71/bustrackingsystem/pkg/ingest"
	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
)

// BatchConsumer evaluates the alert rules against accepted reports from the
// alerts queue. Persistence failures are logged and never propagated - the
// telemetry write that triggered evaluation has long been acknowledged.
type BatchConsumer struct {
	repository telemetry.Repository
	publisher  *ingest.Publisher

	rules []Rule
}

func NewBatchConsumer(repository telemetry.Repository, publisher *ingest.Publisher) *BatchConsumer {
	return &BatchConsumer{
		repository: repository,
		publisher:  publisher,
		rules:      DefaultRules,
	}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var report *busdata.TelemetryReport
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			log.Error().Err(err).Msg("Failed to decode report for alert evaluation")
			continue
		}

		consumer.evaluate(report)
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack alert evaluation")
		}
	}
}

func (consumer *BatchConsumer) evaluate(report *busdata.TelemetryReport) {
	for _, alert := range EvaluateReport(report, consumer.rules) {
		err := consumer.repository.InsertAlert(context.Background(), &alert)
		if err != nil {
			log.Error().Err(err).
				Str("vehicle", alert.VehicleRef).
				Str("type", string(alert.AlertType)).
				Msg("Failed to persist alert")
			continue
		}

		log.Info().
			Str("vehicle", alert.VehicleRef).
			Str("type", string(alert.AlertType)).
			Str("severity", string(alert.Severity)).
			Msg("Alert raised")

		consumer.publisher.PublishEvent(busdata.Event{
			Type:      busdata.EventTypeAlert,
			Timestamp: time.Now(),
			Channels:  []string{busdata.ChannelAlerts},
			Body:      alert,
		})
	}
}
