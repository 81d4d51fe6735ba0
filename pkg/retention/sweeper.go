package retention

import (
	"context"
	"time"

	"github.com/Dhinesh71/bustrackingsystem/pkg/telemetry"
	"github.com/rs/zerolog/log"
)

const DefaultHorizon = 7 * 24 * time.Hour
const DefaultInterval = 24 * time.Hour

// Sweeper prunes telemetry older than the retention horizon on a fixed
// schedule. It runs out-of-band from ingestion; a failed sweep is logged and
// retried on the next scheduled run, never immediately.
type Sweeper struct {
	Repository telemetry.Repository

	Horizon  time.Duration
	Interval time.Duration
}

func (s *Sweeper) Run() {
	log.Info().
		Str("horizon", s.Horizon.String()).
		Str("interval", s.Interval.String()).
		Msg("Starting telemetry retention sweeper")

	s.Sweep()

	for range time.Tick(s.Interval) {
		s.Sweep()
	}
}

// Sweep deletes every report older than the horizon. Re-running with nothing
// eligible deletes nothing.
func (s *Sweeper) Sweep() {
	cutOffTime := time.Now().Add(-s.Horizon)

	deleted, err := s.Repository.DeleteReportsBefore(context.Background(), cutOffTime)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sweep old telemetry, retrying on next run")
		return
	}

	if deleted != 0 {
		log.Info().Int64("deleted", deleted).Msgf("Swept telemetry older than %s", cutOffTime)
	}
}
