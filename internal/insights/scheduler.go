package insights

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultPurgeSpec fires at local midnight. Streak results change with the
// date, so cached dashboards are dropped when the day rolls over.
const DefaultPurgeSpec = "0 0 0 * * *"

// Scheduler runs the service's periodic maintenance jobs.
type Scheduler struct {
	Cron    *cron.Cron
	service *Service
	logger  zerolog.Logger
}

// NewScheduler creates a Scheduler that evaluates cron specs, with a seconds
// field, in loc.
func NewScheduler(service *Service, loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		service: service,
		logger:  logger,
	}
}

// RegisterPurge schedules PurgeAll on spec. An empty spec uses DefaultPurgeSpec.
func (s *Scheduler) RegisterPurge(spec string) error {
	if spec == "" {
		spec = DefaultPurgeSpec
	}
	if _, err := s.Cron.AddFunc(spec, s.service.PurgeAll); err != nil {
		return fmt.Errorf("register cache purge: %w", err)
	}
	s.logger.Debug().Str("spec", spec).Msg("cache purge scheduled")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}
