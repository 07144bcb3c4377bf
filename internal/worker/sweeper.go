package worker

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// AttemptSweeper is the part of the player service the sweeper drives.
type AttemptSweeper interface {
	Sweep(retention time.Duration) int
}

// Sweeper periodically drops finished attempts nobody is looking at anymore.
type Sweeper struct {
	scheduler *gocron.Scheduler
	target    AttemptSweeper
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

func NewSweeper(target AttemptSweeper, interval, retention time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		retention: retention,
		log:       log.With().Str("component", "sweeper").Logger(),
	}
}

// Start schedules the sweep and runs the scheduler in the background.
func (s *Sweeper) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunOnce); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info().Dur("interval", s.interval).Dur("retention", s.retention).Msg("sweeper started")
	return nil
}

// Stop terminates all scheduled jobs.
func (s *Sweeper) Stop() {
	s.scheduler.Stop()
}

// RunOnce performs one sweep.
func (s *Sweeper) RunOnce() {
	removed := s.target.Sweep(s.retention)
	s.log.Debug().Int("removed", removed).Msg("sweep finished")
}
