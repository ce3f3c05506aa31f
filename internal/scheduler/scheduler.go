// Package scheduler runs the periodic reminder trigger: a cron-driven timer
// with an explicit time zone that invokes the bulk dispatcher at the
// configured times of day. Overlap protection lives in the dispatcher
// itself, so a slow run simply causes the next tick to log and skip.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/verdant/go-plant-backend/internal/services"
)

// BulkRunner is the dispatcher operation the trigger invokes.
type BulkRunner interface {
	RunBulkReminders(ctx context.Context) (services.RunReport, error)
}

// Scheduler wires cron specs to the bulk reminder dispatcher.
type Scheduler struct {
	cron   *cron.Cron
	runner BulkRunner
}

// New constructs a Scheduler in the given location. The runner is invoked
// once per matching cron spec.
func New(loc *time.Location, runner BulkRunner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
	}
}

// AddReminderJob registers one cron spec (standard 5-field format, e.g.
// "0 9 * * *") that fires a bulk reminder run.
func (s *Scheduler) AddReminderJob(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		report, err := s.runner.RunBulkReminders(context.Background())
		switch {
		case errors.Is(err, services.ErrRunInProgress):
			log.Warn().Str("spec", spec).Msg("previous reminder run still in flight; tick skipped")
		case err != nil:
			log.Error().Err(err).Str("spec", spec).Msg("scheduled reminder run failed")
		default:
			log.Info().
				Str("spec", spec).
				Int("sent", report.Sent).
				Int("failed", report.Failed).
				Msg("scheduled reminder run completed")
		}
	})
	return err
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and returns a context that completes when any
// in-flight job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
