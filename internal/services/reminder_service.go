// Package services – ReminderService
//
// This file implements the reminder dispatcher: the batch job that scans
// every plant whose due date has passed, generates a personality- and
// status-dependent message, delivers it to the owner's notification channel,
// and records the message. One plant's delivery failure never aborts the
// rest of the run.
//
// Concurrency: runs are serialized by an atomic guard, so the periodic
// trigger and the on-demand admin trigger cannot overlap. Cancelling the
// context stops the run between plants; unprocessed plants remain due and
// are picked up by the next run.
package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/verdant/go-plant-backend/internal/domain"
	"github.com/verdant/go-plant-backend/internal/notify"
	"github.com/verdant/go-plant-backend/internal/plantmsg"
	"github.com/verdant/go-plant-backend/internal/repo"
	"github.com/verdant/go-plant-backend/internal/watering"
)

var (
	// reminderRuns counts bulk runs by outcome ("completed", "cancelled",
	// "busy", "error").
	reminderRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Total number of bulk reminder runs.",
		},
		[]string{"outcome"},
	)

	// remindersSent counts delivered reminders by watering status.
	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of watering reminders delivered.",
		},
		[]string{"status"},
	)

	// remindersFailed counts reminders that could not be delivered.
	remindersFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_failed_total",
			Help: "Total number of watering reminders that failed to deliver.",
		},
	)
)

func init() {
	prometheus.MustRegister(reminderRuns, remindersSent, remindersFailed)
}

// RunReport summarizes one bulk reminder run.
type RunReport struct {
	Visited int `json:"visited"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// TestReport summarizes an on-demand test send for one user.
type TestReport struct {
	Sent   int      `json:"sent"`
	Plants []string `json:"plants"`
}

// ReminderService dispatches watering reminders through an injected
// notification channel.
type ReminderService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier delivers messages; always injected, never a global.
	Notifier notify.Notifier
	// SendDelay is the pause between consecutive sends, a courtesy toward
	// the notification provider's rate limits.
	SendDelay time.Duration
	// TestCap bounds how many plants a test send covers.
	TestCap int
	// Now supplies the current time; defaults to time.Now.
	Now func() time.Time

	running int32
}

// NewReminderService constructs a ReminderService with a 100ms inter-send
// delay and a test cap of 5 plants.
func NewReminderService(db *gorm.DB, n notify.Notifier) *ReminderService {
	return &ReminderService{
		DB:        db,
		Notifier:  n,
		SendDelay: 100 * time.Millisecond,
		TestCap:   5,
		Now:       time.Now,
	}
}

func (s *ReminderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RunBulkReminders processes every eligible plant exactly once: non-archived,
// due date passed, owner notifications enabled. Per plant it classifies the
// status, selects a message, attempts delivery, and on success persists a
// WATERING_REMINDER record. Returns ErrRunInProgress when a previous run has
// not finished.
func (s *ReminderService) RunBulkReminders(ctx context.Context) (RunReport, error) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		reminderRuns.WithLabelValues("busy").Inc()
		return RunReport{}, ErrRunInProgress
	}
	defer atomic.StoreInt32(&s.running, 0)

	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "RunBulkReminders")
	defer span.End()

	now := s.now()
	plants, err := repo.ListDuePlants(ctx, s.DB, now)
	if err != nil {
		reminderRuns.WithLabelValues("error").Inc()
		return RunReport{}, err
	}
	span.SetAttributes(attribute.Int("reminders.candidates", len(plants)))

	var report RunReport
	for i := range plants {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("remaining", len(plants)-report.Visited).
				Msg("bulk reminder run cancelled; remaining plants stay due")
			reminderRuns.WithLabelValues("cancelled").Inc()
			return report, err
		}

		plant := &plants[i]
		report.Visited++
		if s.remind(ctx, plant, now) {
			report.Sent++
		} else {
			report.Failed++
		}

		if s.SendDelay > 0 && i < len(plants)-1 {
			if err := sleepCtx(ctx, s.SendDelay); err != nil {
				reminderRuns.WithLabelValues("cancelled").Inc()
				return report, err
			}
		}
	}

	reminderRuns.WithLabelValues("completed").Inc()
	log.Info().
		Int("visited", report.Visited).
		Int("sent", report.Sent).
		Int("failed", report.Failed).
		Msg("bulk reminder run finished")
	return report, nil
}

// remind handles a single plant: classify, generate, deliver, record.
// Returns whether delivery succeeded. Failures are logged and swallowed so
// the batch continues.
func (s *ReminderService) remind(ctx context.Context, plant *domain.Plant, now time.Time) bool {
	status := watering.Status(plant.NextWateringAt, now)
	body := plantmsg.Reminder(plant.Personality, status.Status)
	text := "🌿 *" + plant.Nickname + ":*\n" + body

	lg := log.With().
		Str("plant_id", plant.ID).
		Str("user_id", plant.UserID).
		Str("status", string(status.Status)).
		Logger()

	if err := s.Notifier.Send(ctx, plant.User.TelegramID, text); err != nil {
		remindersFailed.Inc()
		lg.Warn().Err(err).Msg("reminder delivery failed; continuing")
		return false
	}

	if _, err := repo.CreatePlantMessage(ctx, s.DB, plant.ID, domain.MessageWateringReminder, body); err != nil {
		// Delivered but not recorded; the next due scan will retry the plant.
		lg.Error().Err(err).Msg("reminder delivered but message record failed")
		return false
	}

	remindersSent.WithLabelValues(string(status.Status)).Inc()
	lg.Debug().Msg("reminder sent")
	return true
}

// SendTestReminders delivers a capped batch of "soon" reminders to one
// user's plants regardless of their due dates. Used by the admin trigger to
// verify the notification path end to end.
func (s *ReminderService) SendTestReminders(ctx context.Context, userID string) (TestReport, error) {
	tr := otel.Tracer("services/ReminderService")
	ctx, span := tr.Start(ctx, "SendTestReminders",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TestReport{Plants: []string{}}, ErrUserNotFound
		}
		return TestReport{Plants: []string{}}, err
	}

	plants, err := repo.ListPlants(ctx, s.DB, userID, false)
	if err != nil {
		return TestReport{Plants: []string{}}, err
	}
	limit := s.TestCap
	if limit <= 0 {
		limit = 5
	}
	if len(plants) > limit {
		plants = plants[:limit]
	}

	report := TestReport{Plants: []string{}}
	for i := range plants {
		body := plantmsg.Reminder(plants[i].Personality, watering.StatusSoon)
		text := "🌿 *" + plants[i].Nickname + ":*\n" + body
		if err := s.Notifier.Send(ctx, user.TelegramID, text); err != nil {
			continue
		}
		report.Sent++
		report.Plants = append(report.Plants, plants[i].Nickname)
	}
	return report, nil
}

// sleepCtx pauses for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
