package app

import (
	"context"
	"time"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/notify"
	"go.uber.org/zap"
)

// Reminder runs background sweeps over upcoming sessions and emits reminder
// notifications shortly before each session starts.
type Reminder struct {
	sessions    model.SessionRepository
	notifier    notify.Enqueuer
	logger      *zap.Logger
	leadMinutes int
	interval    time.Duration
	stopChan    chan struct{}
}

func NewReminder(sessions model.SessionRepository, notifier notify.Enqueuer, logger *zap.Logger, leadMinutes int) *Reminder {
	if leadMinutes <= 0 {
		leadMinutes = 60
	}
	return &Reminder{
		sessions:    sessions,
		notifier:    notifier,
		logger:      logger,
		leadMinutes: leadMinutes,
		interval:    5 * time.Minute,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (r *Reminder) Start(ctx context.Context) {
	r.logger.Info("Starting reminder sweep",
		zap.Int("lead_minutes", r.leadMinutes))

	go r.runSweepTask(ctx)
}

// Stop stops the sweep loop.
func (r *Reminder) Stop() {
	close(r.stopChan)
}

func (r *Reminder) runSweepTask(ctx context.Context) {
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(ctx)
		case <-r.stopChan:
			r.logger.Info("Reminder sweep stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Reminder sweep cancelled")
			return
		}
	}
}

// sweep emits a reminder for every scheduled session starting within the
// lead window of the current tick. The window matches the tick interval so
// each session is picked up by exactly one sweep.
func (r *Reminder) sweep(ctx context.Context) {
	now := time.Now()
	from := now.Add(time.Duration(r.leadMinutes) * time.Minute)
	to := from.Add(r.interval)

	sessions, err := r.sessions.ListStartingBetween(ctx, from, to)
	if err != nil {
		r.logger.Error("Failed to list upcoming sessions", zap.Error(err))
		return
	}

	for _, session := range sessions {
		r.notifier.Enqueue(notify.Event{
			Type: notify.EventSessionReminder,
			Payload: map[string]string{
				"session_id":     session.ID.String(),
				"mentor_id":      session.MentorID.String(),
				"mentee_id":      session.MenteeID.String(),
				"start_datetime": session.StartDateTime.Format(time.RFC3339),
			},
		})
	}

	if len(sessions) > 0 {
		r.logger.Info("Session reminders enqueued", zap.Int("count", len(sessions)))
	}
}
