package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/notify"
)

// Page is one page of a user's sessions.
type Page struct {
	Sessions []*model.Session `json:"sessions"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

const defaultPageSize = 20

// SessionService orchestrates the validator against the stores and owns the
// side-effecting lifecycle operations.
type SessionService struct {
	sessions     model.SessionRepository
	availability model.AvailabilityStore
	locker       model.MentorLocker
	notifier     notify.Enqueuer
	policy       SchedulingPolicy
	loc          *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

func NewSessionService(
	sessions model.SessionRepository,
	availability model.AvailabilityStore,
	locker model.MentorLocker,
	notifier notify.Enqueuer,
	policy SchedulingPolicy,
	loc *time.Location,
	logger *zap.Logger,
) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	return &SessionService{
		sessions:     sessions,
		availability: availability,
		locker:       locker,
		notifier:     notifier,
		policy:       policy,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// BookSession validates the request and persists a new session in scheduled
// status. Validation and insert run under the per-mentor lock so two
// concurrent bookings for the same mentor cannot both pass the conflict
// check.
func (s *SessionService) BookSession(ctx context.Context, req BookingRequest) (*model.Session, error) {
	var session *model.Session

	err := s.locker.WithMentorLock(ctx, req.MentorID, func(ctx context.Context, sessions model.SessionRepository) error {
		validator := NewValidator(s.availability, sessions, s.policy, s.loc)
		validator.Now = s.now

		if err := validator.ValidateBooking(ctx, req); err != nil {
			return err
		}

		session = &model.Session{
			ID:              uuid.New(),
			MentorID:        req.MentorID,
			MenteeID:        req.MenteeID,
			StartDateTime:   req.StartDateTime,
			DurationMinutes: req.DurationMinutes,
			Topic:           strings.TrimSpace(req.Topic),
			Status:          model.SessionStatusScheduled,
		}

		return sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session booked",
		zap.String("session_id", session.ID.String()),
		zap.String("mentor_id", session.MentorID.String()),
		zap.String("mentee_id", session.MenteeID.String()),
		zap.Time("start", session.StartDateTime),
		zap.Int("duration_minutes", session.DurationMinutes),
	)

	s.notifier.Enqueue(notify.Event{
		Type:    notify.EventSessionBooked,
		Payload: sessionPayload(session),
	})

	return session, nil
}

// GetSession returns a session by ID.
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newNotFoundError("session", sessionID.String())
	}
	return session, nil
}

// GetUserSessions returns sessions where the user is mentor or mentee,
// most recent start first.
func (s *SessionService) GetUserSessions(ctx context.Context, userID uuid.UUID, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = defaultPageSize
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	total, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Page{
		Sessions: sessions,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// StartSession moves a scheduled session into progress.
func (s *SessionService) StartSession(ctx context.Context, sessionID, actorID uuid.UUID) (*model.Session, error) {
	return s.transition(ctx, sessionID, model.SessionStatusInProgress, notify.EventSessionStarted, nil)
}

// CompleteSession finishes a session in progress and attaches the actor's
// notes to their side of the record.
func (s *SessionService) CompleteSession(ctx context.Context, sessionID, actorID uuid.UUID, notes string) (*model.Session, error) {
	return s.transition(ctx, sessionID, model.SessionStatusCompleted, notify.EventSessionCompleted, func(session *model.Session) {
		if notes == "" {
			return
		}
		if actorID == session.MentorID {
			session.MentorNotes = &notes
		} else {
			session.MenteeNotes = &notes
		}
	})
}

// CancelSession cancels a session and records the reason.
func (s *SessionService) CancelSession(ctx context.Context, sessionID, actorID uuid.UUID, reason string) (*model.Session, error) {
	return s.transition(ctx, sessionID, model.SessionStatusCancelled, notify.EventSessionCancelled, func(session *model.Session) {
		if reason != "" {
			session.CancelReason = &reason
		}
	})
}

// MarkNoShow records that the mentee never turned up.
func (s *SessionService) MarkNoShow(ctx context.Context, sessionID, actorID uuid.UUID) (*model.Session, error) {
	return s.transition(ctx, sessionID, model.SessionStatusNoShow, notify.EventSessionNoShow, nil)
}

// transition loads the session, checks the lifecycle table, applies the
// mutation and persists. One write, at most one notification.
func (s *SessionService) transition(ctx context.Context, sessionID uuid.UUID, to model.SessionStatus, eventType string, mutate func(*model.Session)) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newNotFoundError("session", sessionID.String())
	}

	if err := ValidateTransition(session.Status, to); err != nil {
		return nil, err
	}

	session.Status = to
	if mutate != nil {
		mutate(session)
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Session status changed",
		zap.String("session_id", session.ID.String()),
		zap.String("status", string(to)),
	)

	s.notifier.Enqueue(notify.Event{
		Type:    eventType,
		Payload: sessionPayload(session),
	})

	return session, nil
}

func sessionPayload(session *model.Session) map[string]string {
	return map[string]string{
		"session_id":     session.ID.String(),
		"mentor_id":      session.MentorID.String(),
		"mentee_id":      session.MenteeID.String(),
		"start_datetime": session.StartDateTime.Format(time.RFC3339),
		"status":         string(session.Status),
	}
}
