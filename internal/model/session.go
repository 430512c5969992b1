package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
	SessionStatusNoShow     SessionStatus = "no_show"
)

// allowedTransitions is the single source of truth for the session lifecycle.
// A status missing from the map is terminal.
var allowedTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusScheduled:  {SessionStatusInProgress, SessionStatusCancelled, SessionStatusNoShow},
	SessionStatusInProgress: {SessionStatusCompleted, SessionStatusCancelled},
}

// CanTransitionTo reports whether moving from s to target is a legal lifecycle step.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s SessionStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

type Session struct {
	ID              uuid.UUID     `json:"id"`
	MentorID        uuid.UUID     `json:"mentor_id"`
	MenteeID        uuid.UUID     `json:"mentee_id"`
	StartDateTime   time.Time     `json:"start_datetime"`
	DurationMinutes int           `json:"duration_minutes"`
	Topic           string        `json:"topic"`
	Status          SessionStatus `json:"status"`
	MentorNotes     *string       `json:"mentor_notes,omitempty"`
	MenteeNotes     *string       `json:"mentee_notes,omitempty"`
	CancelReason    *string       `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// EndDateTime returns the moment the session ends.
func (s *Session) EndDateTime() time.Time {
	return s.StartDateTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
}
