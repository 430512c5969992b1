package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AvailabilityStore is the read contract the booking validator consumes.
type AvailabilityStore interface {
	// FindActiveSlots returns a mentor's active recurring slots for one weekday.
	FindActiveSlots(ctx context.Context, mentorID uuid.UUID, weekday time.Weekday) ([]*AvailabilitySlot, error)
}

// SessionStore is the read contract the booking validator consumes.
type SessionStore interface {
	// FindOverlapping returns the mentor's non-cancelled sessions whose
	// interval intersects [from, to].
	FindOverlapping(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*Session, error)
	// CountInRange counts the mentor's sessions with the given status
	// starting in [from, to).
	CountInRange(ctx context.Context, mentorID uuid.UUID, from, to time.Time, status SessionStatus) (int, error)
}

// SessionRepository is the full persistence contract for sessions.
type SessionRepository interface {
	SessionStore
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, session *Session) error
	// ListByUser returns sessions where the user is mentor or mentee,
	// ordered by start_datetime descending.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Session, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// ListStartingBetween returns scheduled sessions starting in [from, to).
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Session, error)
}

// AvailabilityRepository is the full persistence contract for availability.
type AvailabilityRepository interface {
	AvailabilityStore
	ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]*AvailabilitySlot, error)
	// ReplaceForMentor atomically swaps a mentor's recurring slots.
	ReplaceForMentor(ctx context.Context, mentorID uuid.UUID, slots []AvailabilitySlot) ([]*AvailabilitySlot, error)
}

// ReviewRepository is the persistence contract for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetBySessionAndReviewer(ctx context.Context, sessionID, reviewerID uuid.UUID) (*Review, error)
}

// MentorLocker serializes booking attempts per mentor. fn runs with a
// session repository bound to the serialization boundary; its writes become
// visible only if fn returns nil.
type MentorLocker interface {
	WithMentorLock(ctx context.Context, mentorID uuid.UUID, fn func(ctx context.Context, sessions SessionRepository) error) error
}
