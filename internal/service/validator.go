package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/vijanahub/mentor-service/internal/model"
)

const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 240
	MinTopicLength     = 5
	MaxTopicLength     = 255
)

// SchedulingPolicy is the immutable booking policy the validator applies.
type SchedulingPolicy struct {
	MinAdvanceHours      int
	MaxAdvanceDays       int
	MinSessionGapMinutes int
	MaxSessionsPerWeek   int
}

func DefaultSchedulingPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		MinAdvanceHours:      2,
		MaxAdvanceDays:       90,
		MinSessionGapMinutes: 30,
		MaxSessionsPerWeek:   10,
	}
}

// BookingRequest is a proposed session booking.
type BookingRequest struct {
	MentorID        uuid.UUID
	MenteeID        uuid.UUID
	StartDateTime   time.Time
	DurationMinutes int
	Topic           string
}

// Validator decides whether a proposed booking is legal. It reads the
// stores but never writes; all side effects belong to the services.
type Validator struct {
	availability model.AvailabilityStore
	sessions     model.SessionStore
	policy       SchedulingPolicy
	loc          *time.Location

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func NewValidator(availability model.AvailabilityStore, sessions model.SessionStore, policy SchedulingPolicy, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{
		availability: availability,
		sessions:     sessions,
		policy:       policy,
		loc:          loc,
		Now:          time.Now,
	}
}

// ValidateBooking runs the full booking pipeline. Checks run cheapest
// first and fail fast: the first violated rule is the one reported.
func (v *Validator) ValidateBooking(ctx context.Context, req BookingRequest) error {
	if err := v.checkTimeWindow(req); err != nil {
		return err
	}
	if err := v.checkAvailability(ctx, req); err != nil {
		return err
	}
	if err := v.checkConflicts(ctx, req); err != nil {
		return err
	}
	return v.checkWeeklyLimit(ctx, req)
}

func (v *Validator) checkTimeWindow(req BookingRequest) error {
	now := v.Now()

	earliest := now.Add(time.Duration(v.policy.MinAdvanceHours) * time.Hour)
	if req.StartDateTime.Before(earliest) {
		return newValidationError(RuleAdvanceNotice,
			"sessions must be booked at least %d hours in advance (earliest start %s)",
			v.policy.MinAdvanceHours, earliest.In(v.loc).Format(time.RFC3339))
	}

	latest := now.AddDate(0, 0, v.policy.MaxAdvanceDays)
	if req.StartDateTime.After(latest) {
		return newValidationError(RuleBookingHorizon,
			"sessions cannot be booked more than %d days ahead (latest start %s)",
			v.policy.MaxAdvanceDays, latest.In(v.loc).Format(time.RFC3339))
	}

	if req.DurationMinutes < MinDurationMinutes || req.DurationMinutes > MaxDurationMinutes {
		return newValidationError(RuleDuration,
			"session duration must be between %d and %d minutes, got %d",
			MinDurationMinutes, MaxDurationMinutes, req.DurationMinutes)
	}

	topicLen := utf8.RuneCountInString(strings.TrimSpace(req.Topic))
	if topicLen < MinTopicLength || topicLen > MaxTopicLength {
		return newValidationError(RuleTopic,
			"topic must be between %d and %d characters, got %d",
			MinTopicLength, MaxTopicLength, topicLen)
	}

	return nil
}

// checkAvailability requires the requested interval to fit entirely inside
// a single availability slot. A request spanning two adjacent slots is
// rejected even if their union covers it.
func (v *Validator) checkAvailability(ctx context.Context, req BookingRequest) error {
	local := req.StartDateTime.In(v.loc)
	weekday := local.Weekday()
	startMinute := local.Hour()*60 + local.Minute()
	endMinute := startMinute + req.DurationMinutes

	slots, err := v.availability.FindActiveSlots(ctx, req.MentorID, weekday)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}

	for _, slot := range slots {
		if slot.Contains(startMinute, endMinute) {
			return nil
		}
	}

	if len(slots) == 0 {
		return newValidationError(RuleAvailability,
			"mentor has no availability on %s", weekday)
	}

	ranges := make([]string, 0, len(slots))
	for _, slot := range slots {
		ranges = append(ranges, slot.TimeRange())
	}
	return newValidationError(RuleAvailability,
		"requested time must fall within a single availability window on %s: %s",
		weekday, strings.Join(ranges, ", "))
}

// checkConflicts expands the requested interval by the minimum gap on both
// ends, so even strictly adjacent sessions are rejected.
func (v *Validator) checkConflicts(ctx context.Context, req BookingRequest) error {
	gap := time.Duration(v.policy.MinSessionGapMinutes) * time.Minute
	searchStart := req.StartDateTime.Add(-gap)
	searchEnd := req.StartDateTime.Add(time.Duration(req.DurationMinutes)*time.Minute + gap)

	conflicts, err := v.sessions.FindOverlapping(ctx, req.MentorID, searchStart, searchEnd)
	if err != nil {
		return fmt.Errorf("find overlapping sessions: %w", err)
	}

	if len(conflicts) > 0 {
		return newValidationError(RuleSessionConflict,
			"conflicts with session %s: the mentor needs at least %d minutes between sessions",
			conflicts[0].ID, v.policy.MinSessionGapMinutes)
	}

	return nil
}

func (v *Validator) checkWeeklyLimit(ctx context.Context, req BookingRequest) error {
	weekStart, weekEnd := isoWeekBounds(req.StartDateTime, v.loc)

	count, err := v.sessions.CountInRange(ctx, req.MentorID, weekStart, weekEnd, model.SessionStatusScheduled)
	if err != nil {
		return fmt.Errorf("count sessions in week: %w", err)
	}

	if count >= v.policy.MaxSessionsPerWeek {
		return newValidationError(RuleWeeklyLimit,
			"mentor already has %d of %d sessions scheduled for that week",
			count, v.policy.MaxSessionsPerWeek)
	}

	return nil
}

// ValidateTransition checks a lifecycle step against the transition table.
func ValidateTransition(from, to model.SessionStatus) error {
	if !from.CanTransitionTo(to) {
		return newValidationError(RuleTransition,
			"cannot move session from %s to %s", from, to)
	}
	return nil
}

// isoWeekBounds returns the Monday 00:00 opening the ISO week containing t
// and the Monday 00:00 that closes it, in the given location.
func isoWeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -daysSinceMonday)
	return monday, monday.AddDate(0, 0, 7)
}
