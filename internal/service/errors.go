package service

import (
	"errors"
	"fmt"
)

// Rule codes carried by ValidationError so callers can tell which booking
// rule or lifecycle constraint was violated.
const (
	RuleAdvanceNotice   = "advance_notice"
	RuleBookingHorizon  = "booking_horizon"
	RuleDuration        = "duration"
	RuleTopic           = "topic"
	RuleAvailability    = "availability"
	RuleSessionConflict = "session_conflict"
	RuleWeeklyLimit     = "weekly_limit"
	RuleTransition      = "illegal_transition"
	RuleSlotRange       = "slot_range"
	RuleRating          = "rating"
	RuleReviewGate      = "review_gate"
	RuleDuplicateReview = "duplicate_review"
)

// ValidationError is a permanent business rejection. Infrastructure
// failures (store unavailable etc.) are never wrapped in this type.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func newValidationError(rule, format string, args ...any) *ValidationError {
	return &ValidationError{
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFoundError signals that a referenced entity does not exist. Terminal,
// non-retryable, distinct from validation failures.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func newNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsValidation reports whether err is a business rejection.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
