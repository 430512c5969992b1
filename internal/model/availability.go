package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is one recurring weekly interval during which a mentor
// accepts bookings. Times are minutes from midnight in the platform's
// operating timezone.
type AvailabilitySlot struct {
	ID          uuid.UUID    `json:"id"`
	MentorID    uuid.UUID    `json:"mentor_id"`
	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Contains reports whether the interval [startMinute, endMinute) fits
// entirely inside this slot.
func (a *AvailabilitySlot) Contains(startMinute, endMinute int) bool {
	return startMinute >= a.StartMinute && endMinute <= a.EndMinute
}

// TimeRange renders the slot as "09:00-17:00" for user-facing messages.
func (a *AvailabilitySlot) TimeRange() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		a.StartMinute/60, a.StartMinute%60, a.EndMinute/60, a.EndMinute%60)
}
