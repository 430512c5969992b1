package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/model"
)

const minutesPerDay = 24 * 60

// AvailabilityService manages a mentor's recurring weekly slots.
type AvailabilityService struct {
	availability model.AvailabilityRepository
	logger       *zap.Logger
}

func NewAvailabilityService(availability model.AvailabilityRepository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		availability: availability,
		logger:       logger,
	}
}

// SetAvailability replaces a mentor's recurring weekly slots.
func (s *AvailabilityService) SetAvailability(ctx context.Context, mentorID uuid.UUID, slots []model.AvailabilitySlot) ([]*model.AvailabilitySlot, error) {
	for _, slot := range slots {
		if slot.Weekday < 0 || slot.Weekday > 6 {
			return nil, newValidationError(RuleSlotRange,
				"weekday must be between 0 (Sunday) and 6 (Saturday), got %d", slot.Weekday)
		}
		if slot.StartMinute < 0 || slot.EndMinute > minutesPerDay || slot.StartMinute >= slot.EndMinute {
			return nil, newValidationError(RuleSlotRange,
				"slot start must come before end within a single day, got %d-%d",
				slot.StartMinute, slot.EndMinute)
		}
	}

	saved, err := s.availability.ReplaceForMentor(ctx, mentorID, slots)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Availability updated",
		zap.String("mentor_id", mentorID.String()),
		zap.Int("slot_count", len(saved)),
	)

	return saved, nil
}

// GetAvailability returns all of a mentor's slots.
func (s *AvailabilityService) GetAvailability(ctx context.Context, mentorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	return s.availability.ListByMentor(ctx, mentorID)
}
