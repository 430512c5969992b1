package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/repository/base"
)

type AvailabilityRepository struct {
	db   base.Querier
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{db: pool, pool: pool}
}

const availabilityColumns = `id, mentor_id, weekday, start_minute, end_minute, is_active, created_at, updated_at`

// FindActiveSlots returns a mentor's active slots for one weekday.
func (r *AvailabilityRepository) FindActiveSlots(ctx context.Context, mentorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availability_slots
		WHERE mentor_id = $1
		  AND weekday = $2
		  AND is_active = TRUE
		ORDER BY start_minute
	`

	rows, err := r.db.Query(ctx, query, mentorID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("find active slots: %w", err)
	}
	defer rows.Close()

	return scanAvailabilitySlots(rows)
}

// ListByMentor returns all of a mentor's slots, active or not.
func (r *AvailabilityRepository) ListByMentor(ctx context.Context, mentorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availability_slots
		WHERE mentor_id = $1
		ORDER BY weekday, start_minute
	`

	rows, err := r.db.Query(ctx, query, mentorID)
	if err != nil {
		return nil, fmt.Errorf("list slots by mentor: %w", err)
	}
	defer rows.Close()

	return scanAvailabilitySlots(rows)
}

// ReplaceForMentor swaps a mentor's recurring slots in one transaction.
func (r *AvailabilityRepository) ReplaceForMentor(ctx context.Context, mentorID uuid.UUID, slots []model.AvailabilitySlot) ([]*model.AvailabilitySlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM availability_slots WHERE mentor_id = $1`, mentorID)
	if err != nil {
		return nil, fmt.Errorf("delete slots: %w", err)
	}

	insert := `
		INSERT INTO availability_slots (mentor_id, weekday, start_minute, end_minute, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + availabilityColumns + `
	`

	saved := make([]*model.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		var s model.AvailabilitySlot
		var weekday int
		err := tx.QueryRow(ctx, insert,
			mentorID,
			int(slot.Weekday),
			slot.StartMinute,
			slot.EndMinute,
			slot.IsActive,
		).Scan(
			&s.ID,
			&s.MentorID,
			&weekday,
			&s.StartMinute,
			&s.EndMinute,
			&s.IsActive,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert slot: %w", err)
		}
		s.Weekday = time.Weekday(weekday)
		saved = append(saved, &s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return saved, nil
}

func scanAvailabilitySlots(rows pgx.Rows) ([]*model.AvailabilitySlot, error) {
	var slots []*model.AvailabilitySlot
	for rows.Next() {
		var slot model.AvailabilitySlot
		var weekday int
		err := rows.Scan(
			&slot.ID,
			&slot.MentorID,
			&weekday,
			&slot.StartMinute,
			&slot.EndMinute,
			&slot.IsActive,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Weekday = time.Weekday(weekday)
		slots = append(slots, &slot)
	}

	return slots, nil
}
