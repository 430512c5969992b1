package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/repository/base"
)

type ReviewRepository struct {
	db base.Querier
}

func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: pool}
}

// Create inserts a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, session_id, reviewer_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		review.ID,
		review.SessionID,
		review.ReviewerID,
		review.Rating,
		review.Comment,
	).Scan(&review.CreatedAt)

	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

// GetBySessionAndReviewer returns the reviewer's review for a session, or
// nil if none exists.
func (r *ReviewRepository) GetBySessionAndReviewer(ctx context.Context, sessionID, reviewerID uuid.UUID) (*model.Review, error) {
	query := `
		SELECT id, session_id, reviewer_id, rating, comment, created_at
		FROM reviews
		WHERE session_id = $1 AND reviewer_id = $2
	`

	var review model.Review
	err := r.db.QueryRow(ctx, query, sessionID, reviewerID).Scan(
		&review.ID,
		&review.SessionID,
		&review.ReviewerID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}
