package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/notify"
)

// ReviewService attaches feedback to completed sessions.
type ReviewService struct {
	reviews  model.ReviewRepository
	sessions model.SessionRepository
	notifier notify.Enqueuer
	logger   *zap.Logger
}

func NewReviewService(reviews model.ReviewRepository, sessions model.SessionRepository, notifier notify.Enqueuer, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitReview records a rating for a completed session. The session status
// is re-checked at submission time, not assumed from an earlier read.
func (s *ReviewService) SubmitReview(ctx context.Context, sessionID, reviewerID uuid.UUID, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, newValidationError(RuleRating,
			"rating must be between 1 and 5, got %d", rating)
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, newNotFoundError("session", sessionID.String())
	}

	if session.Status != model.SessionStatusCompleted {
		return nil, newValidationError(RuleReviewGate,
			"reviews can only be submitted for completed sessions, current status is %s", session.Status)
	}

	existing, err := s.reviews.GetBySessionAndReviewer(ctx, sessionID, reviewerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newValidationError(RuleDuplicateReview,
			"a review for this session already exists")
	}

	review := &model.Review{
		ID:         uuid.New(),
		SessionID:  sessionID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    comment,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("session_id", sessionID.String()),
		zap.Int("rating", rating),
	)

	s.notifier.Enqueue(notify.Event{
		Type: notify.EventReviewSubmitted,
		Payload: map[string]string{
			"review_id":  review.ID.String(),
			"session_id": sessionID.String(),
			"mentor_id":  session.MentorID.String(),
		},
	})

	return review, nil
}
