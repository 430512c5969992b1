package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/notify"
)

type reviewEnv struct {
	sessions *fakeSessionRepo
	reviews  *fakeReviewRepo
	notifier *fakeNotifier
	svc      *ReviewService
}

func newReviewEnv() *reviewEnv {
	sessions := newFakeSessionRepo()
	reviews := newFakeReviewRepo()
	notifier := &fakeNotifier{}

	return &reviewEnv{
		sessions: sessions,
		reviews:  reviews,
		notifier: notifier,
		svc:      NewReviewService(reviews, sessions, notifier, zap.NewNop()),
	}
}

func (e *reviewEnv) seedSession(status model.SessionStatus) *model.Session {
	session := scheduledSession(uuid.New(), nextMonday.Add(10*time.Hour), 60)
	session.Status = status
	if err := e.sessions.Create(context.Background(), session); err != nil {
		panic(err)
	}
	return session
}

func TestSubmitReviewRatingBounds(t *testing.T) {
	env := newReviewEnv()
	session := env.seedSession(model.SessionStatusCompleted)

	for _, rating := range []int{0, 6, -1} {
		_, err := env.svc.SubmitReview(context.Background(), session.ID, session.MenteeID, rating, "")
		requireRule(t, err, RuleRating)
	}
}

func TestSubmitReviewSessionNotFound(t *testing.T) {
	env := newReviewEnv()

	_, err := env.svc.SubmitReview(context.Background(), uuid.New(), uuid.New(), 5, "")
	require.True(t, IsNotFound(err))
}

func TestSubmitReviewRequiresCompletedSession(t *testing.T) {
	env := newReviewEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	_, err := env.svc.SubmitReview(context.Background(), session.ID, session.MenteeID, 5, "Too early")
	requireRule(t, err, RuleReviewGate)
}

func TestSubmitReviewOnCompletedSession(t *testing.T) {
	env := newReviewEnv()
	session := env.seedSession(model.SessionStatusCompleted)

	review, err := env.svc.SubmitReview(context.Background(), session.ID, session.MenteeID, 5, "Very helpful mentor")
	require.NoError(t, err)
	require.Equal(t, 5, review.Rating)
	require.Equal(t, session.ID, review.SessionID)

	persisted, err := env.reviews.GetBySessionAndReviewer(context.Background(), session.ID, session.MenteeID)
	require.NoError(t, err)
	require.NotNil(t, persisted)

	require.Len(t, env.notifier.byType(notify.EventReviewSubmitted), 1)
}

func TestSubmitReviewDuplicateRejected(t *testing.T) {
	env := newReviewEnv()
	session := env.seedSession(model.SessionStatusCompleted)

	_, err := env.svc.SubmitReview(context.Background(), session.ID, session.MenteeID, 4, "First")
	require.NoError(t, err)

	_, err = env.svc.SubmitReview(context.Background(), session.ID, session.MenteeID, 5, "Second")
	requireRule(t, err, RuleDuplicateReview)
}
