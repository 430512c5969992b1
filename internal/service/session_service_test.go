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

type sessionEnv struct {
	sessions     *fakeSessionRepo
	availability *fakeAvailabilityRepo
	notifier     *fakeNotifier
	svc          *SessionService
}

func newSessionEnv() *sessionEnv {
	sessions := newFakeSessionRepo()
	availability := newFakeAvailabilityRepo()
	notifier := &fakeNotifier{}

	svc := NewSessionService(
		sessions,
		availability,
		&fakeLocker{sessions: sessions},
		notifier,
		DefaultSchedulingPolicy(),
		time.UTC,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return testNow }

	return &sessionEnv{
		sessions:     sessions,
		availability: availability,
		notifier:     notifier,
		svc:          svc,
	}
}

func (e *sessionEnv) seedSession(status model.SessionStatus) *model.Session {
	session := scheduledSession(uuid.New(), nextMonday.Add(10*time.Hour), 60)
	session.Status = status
	if err := e.sessions.Create(context.Background(), session); err != nil {
		panic(err)
	}
	return session
}

func TestBookSessionSuccess(t *testing.T) {
	env := newSessionEnv()
	mentorID := uuid.New()
	env.availability.add(mondaySlot(mentorID, 9*60, 17*60))

	session, err := env.svc.BookSession(context.Background(), bookingAt(mentorID, nextMonday.Add(10*time.Hour), 60))
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusScheduled, session.Status)
	require.NotEqual(t, uuid.Nil, session.ID)

	persisted, err := env.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	require.Equal(t, model.SessionStatusScheduled, persisted.Status)

	booked := env.notifier.byType(notify.EventSessionBooked)
	require.Len(t, booked, 1)
	require.Equal(t, session.ID.String(), booked[0].Payload["session_id"])
}

func TestBookSessionRejectionPersistsNothing(t *testing.T) {
	env := newSessionEnv()
	mentorID := uuid.New()
	env.availability.add(mondaySlot(mentorID, 9*60, 17*60))

	_, err := env.svc.BookSession(context.Background(), bookingAt(mentorID, nextMonday.Add(10*time.Hour), 60))
	require.NoError(t, err)

	_, err = env.svc.BookSession(context.Background(), bookingAt(mentorID, nextMonday.Add(10*time.Hour+30*time.Minute), 30))
	require.True(t, IsValidation(err))

	// Only the first session exists, and only one booked event went out.
	count, err := env.sessions.CountByUser(context.Background(), mentorID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Len(t, env.notifier.byType(notify.EventSessionBooked), 1)
}

func TestSessionLifecycle(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	started, err := env.svc.StartSession(context.Background(), session.ID, session.MentorID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusInProgress, started.Status)

	completed, err := env.svc.CompleteSession(context.Background(), session.ID, session.MentorID, "Great progress on CV")
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusCompleted, completed.Status)
	require.NotNil(t, completed.MentorNotes)
	require.Equal(t, "Great progress on CV", *completed.MentorNotes)
	require.Nil(t, completed.MenteeNotes)

	require.Len(t, env.notifier.byType(notify.EventSessionStarted), 1)
	require.Len(t, env.notifier.byType(notify.EventSessionCompleted), 1)
}

func TestCompleteSessionMenteeNotes(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusInProgress)

	completed, err := env.svc.CompleteSession(context.Background(), session.ID, session.MenteeID, "Learned a lot")
	require.NoError(t, err)
	require.Nil(t, completed.MentorNotes)
	require.NotNil(t, completed.MenteeNotes)
}

// Completing a scheduled session skips IN_PROGRESS and must be rejected.
func TestCompleteSessionRequiresInProgress(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	_, err := env.svc.CompleteSession(context.Background(), session.ID, session.MentorID, "")
	requireRule(t, err, RuleTransition)
}

func TestCompleteCancelledSessionRejected(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusCancelled)

	_, err := env.svc.CompleteSession(context.Background(), session.ID, session.MentorID, "")
	requireRule(t, err, RuleTransition)

	// Terminal states never move.
	persisted, err := env.sessions.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusCancelled, persisted.Status)
}

func TestCancelSessionRecordsReason(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	cancelled, err := env.svc.CancelSession(context.Background(), session.ID, session.MenteeID, "exam clash")
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	require.Equal(t, "exam clash", *cancelled.CancelReason)
	require.Len(t, env.notifier.byType(notify.EventSessionCancelled), 1)
}

func TestMarkNoShow(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	marked, err := env.svc.MarkNoShow(context.Background(), session.ID, session.MentorID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusNoShow, marked.Status)

	// NO_SHOW is terminal.
	_, err = env.svc.StartSession(context.Background(), session.ID, session.MentorID)
	requireRule(t, err, RuleTransition)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newSessionEnv()

	_, err := env.svc.GetSession(context.Background(), uuid.New())
	require.True(t, IsNotFound(err))
}

func TestGetSessionIdempotentRead(t *testing.T) {
	env := newSessionEnv()
	session := env.seedSession(model.SessionStatusScheduled)

	first, err := env.svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	second, err := env.svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGetUserSessionsOrderedAndPaged(t *testing.T) {
	env := newSessionEnv()
	menteeID := uuid.New()

	for i := 0; i < 3; i++ {
		session := scheduledSession(uuid.New(), nextMonday.Add(time.Duration(10+i)*time.Hour), 60)
		session.MenteeID = menteeID
		require.NoError(t, env.sessions.Create(context.Background(), session))
	}

	page, err := env.svc.GetUserSessions(context.Background(), menteeID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Sessions, 2)
	require.Equal(t, int64(3), page.Total)
	// Most recent start first.
	require.True(t, page.Sessions[0].StartDateTime.After(page.Sessions[1].StartDateTime))

	second, err := env.svc.GetUserSessions(context.Background(), menteeID, 2, 2)
	require.NoError(t, err)
	require.Len(t, second.Sessions, 1)
	require.True(t, page.Sessions[1].StartDateTime.After(second.Sessions[0].StartDateTime))
}
