package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vijanahub/mentor-service/internal/model"
	"github.com/vijanahub/mentor-service/internal/notify"
)

// In-memory fakes backing the service tests.

type fakeAvailabilityRepo struct {
	mu    sync.RWMutex
	slots map[uuid.UUID][]*model.AvailabilitySlot
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{slots: make(map[uuid.UUID][]*model.AvailabilitySlot)}
}

func (f *fakeAvailabilityRepo) add(slot *model.AvailabilitySlot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[slot.MentorID] = append(f.slots[slot.MentorID], slot)
}

func (f *fakeAvailabilityRepo) FindActiveSlots(_ context.Context, mentorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilitySlot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*model.AvailabilitySlot
	for _, slot := range f.slots[mentorID] {
		if slot.Weekday == weekday && slot.IsActive {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) ListByMentor(_ context.Context, mentorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.slots[mentorID], nil
}

func (f *fakeAvailabilityRepo) ReplaceForMentor(_ context.Context, mentorID uuid.UUID, slots []model.AvailabilitySlot) ([]*model.AvailabilitySlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	saved := make([]*model.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		s := slot
		s.ID = uuid.New()
		s.MentorID = mentorID
		saved = append(saved, &s)
	}
	f.slots[mentorID] = saved
	return saved, nil
}

type fakeSessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	session, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session.UpdatedAt = time.Now()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) FindOverlapping(_ context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*model.Session
	for _, s := range f.sessions {
		if s.MentorID != mentorID {
			continue
		}
		if s.Status == model.SessionStatusCancelled || s.Status == model.SessionStatusNoShow {
			continue
		}
		if s.StartDateTime.Before(to) && s.EndDateTime().After(from) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) CountInRange(_ context.Context, mentorID uuid.UUID, from, to time.Time, status model.SessionStatus) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	count := 0
	for _, s := range f.sessions {
		if s.MentorID == mentorID && s.Status == status &&
			!s.StartDateTime.Before(from) && s.StartDateTime.Before(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*model.Session
	for _, s := range f.sessions {
		if s.MentorID == userID || s.MenteeID == userID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartDateTime.After(out[j].StartDateTime)
	})

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var count int64
	for _, s := range f.sessions {
		if s.MentorID == userID || s.MenteeID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]*model.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*model.Session
	for _, s := range f.sessions {
		if s.Status == model.SessionStatusScheduled &&
			!s.StartDateTime.Before(from) && s.StartDateTime.Before(to) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeLocker serializes with a plain mutex and hands the shared fake repo
// to the callback, mirroring what the advisory-lock transaction does.
type fakeLocker struct {
	mu       sync.Mutex
	sessions model.SessionRepository
}

func (l *fakeLocker) WithMentorLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context, sessions model.SessionRepository) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx, l.sessions)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *fakeNotifier) Enqueue(event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) byType(eventType string) []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []notify.Event
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type reviewKey struct {
	sessionID  uuid.UUID
	reviewerID uuid.UUID
}

type fakeReviewRepo struct {
	mu      sync.RWMutex
	reviews map[reviewKey]*model.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[reviewKey]*model.Review)}
}

func (f *fakeReviewRepo) Create(_ context.Context, review *model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	review.CreatedAt = time.Now()
	copied := *review
	f.reviews[reviewKey{review.SessionID, review.ReviewerID}] = &copied
	return nil
}

func (f *fakeReviewRepo) GetBySessionAndReviewer(_ context.Context, sessionID, reviewerID uuid.UUID) (*model.Review, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	review, ok := f.reviews[reviewKey{sessionID, reviewerID}]
	if !ok {
		return nil, nil
	}
	copied := *review
	return &copied, nil
}
