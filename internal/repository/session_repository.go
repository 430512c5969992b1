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

type SessionRepository struct {
	db   base.Querier
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: pool, pool: pool}
}

// withTx returns a copy of the repository whose queries run on tx.
func (r *SessionRepository) withTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx, pool: r.pool}
}

const sessionColumns = `id, mentor_id, mentee_id, start_datetime, duration_minutes, topic, status, mentor_notes, mentee_notes, cancel_reason, created_at, updated_at`

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, mentor_id, mentee_id, start_datetime, duration_minutes, topic, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		session.ID,
		session.MentorID,
		session.MenteeID,
		session.StartDateTime,
		session.DurationMinutes,
		session.Topic,
		session.Status,
	).Scan(&session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID returns a session by ID, or nil if it does not exist.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
	`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// Update persists status, notes and cancel reason. Start time and duration
// are immutable once a session exists.
func (r *SessionRepository) Update(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE sessions
		SET status = $1, mentor_notes = $2, mentee_notes = $3, cancel_reason = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		session.Status,
		session.MentorNotes,
		session.MenteeNotes,
		session.CancelReason,
		session.ID,
	).Scan(&session.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("session not found")
		}
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// FindOverlapping returns the mentor's non-cancelled sessions whose interval
// intersects [from, to].
func (r *SessionRepository) FindOverlapping(ctx context.Context, mentorID uuid.UUID, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE mentor_id = $1
		  AND status NOT IN ('cancelled', 'no_show')
		  AND start_datetime < $3
		  AND start_datetime + make_interval(mins => duration_minutes) > $2
		ORDER BY start_datetime
	`

	rows, err := r.db.Query(ctx, query, mentorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("find overlapping sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// CountInRange counts the mentor's sessions with the given status starting
// in [from, to).
func (r *SessionRepository) CountInRange(ctx context.Context, mentorID uuid.UUID, from, to time.Time, status model.SessionStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE mentor_id = $1
		  AND status = $2
		  AND start_datetime >= $3
		  AND start_datetime < $4
	`

	var count int
	err := r.db.QueryRow(ctx, query, mentorID, status, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sessions in range: %w", err)
	}

	return count, nil
}

// ListByUser returns sessions where the user is mentor or mentee, most
// recent start first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE mentor_id = $1 OR mentee_id = $1
		ORDER BY start_datetime DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sessions by user: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// CountByUser counts sessions where the user is mentor or mentee.
func (r *SessionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions
		WHERE mentor_id = $1 OR mentee_id = $1
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions by user: %w", err)
	}

	return count, nil
}

// ListStartingBetween returns scheduled sessions starting in [from, to).
func (r *SessionRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'scheduled'
		  AND start_datetime >= $1
		  AND start_datetime < $2
		ORDER BY start_datetime
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions starting between: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// WithMentorLock serializes booking work per mentor: it opens a transaction,
// takes a transaction-scoped advisory lock keyed on the mentor ID, and runs
// fn with a repository bound to that transaction. Two concurrent bookings
// for the same mentor therefore queue up, and the second one sees the first
// one's session when it re-checks for conflicts.
func (r *SessionRepository) WithMentorLock(ctx context.Context, mentorID uuid.UUID, fn func(ctx context.Context, sessions model.SessionRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, mentorID)
	if err != nil {
		return fmt.Errorf("acquire mentor lock: %w", err)
	}

	if err := fn(ctx, r.withTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.MentorID,
		&session.MenteeID,
		&session.StartDateTime,
		&session.DurationMinutes,
		&session.Topic,
		&session.Status,
		&session.MentorNotes,
		&session.MenteeNotes,
		&session.CancelReason,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func scanSessions(rows pgx.Rows) ([]*model.Session, error) {
	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}
