package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// SessionRepository is a PostgreSQL implementation of
// repository.SessionRepository.
type SessionRepository struct {
	q Querier
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{q: db}
}

// NewSessionRepositoryWithTx creates a session repository using a transaction.
func NewSessionRepositoryWithTx(tx *sql.Tx) *SessionRepository {
	return &SessionRepository{q: tx}
}

// Open inserts a new open session row.
func (r *SessionRepository) Open(ctx context.Context, session *domain.ActiveDuration) error {
	query := `
		INSERT INTO driver_active_durations (id, driver_id, active_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.q.ExecContext(ctx, query, session.ID, session.DriverID, session.ActiveAt)
	return err
}

// GetOpenByDriver returns the driver's open session.
func (r *SessionRepository) GetOpenByDriver(ctx context.Context, driverID string) (*domain.ActiveDuration, error) {
	query := `
		SELECT id, driver_id, active_at, inactive_at, duration_seconds
		FROM driver_active_durations
		WHERE driver_id = $1 AND inactive_at IS NULL
		ORDER BY active_at DESC LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, driverID))
}

// Close stamps inactive_at and duration_seconds on one session.
func (r *SessionRepository) Close(ctx context.Context, sessionID string, at time.Time, durationSeconds int64) error {
	query := `
		UPDATE driver_active_durations
		SET inactive_at = $1, duration_seconds = $2
		WHERE id = $3 AND inactive_at IS NULL
	`
	result, err := r.q.ExecContext(ctx, query, at, durationSeconds, sessionID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CloseAllOpenForDriver closes every open session the driver has.
func (r *SessionRepository) CloseAllOpenForDriver(ctx context.Context, driverID string, at time.Time) (int, error) {
	query := `
		UPDATE driver_active_durations
		SET inactive_at = $1,
		    duration_seconds = EXTRACT(EPOCH FROM ($1::timestamptz - active_at))::bigint
		WHERE driver_id = $2 AND inactive_at IS NULL
	`
	result, err := r.q.ExecContext(ctx, query, at, driverID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FindOpenOlderThan lists open sessions older than the cutoff.
func (r *SessionRepository) FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.ActiveDuration, error) {
	query := `
		SELECT id, driver_id, active_at, inactive_at, duration_seconds
		FROM driver_active_durations
		WHERE inactive_at IS NULL AND active_at < $1
	`
	rows, err := r.q.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ActiveDuration
	for rows.Next() {
		var s domain.ActiveDuration
		var inactiveAt sql.NullTime
		var duration sql.NullInt64
		if err := rows.Scan(&s.ID, &s.DriverID, &s.ActiveAt, &inactiveAt, &duration); err != nil {
			return nil, err
		}
		if inactiveAt.Valid {
			t := inactiveAt.Time
			s.InactiveAt = &t
		}
		if duration.Valid {
			s.DurationSeconds = duration.Int64
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) scanOne(row *sql.Row) (*domain.ActiveDuration, error) {
	var s domain.ActiveDuration
	var inactiveAt sql.NullTime
	var duration sql.NullInt64

	err := row.Scan(&s.ID, &s.DriverID, &s.ActiveAt, &inactiveAt, &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if inactiveAt.Valid {
		t := inactiveAt.Time
		s.InactiveAt = &t
	}
	if duration.Valid {
		s.DurationSeconds = duration.Int64
	}
	return &s, nil
}
