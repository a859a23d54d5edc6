package repository

import (
	"context"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// SessionRepository defines the persistence operations for the append-only
// driver online-session log.
type SessionRepository interface {
	// Open inserts a new session row with a nil inactive_at.
	Open(ctx context.Context, session *domain.ActiveDuration) error

	// GetOpenByDriver returns the driver's open session, or ErrNotFound.
	GetOpenByDriver(ctx context.Context, driverID string) (*domain.ActiveDuration, error)

	// Close stamps inactive_at and duration_seconds on one session.
	Close(ctx context.Context, sessionID string, at time.Time, durationSeconds int64) error

	// CloseAllOpenForDriver closes every open session the driver has,
	// stamping durations measured from each session's active_at. Returns
	// the number of rows closed. Used by goOnline as invariant repair.
	CloseAllOpenForDriver(ctx context.Context, driverID string, at time.Time) (int, error)

	// FindOpenOlderThan lists open sessions whose active_at is before the
	// cutoff, for the reconciliation sweep.
	FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]*domain.ActiveDuration, error)
}
