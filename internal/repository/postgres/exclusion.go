package postgres

import (
	"context"
	"database/sql"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// DeclineRepository is a PostgreSQL implementation of
// repository.DeclineRepository.
type DeclineRepository struct {
	q Querier
}

// NewDeclineRepository creates a new PostgreSQL decline repository.
func NewDeclineRepository(db *sql.DB) *DeclineRepository {
	return &DeclineRepository{q: db}
}

// Record inserts a decline. Duplicate pairs are swallowed by the unique
// constraint, making the operation idempotent.
func (r *DeclineRepository) Record(ctx context.Context, decline *domain.RideDecline) error {
	query := `
		INSERT INTO ride_declines (ride_id, driver_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ride_id, driver_id) DO NOTHING
	`
	_, err := r.q.ExecContext(ctx, query, decline.RideID, decline.DriverID, decline.CreatedAt)
	return err
}

// DeclinedRideIDs returns the ride IDs the driver has declined.
func (r *DeclineRepository) DeclinedRideIDs(ctx context.Context, driverID string) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT ride_id FROM ride_declines WHERE driver_id = $1`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// BlockRepository is a PostgreSQL implementation of
// repository.BlockRepository.
type BlockRepository struct {
	q Querier
}

// NewBlockRepository creates a new PostgreSQL block repository.
func NewBlockRepository(db *sql.DB) *BlockRepository {
	return &BlockRepository{q: db}
}

// Create adds a block.
func (r *BlockRepository) Create(ctx context.Context, block *domain.BlockedPassenger) error {
	query := `
		INSERT INTO driver_blocked_passengers (driver_id, passenger_id, reason, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (driver_id, passenger_id) DO UPDATE SET reason = EXCLUDED.reason
	`
	_, err := r.q.ExecContext(ctx, query, block.DriverID, block.PassengerID, block.Reason, block.CreatedAt)
	return err
}

// BlockedPassengerIDs returns the passenger IDs the driver has blocked.
func (r *BlockRepository) BlockedPassengerIDs(ctx context.Context, driverID string) (map[string]bool, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT passenger_id FROM driver_blocked_passengers WHERE driver_id = $1`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
