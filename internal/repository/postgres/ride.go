package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, passenger_id, driver_id, origin_lat, origin_lng, destination_lat,
	destination_lng, status, estimated_fare, final_fare, promo_discount,
	distance_km, duration_min, polyline, cancelled_by, cancel_reason,
	cancel_note, sos, pickup_duration_sec, created_at, accepted_at,
	arrived_at, started_at, completed_at, cancelled_at
`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (
			id, passenger_id, origin_lat, origin_lng, destination_lat,
			destination_lng, status, estimated_fare, promo_discount,
			distance_km, duration_min, polyline, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		ride.Origin.Lat,
		ride.Origin.Lng,
		ride.Destination.Lat,
		ride.Destination.Lng,
		ride.Status,
		ride.EstimatedFare,
		ride.PromoDiscount,
		ride.DistanceKm,
		ride.DurationMin,
		ride.Polyline,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a ride with a row-level exclusive lock.
func (r *RideRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetActiveByPassenger returns the passenger's active ride.
func (r *RideRepository) GetActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE passenger_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, passengerID, pq.Array(activeStatusStrings())))
}

// GetActiveByDriver returns the ride currently assigned to the driver.
func (r *RideRepository) GetActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + `
		FROM rides
		WHERE driver_id = $1
		  AND status IN ('ACCEPTED', 'ARRIVED', 'IN_PROGRESS')
		ORDER BY created_at DESC LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, driverID))
}

// MarkAccepted assigns the driver iff the ride is still pending and
// unassigned. Zero rows affected means another driver already won.
func (r *RideRepository) MarkAccepted(ctx context.Context, rideID, driverID string, at time.Time) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = 'ACCEPTED', accepted_at = $2
		WHERE id = $3 AND status = 'PENDING' AND driver_id IS NULL
	`
	return r.execConditional(ctx, query, driverID, at, rideID)
}

// MarkArrived stamps arrival and the pickup duration.
func (r *RideRepository) MarkArrived(ctx context.Context, rideID string, at time.Time, pickupDurationSec int64) error {
	query := `
		UPDATE rides
		SET status = 'ARRIVED', arrived_at = $1, pickup_duration_sec = $2
		WHERE id = $3 AND status = 'ACCEPTED'
	`
	return r.execConditional(ctx, query, at, pickupDurationSec, rideID)
}

// MarkStarted stamps trip start.
func (r *RideRepository) MarkStarted(ctx context.Context, rideID string, at time.Time) error {
	query := `
		UPDATE rides
		SET status = 'IN_PROGRESS', started_at = $1
		WHERE id = $2 AND status = 'ARRIVED'
	`
	return r.execConditional(ctx, query, at, rideID)
}

// MarkCompleted stamps completion and the final fare.
func (r *RideRepository) MarkCompleted(ctx context.Context, rideID string, at time.Time, finalFare float64) error {
	query := `
		UPDATE rides
		SET status = 'COMPLETED', completed_at = $1, final_fare = $2
		WHERE id = $3 AND status IN ('IN_PROGRESS', 'ARRIVED')
	`
	return r.execConditional(ctx, query, at, finalFare, rideID)
}

// MarkCancelled cancels the ride unless it is already terminal.
func (r *RideRepository) MarkCancelled(ctx context.Context, rideID string, by domain.CancelActor, reason, note string, at time.Time, fare float64) error {
	query := `
		UPDATE rides
		SET status = 'CANCELLED', cancelled_by = $1, cancel_reason = $2,
		    cancel_note = $3, cancelled_at = $4,
		    final_fare = CASE WHEN $5 >= 0 THEN $5 ELSE final_fare END
		WHERE id = $6 AND status NOT IN ('COMPLETED', 'CANCELLED')
	`
	return r.execConditional(ctx, query, by, reason, note, at, fare, rideID)
}

// SetSOS flips the SOS flag regardless of status.
func (r *RideRepository) SetSOS(ctx context.Context, rideID string, on bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE rides SET sos = $1 WHERE id = $2`, on, rideID)
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

func (r *RideRepository) execConditional(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *RideRepository) scanOne(row *sql.Row) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, polyline, cancelledBy, cancelReason, cancelNote sql.NullString
	var finalFare sql.NullFloat64
	var pickupSec sql.NullInt64
	var acceptedAt, arrivedAt, startedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&ride.Origin.Lat,
		&ride.Origin.Lng,
		&ride.Destination.Lat,
		&ride.Destination.Lng,
		&ride.Status,
		&ride.EstimatedFare,
		&finalFare,
		&ride.PromoDiscount,
		&ride.DistanceKm,
		&ride.DurationMin,
		&polyline,
		&cancelledBy,
		&cancelReason,
		&cancelNote,
		&ride.SOS,
		&pickupSec,
		&ride.CreatedAt,
		&acceptedAt,
		&arrivedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	if finalFare.Valid {
		ride.FinalFare = finalFare.Float64
	}
	if polyline.Valid {
		ride.Polyline = polyline.String
	}
	if cancelledBy.Valid {
		ride.CancelledBy = domain.CancelActor(cancelledBy.String)
	}
	if cancelReason.Valid {
		ride.CancelReason = cancelReason.String
	}
	if cancelNote.Valid {
		ride.CancelNote = cancelNote.String
	}
	if pickupSec.Valid {
		ride.PickupDurationSec = pickupSec.Int64
	}
	ride.AcceptedAt = timeOrZero(acceptedAt)
	ride.ArrivedAt = timeOrZero(arrivedAt)
	ride.StartedAt = timeOrZero(startedAt)
	ride.CompletedAt = timeOrZero(completedAt)
	ride.CancelledAt = timeOrZero(cancelledAt)

	return &ride, nil
}

func activeStatusStrings() []string {
	statuses := domain.ActiveStatuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func timeOrZero(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}
