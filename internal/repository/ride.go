package repository

import (
	"context"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// RideRepository defines the persistence operations for rides.
//
// The Mark* methods are conditional (compare-and-swap) updates: each one
// succeeds only if the ride is still in the expected prior state, and
// returns ErrConflict otherwise. They are the arbitration point that keeps
// racing accept/cancel/complete calls from both winning.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByIDForUpdate retrieves a ride holding an exclusive row lock.
	// Only meaningful inside a transaction; outside one it behaves like
	// GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Ride, error)

	// GetActiveByPassenger returns the passenger's active ride, or
	// ErrNotFound.
	GetActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error)

	// GetActiveByDriver returns the ride currently assigned to the driver
	// in an active status, or ErrNotFound.
	GetActiveByDriver(ctx context.Context, driverID string) (*domain.Ride, error)

	// MarkAccepted assigns the driver iff the ride is still pending and
	// unassigned.
	MarkAccepted(ctx context.Context, rideID, driverID string, at time.Time) error

	// MarkArrived stamps arrival iff the ride is accepted.
	MarkArrived(ctx context.Context, rideID string, at time.Time, pickupDurationSec int64) error

	// MarkStarted stamps trip start iff the ride is arrived.
	MarkStarted(ctx context.Context, rideID string, at time.Time) error

	// MarkCompleted stamps completion and the final fare iff the ride is
	// in progress or arrived.
	MarkCompleted(ctx context.Context, rideID string, at time.Time, finalFare float64) error

	// MarkCancelled cancels iff the ride is not already terminal. fare
	// replaces the reserved fare (cancellation fee), if non-negative.
	MarkCancelled(ctx context.Context, rideID string, by domain.CancelActor, reason, note string, at time.Time, fare float64) error

	// SetSOS flips the SOS flag. Allowed in any status, terminal included.
	SetSOS(ctx context.Context, rideID string, on bool) error
}
