package repository

import (
	"context"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// DeclineRepository records per-ride driver declines.
type DeclineRepository interface {
	// Record inserts a decline. Inserting the same (ride, driver) pair
	// twice is a no-op, not an error.
	Record(ctx context.Context, decline *domain.RideDecline) error

	// DeclinedRideIDs returns the ride IDs the driver has declined.
	DeclinedRideIDs(ctx context.Context, driverID string) (map[string]bool, error)
}

// BlockRepository records driver-initiated passenger blocks.
type BlockRepository interface {
	// Create adds a block.
	Create(ctx context.Context, block *domain.BlockedPassenger) error

	// BlockedPassengerIDs returns the passenger IDs the driver has blocked.
	BlockedPassengerIDs(ctx context.Context, driverID string) (map[string]bool, error)
}
