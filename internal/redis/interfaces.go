package redis

import (
	"context"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// PendingRideIndexInterface defines the geo index over pending rides.
type PendingRideIndexInterface interface {
	Add(ctx context.Context, rideID string, origin domain.LatLng) error
	Remove(ctx context.Context, rideID string) error
	Nearby(ctx context.Context, point domain.LatLng, radiusKm float64, limit int) ([]RideDistance, error)
}

// LockStoreInterface defines the interface for distributed ride locking.
type LockStoreInterface interface {
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ PendingRideIndexInterface = (*PendingRideIndex)(nil)
	_ LockStoreInterface        = (*LockStore)(nil)
)
