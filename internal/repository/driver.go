package repository

import (
	"context"
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByPhone retrieves a driver by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Driver, error)

	// UpdateLocation stores the driver's last-known position.
	UpdateLocation(ctx context.Context, id string, loc domain.LatLng) error

	// SetAvailability flips the availability flag and stamps the matching
	// active_at/inactive_at timestamp. Called only by the availability
	// tracker.
	SetAvailability(ctx context.Context, id string, available bool, at time.Time) error

	// SetScanningRange updates the driver's candidate search radius.
	SetScanningRange(ctx context.Context, id string, radiusKm float64) error
}
