package domain

import "time"

// Driver represents a driver in the system. Available is owned exclusively
// by the availability tracker; nothing else flips it.
type Driver struct {
	ID     string
	UserID string
	Name   string
	Phone  string

	// Location is nil until the driver posts a first location update.
	Location *LatLng

	Available       bool
	ScanningRangeKm float64

	ActiveAt   time.Time
	InactiveAt time.Time
}

// ActiveDuration is one online interval in the append-only session log.
// At most one row per driver has a nil InactiveAt.
type ActiveDuration struct {
	ID              string
	DriverID        string
	ActiveAt        time.Time
	InactiveAt      *time.Time
	DurationSeconds int64
}
