package domain

import "time"

// RideDecline records that a driver declined a specific ride. The pair is
// unique and the record is never deleted within the ride's lifetime.
type RideDecline struct {
	RideID    string
	DriverID  string
	CreatedAt time.Time
}

// BlockedPassenger is a driver-initiated exclusion of a passenger from all
// of that driver's future candidate sets, independent of any ride.
type BlockedPassenger struct {
	DriverID    string
	PassengerID string
	Reason      string
	CreatedAt   time.Time
}
