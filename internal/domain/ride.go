package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending    RideStatus = "PENDING"
	RideStatusAccepted   RideStatus = "ACCEPTED"
	RideStatusArrived    RideStatus = "ARRIVED"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// CancelActor identifies who cancelled a ride.
type CancelActor string

const (
	CancelActorPassenger CancelActor = "PASSENGER"
	CancelActorDriver    CancelActor = "DRIVER"
)

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// Ride represents a ride request and its full lifecycle in the system.
// DriverID is empty until a driver wins the accept race.
type Ride struct {
	ID          string
	PassengerID string
	DriverID    string

	Origin      LatLng
	Destination LatLng

	Status RideStatus

	// Fare reserved at request time and the authoritative fare computed
	// at completion.
	EstimatedFare float64
	FinalFare     float64
	PromoDiscount float64

	DistanceKm  float64
	DurationMin float64
	Polyline    string

	CancelledBy  CancelActor
	CancelReason string
	CancelNote   string

	SOS bool

	PickupDurationSec int64

	CreatedAt   time.Time
	AcceptedAt  time.Time
	ArrivedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	CancelledAt time.Time
}

// IsTerminal reports whether the ride has reached a final state.
func (r *Ride) IsTerminal() bool {
	return r.Status == RideStatusCompleted || r.Status == RideStatusCancelled
}

// IsActive reports whether the ride occupies its passenger (and, once
// assigned, its driver).
func (r *Ride) IsActive() bool {
	switch r.Status {
	case RideStatusPending, RideStatusAccepted, RideStatusArrived, RideStatusInProgress:
		return true
	}
	return false
}

// ActiveStatuses lists statuses that make a ride active.
func ActiveStatuses() []RideStatus {
	return []RideStatus{RideStatusPending, RideStatusAccepted, RideStatusArrived, RideStatusInProgress}
}

// AssignedStatuses lists statuses in which DriverID must be set.
func AssignedStatuses() []RideStatus {
	return []RideStatus{RideStatusAccepted, RideStatusArrived, RideStatusInProgress, RideStatusCompleted}
}
