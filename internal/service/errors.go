package service

import (
	"errors"
	"fmt"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

var (
	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRideID is returned when the ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidOrigin is returned when origin coordinates are out of range.
	ErrInvalidOrigin = errors.New("invalid origin location")

	// ErrInvalidDestination is returned when destination coordinates are out of range.
	ErrInvalidDestination = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when a location update is out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidScanningRange is returned when a scanning range is not positive.
	ErrInvalidScanningRange = errors.New("invalid scanning range")

	// ErrRideConflict is returned when another driver won the ride first
	// or the ride moved to an incompatible state concurrently.
	ErrRideConflict = errors.New("ride was taken by another driver or changed state")

	// ErrPassengerHasActiveRide is returned when the passenger already has
	// a ride in flight.
	ErrPassengerHasActiveRide = errors.New("passenger already has an active ride")

	// ErrDriverHasActiveRide is returned when the driver is already on a ride.
	ErrDriverHasActiveRide = errors.New("driver already has an active ride")

	// ErrDriverOffline is returned when an offline driver attempts a
	// dispatch operation.
	ErrDriverOffline = errors.New("driver is offline")

	// ErrDriverNoLocation is returned when the driver has never reported
	// a location.
	ErrDriverNoLocation = errors.New("driver has no known location")

	// ErrOutOfRange is returned when the ride origin is beyond the
	// driver's acceptance range.
	ErrOutOfRange = errors.New("ride origin is out of acceptance range")

	// ErrNotRideParticipant is returned when the caller is neither the
	// ride's passenger nor its assigned driver.
	ErrNotRideParticipant = errors.New("caller is not a participant of this ride")

	// ErrNotAssignedDriver is returned when a driver acts on a ride
	// assigned to someone else.
	ErrNotAssignedDriver = errors.New("driver is not assigned to this ride")

	// ErrAlreadyOnline is returned when a driver with an open session
	// goes online again and no repair was needed.
	ErrAlreadyOnline = errors.New("driver is already online")

	// ErrAlreadyOffline is returned when an offline driver goes offline.
	ErrAlreadyOffline = errors.New("driver is already offline")

	// ErrPaymentAlreadyCaptured is returned when a capture already
	// succeeded for the ride.
	ErrPaymentAlreadyCaptured = errors.New("payment already captured for this ride")
)

// InvalidTransitionError reports a rejected ride status transition.
type InvalidTransitionError struct {
	From domain.RideStatus
	To   domain.RideStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid ride transition from %s to %s", e.From, e.To)
}
