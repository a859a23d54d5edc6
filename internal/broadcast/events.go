package broadcast

import (
	"time"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// Well-known topics. Per-ride and per-user topics are derived with
// RideTopic and UserTopic.
const (
	TopicDrivers            = "drivers"
	TopicDriversLocation    = "drivers-location"
	TopicPassengersLocation = "passengers-location"
)

// RideTopic names the private topic for one ride.
func RideTopic(rideID string) string { return "ride." + rideID }

// UserTopic names the private topic for one user.
func UserTopic(userID string) string { return "user." + userID }

// Event types carried in the Type field of every payload.
const (
	EventRideRequested            = "ride_requested"
	EventRideAccepted             = "ride_accepted"
	EventRideRemoved              = "ride_removed"
	EventRideCancelled            = "ride_cancelled"
	EventRideStarted              = "ride_started"
	EventRideCompleted            = "ride_completed"
	EventDriverArrived            = "driver_arrived"
	EventDriverLocationUpdated    = "driver_location_updated"
	EventPassengerLocationUpdated = "passenger_location_updated"
	EventSOSRaised                = "sos_raised"
)

// RideEvent is the lifecycle fan-out payload.
type RideEvent struct {
	Type          string    `json:"type"`
	RideID        string    `json:"ride_id"`
	Status        string    `json:"status"`
	DriverID      string    `json:"driver_id,omitempty"`
	PassengerID   string    `json:"passenger_id,omitempty"`
	OriginLat     float64   `json:"origin_lat,omitempty"`
	OriginLng     float64   `json:"origin_lng,omitempty"`
	EstimatedFare float64   `json:"estimated_fare,omitempty"`
	FinalFare     float64   `json:"final_fare,omitempty"`
	CancelledBy   string    `json:"cancelled_by,omitempty"`
	CancelReason  string    `json:"cancel_reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// LocationEvent is the live-location fan-out payload.
type LocationEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	RideID    string    `json:"ride_id,omitempty"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRideEvent builds a lifecycle event from a ride snapshot.
func NewRideEvent(eventType string, ride *domain.Ride, now time.Time) RideEvent {
	return RideEvent{
		Type:          eventType,
		RideID:        ride.ID,
		Status:        string(ride.Status),
		DriverID:      ride.DriverID,
		PassengerID:   ride.PassengerID,
		OriginLat:     ride.Origin.Lat,
		OriginLng:     ride.Origin.Lng,
		EstimatedFare: ride.EstimatedFare,
		FinalFare:     ride.FinalFare,
		CancelledBy:   string(ride.CancelledBy),
		CancelReason:  ride.CancelReason,
		Timestamp:     now,
	}
}
