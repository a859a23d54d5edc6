package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// RideHandler handles HTTP requests for the passenger side of rides.
type RideHandler struct {
	dispatch *service.DispatchEngine
	payments *service.PaymentService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(dispatch *service.DispatchEngine, payments *service.PaymentService) *RideHandler {
	return &RideHandler{dispatch: dispatch, payments: payments}
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	PassengerID    string  `json:"passenger_id"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	ClientFare     float64 `json:"client_fare,omitempty"`
	PromoDiscount  float64 `json:"promo_discount,omitempty"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	ActorID string `json:"actor_id"`
	Actor   string `json:"actor"` // PASSENGER or DRIVER
	Reason  string `json:"reason,omitempty"`
	Note    string `json:"note,omitempty"`
}

// SOSRequest is the HTTP request body for flagging SOS.
type SOSRequest struct {
	ActorID string `json:"actor_id"`
	On      *bool  `json:"on,omitempty"` // defaults to true
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                string  `json:"id"`
	PassengerID       string  `json:"passenger_id"`
	DriverID          string  `json:"driver_id,omitempty"`
	OriginLat         float64 `json:"origin_lat"`
	OriginLng         float64 `json:"origin_lng"`
	DestinationLat    float64 `json:"destination_lat"`
	DestinationLng    float64 `json:"destination_lng"`
	Status            string  `json:"status"`
	EstimatedFare     float64 `json:"estimated_fare"`
	FinalFare         float64 `json:"final_fare,omitempty"`
	PromoDiscount     float64 `json:"promo_discount,omitempty"`
	DistanceKm        float64 `json:"distance_km"`
	DurationMin       float64 `json:"duration_min"`
	Polyline          string  `json:"polyline,omitempty"`
	SOS               bool    `json:"sos"`
	PickupDurationSec int64   `json:"pickup_duration_sec,omitempty"`
	CancelledBy       string  `json:"cancelled_by,omitempty"`
	CancelReason      string  `json:"cancel_reason,omitempty"`
	CreatedAt         string  `json:"created_at"`
	AcceptedAt        string  `json:"accepted_at,omitempty"`
	ArrivedAt         string  `json:"arrived_at,omitempty"`
	StartedAt         string  `json:"started_at,omitempty"`
	CompletedAt       string  `json:"completed_at,omitempty"`
	CancelledAt       string  `json:"cancelled_at,omitempty"`
}

func rideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:                ride.ID,
		PassengerID:       ride.PassengerID,
		DriverID:          ride.DriverID,
		OriginLat:         ride.Origin.Lat,
		OriginLng:         ride.Origin.Lng,
		DestinationLat:    ride.Destination.Lat,
		DestinationLng:    ride.Destination.Lng,
		Status:            string(ride.Status),
		EstimatedFare:     ride.EstimatedFare,
		FinalFare:         ride.FinalFare,
		PromoDiscount:     ride.PromoDiscount,
		DistanceKm:        ride.DistanceKm,
		DurationMin:       ride.DurationMin,
		Polyline:          ride.Polyline,
		SOS:               ride.SOS,
		PickupDurationSec: ride.PickupDurationSec,
		CancelledBy:       string(ride.CancelledBy),
		CancelReason:      ride.CancelReason,
		CreatedAt:         formatTime(ride.CreatedAt),
		AcceptedAt:        formatTime(ride.AcceptedAt),
		ArrivedAt:         formatTime(ride.ArrivedAt),
		StartedAt:         formatTime(ride.StartedAt),
		CompletedAt:       formatTime(ride.CompletedAt),
		CancelledAt:       formatTime(ride.CancelledAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatch.RequestRide(c.Request.Context(), service.RequestRideInput{
		PassengerID:   req.PassengerID,
		Origin:        domain.LatLng{Lat: req.OriginLat, Lng: req.OriginLng},
		Destination:   domain.LatLng{Lat: req.DestinationLat, Lng: req.DestinationLng},
		ClientFare:    req.ClientFare,
		PromoDiscount: req.PromoDiscount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, rideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID := c.Param("id")
	actorID := c.Query("actor_id")

	ride, err := h.dispatch.GetRide(c.Request.Context(), rideID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	rideID := c.Param("id")

	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.dispatch.CancelRide(c.Request.Context(), service.CancelRideInput{
		RideID:  rideID,
		ActorID: req.ActorID,
		Actor:   domain.CancelActor(req.Actor),
		Reason:  req.Reason,
		Note:    req.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// FlagSOS handles POST /v1/rides/:id/sos
func (h *RideHandler) FlagSOS(c *gin.Context) {
	rideID := c.Param("id")

	var req SOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	on := true
	if req.On != nil {
		on = *req.On
	}
	if err := h.dispatch.FlagSOS(c.Request.Context(), rideID, req.ActorID, on); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"ride_id": rideID, "sos": on})
}

// GetRidePayment handles GET /v1/rides/:id/payment
func (h *RideHandler) GetRidePayment(c *gin.Context) {
	rideID := c.Param("id")

	capture, err := h.payments.GetRideCapture(c.Request.Context(), rideID)
	if err != nil {
		respondError(c, err)
		return
	}
	if capture == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no payment for ride"})
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"id":        capture.ID,
		"ride_id":   capture.RideID,
		"amount":    capture.Amount,
		"currency":  capture.Currency,
		"intent_id": capture.IntentID,
		"status":    string(capture.Status),
	})
}
