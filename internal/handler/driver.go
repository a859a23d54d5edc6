package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// DriverHandler handles HTTP requests for the driver side of dispatch.
type DriverHandler struct {
	drivers      *service.DriverService
	dispatch     *service.DispatchEngine
	availability *service.AvailabilityService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(
	drivers *service.DriverService,
	dispatch *service.DispatchEngine,
	availability *service.AvailabilityService,
) *DriverHandler {
	return &DriverHandler{
		drivers:      drivers,
		dispatch:     dispatch,
		availability: availability,
	}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
}

// UpdateLocationRequest is the HTTP request body for updating driver location.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScanningRangeRequest is the HTTP request body for updating the scan radius.
type ScanningRangeRequest struct {
	RadiusKm float64 `json:"radius_km"`
}

// BlockPassengerRequest is the HTTP request body for blocking a passenger.
type BlockPassengerRequest struct {
	PassengerID string `json:"passenger_id"`
	Reason      string `json:"reason,omitempty"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id,omitempty"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Available       bool     `json:"available"`
	ScanningRangeKm float64  `json:"scanning_range_km"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
}

func driverResponse(d *domain.Driver) DriverResponse {
	resp := DriverResponse{
		ID:              d.ID,
		UserID:          d.UserID,
		Name:            d.Name,
		Phone:           d.Phone,
		Available:       d.Available,
		ScanningRangeKm: d.ScanningRangeKm,
	}
	if d.Location != nil {
		resp.Lat = &d.Location.Lat
		resp.Lng = &d.Location.Lng
	}
	return resp
}

// RideCandidateResponse is one entry in the available-rides listing.
type RideCandidateResponse struct {
	Ride               RideResponse `json:"ride"`
	DistanceKm         float64      `json:"distance_km"`
	OriginAddress      string       `json:"origin_address"`
	DestinationAddress string       `json:"destination_address"`
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.drivers.RegisterDriver(c.Request.Context(), service.RegisterDriverInput{
		UserID: req.UserID,
		Name:   req.Name,
		Phone:  req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.drivers.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	if err := h.availability.GoOnline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "online"})
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.availability.GoOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "offline"})
}

// UpdateLocation handles PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.drivers.UpdateLocation(c.Request.Context(), c.Param("id"), domain.LatLng{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// SetScanningRange handles PUT /v1/drivers/:id/scanning-range
func (h *DriverHandler) SetScanningRange(c *gin.Context) {
	var req ScanningRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.drivers.SetScanningRange(c.Request.Context(), c.Param("id"), req.RadiusKm); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"radius_km": req.RadiusKm})
}

// ListAvailableRides handles GET /v1/drivers/:id/available-rides
func (h *DriverHandler) ListAvailableRides(c *gin.Context) {
	candidates, err := h.dispatch.ListAvailableRides(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideCandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		response = append(response, RideCandidateResponse{
			Ride:               rideResponse(candidate.Ride),
			DistanceKm:         candidate.DistanceKm,
			OriginAddress:      candidate.OriginAddress,
			DestinationAddress: candidate.DestinationAddress,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// AcceptRide handles POST /v1/drivers/:id/rides/:ride_id/accept
func (h *DriverHandler) AcceptRide(c *gin.Context) {
	ride, err := h.dispatch.AcceptRide(c.Request.Context(), c.Param("ride_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// DeclineRide handles POST /v1/drivers/:id/rides/:ride_id/decline
func (h *DriverHandler) DeclineRide(c *gin.Context) {
	if err := h.dispatch.DeclineRide(c.Request.Context(), c.Param("ride_id"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "declined"})
}

// ArriveRide handles POST /v1/drivers/:id/rides/:ride_id/arrive
func (h *DriverHandler) ArriveRide(c *gin.Context) {
	ride, err := h.dispatch.ArriveRide(c.Request.Context(), c.Param("ride_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// StartRide handles POST /v1/drivers/:id/rides/:ride_id/start
func (h *DriverHandler) StartRide(c *gin.Context) {
	ride, err := h.dispatch.StartRide(c.Request.Context(), c.Param("ride_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// CompleteRide handles POST /v1/drivers/:id/rides/:ride_id/complete
func (h *DriverHandler) CompleteRide(c *gin.Context) {
	ride, err := h.dispatch.CompleteRide(c.Request.Context(), c.Param("ride_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, rideResponse(ride))
}

// BlockPassenger handles POST /v1/drivers/:id/blocked-passengers
func (h *DriverHandler) BlockPassenger(c *gin.Context) {
	var req BlockPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.dispatch.BlockPassenger(c.Request.Context(), c.Param("id"), req.PassengerID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, gin.H{"status": "blocked"})
}
