package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// PassengerHandler handles HTTP requests for passengers.
type PassengerHandler struct {
	passengers *service.PassengerService
	dispatch   *service.DispatchEngine
}

// NewPassengerHandler creates a new PassengerHandler.
func NewPassengerHandler(passengers *service.PassengerService, dispatch *service.DispatchEngine) *PassengerHandler {
	return &PassengerHandler{passengers: passengers, dispatch: dispatch}
}

// RegisterPassengerRequest is the HTTP request body for passenger registration.
type RegisterPassengerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// PassengerResponse is the HTTP response for passenger data.
type PassengerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Register handles POST /v1/passengers
func (h *PassengerHandler) Register(c *gin.Context) {
	var req RegisterPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	passenger, err := h.passengers.RegisterPassenger(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PassengerResponse{
		ID:    passenger.ID,
		Name:  passenger.Name,
		Phone: passenger.Phone,
	})
}

// GetPassenger handles GET /v1/passengers/:id
func (h *PassengerHandler) GetPassenger(c *gin.Context) {
	passenger, err := h.passengers.GetPassenger(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, PassengerResponse{
		ID:    passenger.ID,
		Name:  passenger.Name,
		Phone: passenger.Phone,
	})
}

// UpdateLocation handles PUT /v1/passengers/:id/location
func (h *PassengerHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.dispatch.UpdatePassengerLocation(c.Request.Context(), c.Param("id"), domain.LatLng{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "updated"})
}

// NotificationResponse is one entry in the notification feed.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ListNotifications handles GET /v1/passengers/:id/notifications
func (h *PassengerHandler) ListNotifications(c *gin.Context) {
	limit := cast.ToInt(c.DefaultQuery("limit", "50"))

	notifications, err := h.passengers.ListNotifications(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		response = append(response, NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			Payload:   n.Payload,
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	respondJSON(c, http.StatusOK, response)
}
