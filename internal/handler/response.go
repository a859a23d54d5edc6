package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var transitionErr *service.InvalidTransitionError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidOrigin),
		errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidScanningRange):
		return http.StatusBadRequest

	// Conflict errors - lost races and illegal lifecycle moves
	case errors.Is(err, service.ErrRideConflict),
		errors.Is(err, service.ErrPassengerHasActiveRide),
		errors.Is(err, service.ErrDriverHasActiveRide),
		errors.Is(err, service.ErrAlreadyOnline),
		errors.Is(err, service.ErrAlreadyOffline),
		errors.Is(err, service.ErrPaymentAlreadyCaptured),
		errors.As(err, &transitionErr):
		return http.StatusConflict

	// Forbidden - caller is not a participant
	case errors.Is(err, service.ErrNotRideParticipant),
		errors.Is(err, service.ErrNotAssignedDriver):
		return http.StatusForbidden

	// Precondition failed - driver state does not permit the action
	case errors.Is(err, service.ErrDriverOffline),
		errors.Is(err, service.ErrDriverNoLocation),
		errors.Is(err, service.ErrOutOfRange):
		return http.StatusPreconditionFailed

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
