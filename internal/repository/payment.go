package repository

import (
	"context"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// PaymentRepository defines the persistence operations for fare captures.
type PaymentRepository interface {
	// Create persists a new capture record.
	Create(ctx context.Context, capture *domain.PaymentCapture) error

	// GetByRideID retrieves the capture for a ride. Returns nil if no
	// capture has been attempted for that ride yet.
	GetByRideID(ctx context.Context, rideID string) (*domain.PaymentCapture, error)

	// UpdateStatus updates the status (and provider intent ID) of a
	// capture.
	UpdateStatus(ctx context.Context, id string, status domain.CaptureStatus, intentID string) error
}
