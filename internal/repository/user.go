package repository

import (
	"context"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// GetByPhone retrieves a passenger by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.Passenger, error)
}

// NotificationRepository stores notification rows for the database delivery
// channel.
type NotificationRepository interface {
	// Create persists a notification.
	Create(ctx context.Context, n *domain.Notification) error

	// ListByRecipient returns the most recent notifications for a user.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error)
}
