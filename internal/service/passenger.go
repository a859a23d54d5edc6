package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// PassengerService handles passenger profiles and their notification
// feed.
type PassengerService struct {
	passengers    repository.PassengerRepository
	notifications repository.NotificationRepository
}

func NewPassengerService(
	passengers repository.PassengerRepository,
	notifications repository.NotificationRepository,
) *PassengerService {
	return &PassengerService{passengers: passengers, notifications: notifications}
}

// RegisterPassenger creates a passenger profile.
func (s *PassengerService) RegisterPassenger(ctx context.Context, name, phone string) (*domain.Passenger, error) {
	if name == "" || phone == "" {
		return nil, ErrInvalidPassengerID
	}

	passenger := &domain.Passenger{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		CreatedAt: time.Now(),
	}
	if err := s.passengers.Create(ctx, passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}

// GetPassenger returns a passenger profile.
func (s *PassengerService) GetPassenger(ctx context.Context, id string) (*domain.Passenger, error) {
	if id == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.passengers.GetByID(ctx, id)
}

// ListNotifications returns the newest notifications for a recipient.
func (s *PassengerService) ListNotifications(ctx context.Context, recipientID string, limit int) ([]*domain.Notification, error) {
	if recipientID == "" {
		return nil, ErrInvalidPassengerID
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.notifications.ListByRecipient(ctx, recipientID, limit)
}
