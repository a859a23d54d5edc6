package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/payments"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// PaymentService captures ride fares through the payment gateway,
// keyed by ride so a retry never double-charges.
type PaymentService struct {
	captures repository.PaymentRepository
	gateway  payments.Gateway
	notifier *NotificationService
	currency string
	logger   *zap.Logger
}

func NewPaymentService(
	captures repository.PaymentRepository,
	gateway payments.Gateway,
	notifier *NotificationService,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{
		captures: captures,
		gateway:  gateway,
		notifier: notifier,
		currency: currency,
		logger:   logger,
	}
}

// CaptureRideFare charges the ride's final fare. Idempotent per ride:
// an already successful capture is returned untouched, a failed one is
// retried.
func (s *PaymentService) CaptureRideFare(ctx context.Context, ride *domain.Ride) error {
	if s.gateway == nil || ride.FinalFare <= 0 {
		return nil
	}

	capture, err := s.captures.GetByRideID(ctx, ride.ID)
	if err != nil {
		return err
	}
	if capture != nil && capture.Status == domain.CaptureStatusSuccess {
		return ErrPaymentAlreadyCaptured
	}

	if capture == nil {
		capture = &domain.PaymentCapture{
			ID:        uuid.New().String(),
			RideID:    ride.ID,
			Amount:    ride.FinalFare,
			Currency:  s.currency,
			Status:    domain.CaptureStatusPending,
			CreatedAt: time.Now(),
		}
		if err := s.captures.Create(ctx, capture); err != nil {
			return err
		}
	}

	intentID, chargeErr := s.gateway.Capture(ride.FinalFare, s.currency, ride.ID)
	if chargeErr != nil {
		if err := s.captures.UpdateStatus(ctx, capture.ID, domain.CaptureStatusFailed, ""); err != nil {
			s.logger.Error("failed to record capture failure",
				zap.String("ride_id", ride.ID), zap.Error(err))
		}
		s.notifier.Notify(ctx, ride.PassengerID, NotifyPaymentFailed, map[string]any{
			"ride_id": ride.ID,
			"fare":    ride.FinalFare,
		})
		return chargeErr
	}

	if err := s.captures.UpdateStatus(ctx, capture.ID, domain.CaptureStatusSuccess, intentID); err != nil {
		return err
	}
	s.notifier.Notify(ctx, ride.PassengerID, NotifyPaymentCharged, map[string]any{
		"ride_id": ride.ID,
		"fare":    ride.FinalFare,
	})
	return nil
}

// GetRideCapture returns the capture record for a ride, nil when the
// ride has not been charged.
func (s *PaymentService) GetRideCapture(ctx context.Context, rideID string) (*domain.PaymentCapture, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.captures.GetByRideID(ctx, rideID)
}
