package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
)

func newPaymentFixture(t *testing.T, gateway *MockGateway) (*service.PaymentService, *MockPaymentRepository, *MockNotificationRepository) {
	t.Helper()
	captures := NewMockPaymentRepository()
	notifRepo := NewMockNotificationRepository()
	notifier := service.NewNotificationService(zap.NewNop(), service.NewDatabaseChannel(notifRepo))
	svc := service.NewPaymentService(captures, gateway, notifier, "usd", zap.NewNop())
	return svc, captures, notifRepo
}

func TestCaptureRideFare(t *testing.T) {
	gateway := &MockGateway{}
	svc, captures, notifRepo := newPaymentFixture(t, gateway)

	ride := &domain.Ride{ID: "r1", PassengerID: "p1", FinalFare: 28.5}
	require.NoError(t, svc.CaptureRideFare(context.Background(), ride))

	capture, err := captures.GetByRideID(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, capture)
	assert.Equal(t, domain.CaptureStatusSuccess, capture.Status)
	assert.Equal(t, "pi_test_r1", capture.IntentID)
	assert.Equal(t, 1, gateway.CaptureCount())

	notifications := notifRepo.ForRecipient("p1")
	require.Len(t, notifications, 1)
	assert.Equal(t, string(service.NotifyPaymentCharged), notifications[0].Kind)
}

func TestCaptureRideFareIdempotent(t *testing.T) {
	gateway := &MockGateway{}
	svc, _, _ := newPaymentFixture(t, gateway)

	ride := &domain.Ride{ID: "r1", PassengerID: "p1", FinalFare: 20}
	require.NoError(t, svc.CaptureRideFare(context.Background(), ride))

	err := svc.CaptureRideFare(context.Background(), ride)
	assert.ErrorIs(t, err, service.ErrPaymentAlreadyCaptured)
	assert.Equal(t, 1, gateway.CaptureCount())
}

func TestCaptureRideFareFailureRecordedAndRetriable(t *testing.T) {
	gateway := &MockGateway{Err: errors.New("card declined")}
	svc, captures, notifRepo := newPaymentFixture(t, gateway)

	ride := &domain.Ride{ID: "r1", PassengerID: "p1", FinalFare: 20}
	err := svc.CaptureRideFare(context.Background(), ride)
	require.Error(t, err)

	capture, _ := captures.GetByRideID(context.Background(), "r1")
	require.NotNil(t, capture)
	assert.Equal(t, domain.CaptureStatusFailed, capture.Status)

	notifications := notifRepo.ForRecipient("p1")
	require.Len(t, notifications, 1)
	assert.Equal(t, string(service.NotifyPaymentFailed), notifications[0].Kind)

	// Retry succeeds once the gateway recovers.
	gateway.Err = nil
	require.NoError(t, svc.CaptureRideFare(context.Background(), ride))
	capture, _ = captures.GetByRideID(context.Background(), "r1")
	assert.Equal(t, domain.CaptureStatusSuccess, capture.Status)
}

func TestCaptureSkipsZeroFare(t *testing.T) {
	gateway := &MockGateway{}
	svc, captures, _ := newPaymentFixture(t, gateway)

	ride := &domain.Ride{ID: "r1", PassengerID: "p1", FinalFare: 0}
	require.NoError(t, svc.CaptureRideFare(context.Background(), ride))

	capture, _ := captures.GetByRideID(context.Background(), "r1")
	assert.Nil(t, capture)
	assert.Equal(t, 0, gateway.CaptureCount())
}
