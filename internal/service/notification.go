package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/domain"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository"
)

// NotificationKind discriminates notification templates.
type NotificationKind string

const (
	NotifyRideAccepted   NotificationKind = "RIDE_ACCEPTED"
	NotifyDriverArrived  NotificationKind = "DRIVER_ARRIVED"
	NotifyRideStarted    NotificationKind = "RIDE_STARTED"
	NotifyRideCompleted  NotificationKind = "RIDE_COMPLETED"
	NotifyRideCancelled  NotificationKind = "RIDE_CANCELLED"
	NotifySOSRaised      NotificationKind = "SOS_RAISED"
	NotifyPaymentFailed  NotificationKind = "PAYMENT_FAILED"
	NotifyPaymentCharged NotificationKind = "PAYMENT_CHARGED"
)

// templates maps each kind to its title and body builder. Adding a
// kind means adding one row here.
var templates = map[NotificationKind]struct {
	title string
	body  func(payload map[string]any) string
}{
	NotifyRideAccepted: {"Driver Found", func(p map[string]any) string {
		return fmt.Sprintf("%v accepted your ride and is on the way", p["driver_name"])
	}},
	NotifyDriverArrived: {"Driver Arrived", func(p map[string]any) string {
		return "Your driver has arrived at the pickup point"
	}},
	NotifyRideStarted: {"Ride Started", func(p map[string]any) string {
		return "Your ride is underway"
	}},
	NotifyRideCompleted: {"Ride Completed", func(p map[string]any) string {
		return fmt.Sprintf("Your ride is complete. Fare: $%.2f", p["fare"])
	}},
	NotifyRideCancelled: {"Ride Cancelled", func(p map[string]any) string {
		if p["cancelled_by"] == "DRIVER" {
			return "The driver cancelled the ride"
		}
		return "The passenger cancelled the ride"
	}},
	NotifySOSRaised: {"SOS Alert", func(p map[string]any) string {
		return fmt.Sprintf("SOS raised on ride %v", p["ride_id"])
	}},
	NotifyPaymentFailed: {"Payment Failed", func(p map[string]any) string {
		return fmt.Sprintf("Payment of $%.2f could not be captured", p["fare"])
	}},
	NotifyPaymentCharged: {"Payment Successful", func(p map[string]any) string {
		return fmt.Sprintf("Payment of $%.2f was captured", p["fare"])
	}},
}

// Channel delivers a stored notification to one transport.
type Channel interface {
	Deliver(ctx context.Context, n *domain.Notification) error
}

// NotificationService builds notifications from templates and fans
// them out to every configured channel. Delivery failures are logged,
// not propagated, so callers never fail a ride operation over a
// notification.
type NotificationService struct {
	channels []Channel
	logger   *zap.Logger
}

func NewNotificationService(logger *zap.Logger, channels ...Channel) *NotificationService {
	return &NotificationService{channels: channels, logger: logger}
}

// Notify renders the template for kind and delivers it to recipientID
// over every channel.
func (s *NotificationService) Notify(ctx context.Context, recipientID string, kind NotificationKind, payload map[string]any) {
	if recipientID == "" {
		return
	}

	tpl, ok := templates[kind]
	if !ok {
		s.logger.Error("unknown notification kind", zap.String("kind", string(kind)))
		return
	}

	n := &domain.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Kind:        string(kind),
		Title:       tpl.title,
		Body:        tpl.body(payload),
		Payload:     payload,
		CreatedAt:   time.Now(),
	}

	for _, ch := range s.channels {
		if err := ch.Deliver(ctx, n); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("kind", string(kind)),
				zap.String("recipient_id", recipientID),
				zap.Error(err))
		}
	}
}

// DatabaseChannel persists notifications so clients can list them.
type DatabaseChannel struct {
	repo repository.NotificationRepository
}

func NewDatabaseChannel(repo repository.NotificationRepository) *DatabaseChannel {
	return &DatabaseChannel{repo: repo}
}

func (c *DatabaseChannel) Deliver(ctx context.Context, n *domain.Notification) error {
	return c.repo.Create(ctx, n)
}

// PushChannel sends notifications to a push gateway over HTTP.
type PushChannel struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

func NewPushChannel(endpoint, serverKey string) *PushChannel {
	return &PushChannel{
		endpoint:  endpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *PushChannel) Deliver(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(map[string]any{
		"to": "/topics/user-" + n.RecipientID,
		"notification": map[string]string{
			"title": n.Title,
			"body":  n.Body,
		},
		"data": n.Payload,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
