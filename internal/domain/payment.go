package domain

import "time"

// CaptureStatus represents the outcome of a fare capture attempt.
type CaptureStatus string

const (
	CaptureStatusPending CaptureStatus = "PENDING"
	CaptureStatusSuccess CaptureStatus = "SUCCESS"
	CaptureStatusFailed  CaptureStatus = "FAILED"
)

// PaymentCapture records one attempt to capture the fare of a completed
// ride. A failed capture never rolls back the ride's completed state.
type PaymentCapture struct {
	ID        string
	RideID    string
	Amount    float64
	Currency  string
	IntentID  string
	Status    CaptureStatus
	CreatedAt time.Time
}
